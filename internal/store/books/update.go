package books

import (
	"context"
	"fmt"

	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

// Update replaces the editable fields of book id and re-stamps updated by
// and at. created_by and created_at are never written here.
func (s *Store) Update(ctx context.Context, id int64, in Input, actor string) error {
	now := s.now().UTC()
	args := append(fieldArgs(in), dbx.NullIfEmpty(actor), now, id)

	res, err := s.db.ExecContext(ctx, `
		UPDATE books
		SET title = $1, author = $2, read_status = $3, read_reason = $4, is_wonder = $5,
		    category_id = $6, start_date = $7, end_date = $8, review = $9,
		    updated_by = $10, updated_at = $11
		WHERE id = $12
	`, args...)
	if err != nil {
		return fmt.Errorf("books: update %d: %w", id, err)
	}
	return dbx.MustAffect(res)
}
