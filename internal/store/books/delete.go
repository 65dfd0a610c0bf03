package books

import (
	"context"
	"fmt"

	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

// Delete removes book id for good.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("books: delete %d: %w", id, err)
	}
	return dbx.MustAffect(res)
}
