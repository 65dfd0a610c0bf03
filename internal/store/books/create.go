package books

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

// Store is the Book record store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store { return &Store{db: db, now: time.Now} }

// WithClock returns a copy of s that stamps audit fields using now.
func (s *Store) WithClock(now func() time.Time) *Store {
	c := *s
	c.now = now
	return &c
}

// Create inserts a book and stamps created/updated by and at with actor and
// the current time. actor may be empty.
func (s *Store) Create(ctx context.Context, in Input, actor string) (int64, error) {
	now := s.now().UTC()
	args := append(fieldArgs(in), dbx.NullIfEmpty(actor), now)

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO books (
			title, author, read_status, read_reason, is_wonder,
			category_id, start_date, end_date, review,
			created_by, created_at, updated_by, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $10, $11)
		RETURNING id
	`, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("books: create: %w", err)
	}
	return id, nil
}
