package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/5w1tchy/bookshelf/internal/filter"
	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

// Get returns the book with id, or dbx.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (models.Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, selectBook+"WHERE b.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, dbx.ErrNotFound
	}
	if err != nil {
		return models.Book{}, fmt.Errorf("books: get %d: %w", id, err)
	}
	return b, nil
}

// List returns the books selected by q in filter.OrderBy order. A limit <= 0
// returns every matching row.
func (s *Store) List(ctx context.Context, q filter.Query, limit, offset int) ([]models.Book, error) {
	if q.None {
		return nil, nil
	}
	query := selectBook
	args := append([]any{}, q.Args...)
	if q.Where != "" {
		query += "WHERE " + q.Where + "\n"
	}
	query += "ORDER BY " + filter.OrderBy
	if limit > 0 {
		query += "\nLIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("books: list: %w", err)
	}
	defer rows.Close()

	out := make([]models.Book, 0, max(limit, 0))
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("books: list scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Count returns how many books q selects.
func (s *Store) Count(ctx context.Context, q filter.Query) (int, error) {
	if q.None {
		return 0, nil
	}
	query := "SELECT COUNT(*) FROM books b"
	if q.Where != "" {
		query += " WHERE " + q.Where
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, q.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("books: count: %w", err)
	}
	return n, nil
}
