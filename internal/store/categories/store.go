// Package categories stores the Category records books may point at.
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

// List returns every category ordered by name, then id.
func (s *Store) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(category_name, '')
		FROM categories
		ORDER BY category_name NULLS LAST, id
	`)
	if err != nil {
		return nil, fmt.Errorf("categories: list: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (models.Category, error) {
	c := models.Category{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(category_name, '') FROM categories WHERE id = $1`, id,
	).Scan(&c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, dbx.ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("categories: get %d: %w", id, err)
	}
	return c, nil
}

// Create adds a category. An empty name is stored as NULL.
func (s *Store) Create(ctx context.Context, name string) (models.Category, error) {
	c := models.Category{Name: name}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO categories (category_name) VALUES ($1) RETURNING id`, dbx.NullIfEmpty(name),
	).Scan(&c.ID)
	if err != nil {
		return models.Category{}, fmt.Errorf("categories: create: %w", err)
	}
	return c, nil
}

// Delete removes category id. Books that referenced it keep existing with
// no category; both steps share one transaction.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE books SET category_id = NULL WHERE category_id = $1`, id,
		); err != nil {
			return fmt.Errorf("categories: clear books: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("categories: delete %d: %w", id, err)
		}
		return dbx.MustAffect(res)
	})
}
