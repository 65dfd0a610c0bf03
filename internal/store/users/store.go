// Package users stores login accounts.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

const selectUser = `SELECT id::text, email, username, password_hash, created_at FROM users `

// Create inserts a user. Emails are stored lower-cased.
func (s *Store) Create(ctx context.Context, email, username, hash string) (models.User, error) {
	u := models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, username, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, u.ID, u.Email, u.Username, u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("users: create: %w", err)
	}
	return u, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.one(ctx, selectUser+`WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) Get(ctx context.Context, id string) (models.User, error) {
	return s.one(ctx, selectUser+`WHERE id = $1`, id)
}

func (s *Store) one(ctx context.Context, q string, arg any) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, dbx.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("users: lookup: %w", err)
	}
	return u, nil
}

// SetPasswordHash replaces the stored hash, e.g. after a parameter upgrade.
func (s *Store) SetPasswordHash(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("users: set hash: %w", err)
	}
	return dbx.MustAffect(res)
}

// Delete removes user id. Books keep their audit timestamps but lose the
// reference to the deleted user.
func (s *Store) Delete(ctx context.Context, id string) error {
	return dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE books SET created_by = NULL WHERE created_by = $1`, id,
		); err != nil {
			return fmt.Errorf("users: clear created_by: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE books SET updated_by = NULL WHERE updated_by = $1`, id,
		); err != nil {
			return fmt.Errorf("users: clear updated_by: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("users: delete: %w", err)
		}
		return dbx.MustAffect(res)
	})
}
