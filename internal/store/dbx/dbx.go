package dbx

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned by stores when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// WithinTx runs fn in a transaction (commit on nil, rollback on error).
func WithinTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// MustAffect turns a zero-row UPDATE/DELETE into ErrNotFound.
func MustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// NullIfEmpty returns nil if s is empty, otherwise s.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
