package store

import (
	"context"
	"database/sql"
	_ "embed"
)

//go:embed schema.sql
var Schema string

// Migrate applies the idempotent schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}
