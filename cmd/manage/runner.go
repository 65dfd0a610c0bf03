package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/5w1tchy/bookshelf/internal/backup"
	"github.com/5w1tchy/bookshelf/internal/config"
	"github.com/5w1tchy/bookshelf/internal/security/password"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

// Bucket is the object storage backups go to; *s3.Client satisfies it.
type Bucket interface {
	backup.ObjectStore
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type RunnerConfig struct {
	Config     config.Config
	OpenDB     func(ctx context.Context) (*sql.DB, error)
	OpenBucket func(ctx context.Context) (Bucket, error)
	Hasher     password.Params
	Logger     *log.Logger
	Out        io.Writer
}

// Runner holds the lazily opened resources shared by every command.
type Runner struct {
	cfg        config.Config
	openDB     func(ctx context.Context) (*sql.DB, error)
	openBucket func(ctx context.Context) (Bucket, error)
	hasher     *password.Hasher
	v          *validate.Validator
	logger     *log.Logger
	out        io.Writer

	db *sql.DB
}

func NewRunner(c RunnerConfig) *Runner {
	return &Runner{
		cfg:        c.Config,
		openDB:     c.OpenDB,
		openBucket: c.OpenBucket,
		hasher:     password.NewHasher(c.Hasher),
		v:          validate.New(),
		logger:     c.Logger,
		out:        c.Out,
	}
}

func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:     "manage",
		Usage:    "Operate the bookshelf database and backups",
		Commands: r.register(),
		After: func(ctx context.Context, _ *cli.Command) error {
			if r.db != nil {
				return r.db.Close()
			}
			return nil
		},
	}
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		migrateCommand(r),
		categoryCommand(r),
		userCommand(r),
		backupCommand(r),
	}
}

func (r *Runner) database(ctx context.Context) (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := r.openDB(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	r.db = db
	return db, nil
}

func (r *Runner) writePlainln(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}
