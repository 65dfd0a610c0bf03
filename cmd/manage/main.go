package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/5w1tchy/bookshelf/internal/config"
	"github.com/5w1tchy/bookshelf/internal/logger"
	"github.com/5w1tchy/bookshelf/internal/repository/sqlconnect"
	"github.com/5w1tchy/bookshelf/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadOps()
	lg := logger.New(nil, cfg.LogLevel, cfg.Production())
	if err != nil {
		lg.Fatal("invalid configuration", "err", err)
	}

	runner := NewRunner(RunnerConfig{
		Config: cfg,
		OpenDB: func(ctx context.Context) (*sql.DB, error) { return sqlconnect.ConnectDB(ctx, cfg.DatabaseURL) },
		OpenBucket: func(ctx context.Context) (Bucket, error) {
			c, err := s3.New(ctx, cfg.S3)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		Hasher: cfg.Argon2,
		Logger: lg,
		Out:    os.Stdout,
	})

	if err := runner.App().Run(context.Background(), os.Args); err != nil {
		lg.Fatal("manage failed", "err", err)
	}
}
