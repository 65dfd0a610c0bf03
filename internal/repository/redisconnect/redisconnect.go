package redisconnect

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/5w1tchy/bookshelf/internal/config"
)

// Connect builds a client from cfg and fails fast if Redis is unreachable.
func Connect(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	var rdb *redis.Client

	if cfg.RedisURL != "" {
		// Path A: full URL, e.g. rediss://default:<token>@host:port
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		if opt.TLSConfig == nil && strings.HasPrefix(cfg.RedisURL, "rediss://") {
			opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		opt.DialTimeout = 5 * time.Second
		opt.ReadTimeout = 1 * time.Second
		opt.WriteTimeout = 1 * time.Second
		rdb = redis.NewClient(opt)
	} else {
		// Path B: split fields
		opt := &redis.Options{
			Addr:         cfg.RedisAddr,
			Username:     cfg.RedisUser,
			Password:     cfg.RedisPassword,
			DB:           0,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		}
		if cfg.Production() {
			opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb = redis.NewClient(opt)
	}

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return rdb, nil
}
