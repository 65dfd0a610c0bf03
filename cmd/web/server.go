package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/5w1tchy/bookshelf/internal/api/handlers/books"
	"github.com/5w1tchy/bookshelf/internal/api/router"
	"github.com/5w1tchy/bookshelf/internal/auth"
	"github.com/5w1tchy/bookshelf/internal/backup"
	"github.com/5w1tchy/bookshelf/internal/config"
	"github.com/5w1tchy/bookshelf/internal/filter"
	"github.com/5w1tchy/bookshelf/internal/logger"
	"github.com/5w1tchy/bookshelf/internal/maintenance"
	"github.com/5w1tchy/bookshelf/internal/repository/redisconnect"
	"github.com/5w1tchy/bookshelf/internal/repository/sqlconnect"
	jwtutil "github.com/5w1tchy/bookshelf/internal/security/jwt"
	"github.com/5w1tchy/bookshelf/internal/security/password"
	"github.com/5w1tchy/bookshelf/internal/session"
	"github.com/5w1tchy/bookshelf/internal/storage/s3"
	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
	"github.com/5w1tchy/bookshelf/internal/store/categories"
	"github.com/5w1tchy/bookshelf/internal/store/users"
	"github.com/5w1tchy/bookshelf/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	lg := logger.New(nil, cfg.LogLevel, cfg.Production())
	for _, w := range cfg.HardeningWarnings(os.Getenv) {
		lg.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("server stopped", "err", err)
	}
}

func run(ctx context.Context, cfg config.Config, lg *log.Logger) error {
	db, err := sqlconnect.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	lg.Info("connected to postgres")

	rdb, err := redisconnect.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()
	lg.Info("connected to redis")

	bookStore := storebooks.New(db)
	catStore := categories.New(db)
	sessStore := session.NewRedisStore(rdb)

	signer := jwtutil.NewSigner(jwtutil.Config{Secret: cfg.SessionSecret})
	mgr := session.NewManager(sessStore, signer, session.Options{TTL: cfg.SessionTTL, Secure: cfg.CookieSecure}, lg)

	v, err := view.New()
	if err != nil {
		return err
	}

	deps := router.Deps{
		Books: books.New(bookStore, catStore, session.NewQueryCache(sessStore, cfg.SessionTTL),
			filter.Engine{EmptyMatchesAll: cfg.FilterEmptyMatchesAll}, v, lg),
		Auth:     auth.New(users.New(db), password.NewHasher(cfg.Argon2), mgr, v, lg),
		Sessions: mgr,
		View:     v,
		DB:       db,
		Redis:    rdb,
		Log:      lg,
	}
	opts := router.DefaultOptions()
	opts.Production = cfg.Production()
	opts.CookieSecure = cfg.CookieSecure
	opts.MaxBodySize = cfg.MaxBodySize
	opts.LoginMaxAttempts = cfg.LoginMaxAttempts
	opts.LoginWindow = cfg.LoginWindow

	if cfg.Backup.At != "" {
		bucket, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return err
		}
		svc := backup.New(bookStore, catStore, bucket, cfg.Backup.Prefix, lg)
		job := func(ctx context.Context) error {
			if _, err := svc.Run(ctx); err != nil {
				return err
			}
			_, err := svc.Prune(ctx, cfg.Backup.Keep)
			return err
		}
		if err := maintenance.StartDaily(ctx, "backup", cfg.Backup.At, cfg.Backup.Timezone, job, lg); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Router(deps, opts),
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          lg.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	errc := make(chan error, 1)
	go func() {
		lg.Info("server is running", "addr", cfg.Addr, "tls", cfg.TLSCert != "")
		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			errc <- server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
