// Package router mounts the handlers on a ServeMux and wraps it in the
// middleware stack.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/5w1tchy/bookshelf/internal/api/apperr"
	"github.com/5w1tchy/bookshelf/internal/api/handlers/books"
	"github.com/5w1tchy/bookshelf/internal/api/httpx"
	mw "github.com/5w1tchy/bookshelf/internal/api/middlewares"
	"github.com/5w1tchy/bookshelf/internal/auth"
	"github.com/5w1tchy/bookshelf/internal/session"
	"github.com/5w1tchy/bookshelf/internal/view"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Books    *books.Handler
	Auth     *auth.Handler
	Sessions *session.Manager
	View     *view.Renderer
	DB       Pinger
	Redis    *redis.Client // nil disables rate limiting
	Log      *log.Logger
}

type Options struct {
	Production       bool
	CookieSecure     bool
	MaxBodySize      int64
	LoginMaxAttempts int
	LoginWindow      time.Duration

	// Global per-IP token bucket.
	RatePerSecond float64
	Burst         int
}

func DefaultOptions() Options {
	return Options{
		MaxBodySize:      1 << 20,
		LoginMaxAttempts: 10,
		LoginWindow:      5 * time.Minute,
		RatePerSecond:    5,
		Burst:            20,
	}
}

// Routes returns the bare mux.
func Routes(d Deps, o Options) *http.ServeMux {
	mux := http.NewServeMux()
	guard := func(f http.HandlerFunc) http.Handler { return auth.RequireLogin(f) }
	rs := httpx.Responder{View: d.View, Log: d.Log}

	// List is public; everything else needs an actor.
	mux.HandleFunc("GET /{$}", d.Books.List)
	mux.Handle("GET /detail/{id}", guard(d.Books.Detail))
	mux.Handle("GET /create", guard(d.Books.CreateForm))
	mux.Handle("POST /create", guard(d.Books.Create))
	mux.Handle("GET /update/{id}", guard(d.Books.UpdateForm))
	mux.Handle("POST /update/{id}", guard(d.Books.Update))
	mux.Handle("GET /delete/{id}", guard(d.Books.ConfirmDelete))
	mux.Handle("POST /delete/{id}", guard(d.Books.Delete))

	loginLimit := mw.LoginRateLimit(d.Redis, o.LoginMaxAttempts, o.LoginWindow, d.Log)
	mux.HandleFunc("GET /login", d.Auth.LoginForm)
	mux.Handle("POST /login", loginLimit(http.HandlerFunc(d.Auth.Login)))
	mux.HandleFunc("POST /logout", d.Auth.Logout)

	mux.HandleFunc("GET /healthz", healthz(d))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		rs.Fail(w, r, apperr.NotFound())
	})
	return mux
}

// Router returns the fully wrapped application handler.
func Router(d Deps, o Options) http.Handler {
	csrf := mw.DefaultCSRFOptions()
	csrf.CookieSecure = o.CookieSecure

	mws := []mw.Middleware{
		mw.RequestID,
		mw.Recovery(d.Log),
		mw.AccessLog(d.Log),
		mw.ResponseTime,
		mw.SecurityHeaders(o.Production),
		mw.BodySizeLimit(o.MaxBodySize),
		mw.HPP(mw.DefaultHPPOptions()),
	}
	if d.Redis != nil {
		tb := mw.NewRedisTokenBucket(d.Redis, o.RatePerSecond, o.Burst, mw.PerIPKey("tb"), d.Log)
		mws = append(mws, tb.Middleware)
	}
	mws = append(mws,
		mw.Compression,
		d.Sessions.Middleware,
		mw.CSRF(csrf),
	)
	return mw.Chain(Routes(d, o), mws...)
}

type health struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Redis  string `json:"redis,omitempty"`
}

func healthz(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		h := health{Status: "ok", DB: "ok"}
		if err := d.DB.PingContext(ctx); err != nil {
			d.Log.Warn("healthz: database ping failed", "err", err)
			h.Status, h.DB = "degraded", "down"
		}
		if d.Redis != nil {
			h.Redis = "ok"
			if err := d.Redis.Ping(ctx).Err(); err != nil {
				d.Log.Warn("healthz: redis ping failed", "err", err)
				h.Status, h.Redis = "degraded", "down"
			}
		}
		if h.Status != "ok" {
			apperr.Write(w, r, apperr.Problem{
				Status: http.StatusServiceUnavailable,
				Title:  "Service Unavailable",
				Detail: "db=" + h.DB + " redis=" + h.Redis,
			})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, h)
	}
}
