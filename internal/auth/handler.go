// Package auth signs users in and out and guards the routes that need an
// actor.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/5w1tchy/bookshelf/internal/api/httpx"
	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/security/password"
	"github.com/5w1tchy/bookshelf/internal/session"
	"github.com/5w1tchy/bookshelf/internal/store/dbx"
	"github.com/5w1tchy/bookshelf/internal/view"
)

// UserStore is the part of the users store login needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// Sessions is implemented by *session.Manager.
type Sessions interface {
	Login(ctx context.Context, w http.ResponseWriter, s *session.Session, userID string) error
	Logout(ctx context.Context, w http.ResponseWriter, s *session.Session) error
}

type Handler struct {
	users    UserStore
	hasher   *password.Hasher
	sessions Sessions
	rs       httpx.Responder
	log      *log.Logger
}

func New(users UserStore, hasher *password.Hasher, sessions Sessions, v *view.Renderer, logger *log.Logger) *Handler {
	logger = logger.WithPrefix("auth")
	return &Handler{
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		rs:       httpx.Responder{View: v, Log: logger},
		log:      logger,
	}
}

type loginData struct {
	Email  string
	Next   string
	Failed bool
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := SafeNext(r.URL.Query().Get("next"))
	if session.FromContext(r.Context()).Authenticated() {
		httpx.SeeOther(w, r, next)
		return
	}
	h.rs.Render(w, r, http.StatusOK, "login", "Log in", loginData{Next: next})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	pwd := r.PostForm.Get("password")
	next := SafeNext(r.PostForm.Get("next"))
	ctx := r.Context()

	failed := func() {
		h.rs.Render(w, r, http.StatusUnauthorized, "login", "Log in", loginData{Email: email, Next: next, Failed: true})
	}

	u, err := h.users.FindByEmail(ctx, email)
	if errors.Is(err, dbx.ErrNotFound) {
		failed()
		return
	}
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	ok, needsRehash, err := h.hasher.Verify(pwd, u.PasswordHash)
	if err != nil || !ok {
		failed()
		return
	}
	if needsRehash {
		if phc, err := h.hasher.Hash(pwd); err == nil {
			if err := h.users.SetPasswordHash(ctx, u.ID, phc); err != nil {
				h.log.Warn("rehash failed", "user", u.ID, "err", err)
			}
		}
	}

	s := session.FromContext(ctx)
	if s == nil {
		h.rs.Fail(w, r, session.ErrNoSession)
		return
	}
	if err := h.sessions.Login(ctx, w, s, u.ID); err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	h.log.Info("login", "user", u.ID)
	httpx.SeeOther(w, r, next)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := session.FromContext(r.Context()); s != nil {
		if err := h.sessions.Logout(r.Context(), w, s); err != nil {
			h.log.Warn("logout: dropping session failed", "err", err)
		}
	}
	httpx.SeeOther(w, r, "/")
}

// SafeNext keeps post-login redirects on this site. Anything that is not a
// plain local path falls back to the list.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
