package session

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	jwtutil "github.com/5w1tchy/bookshelf/internal/security/jwt"
)

const CookieName = "bookshelf_session"

type Options struct {
	TTL    time.Duration
	Secure bool
}

// Manager issues session cookies and resolves them to Sessions.
type Manager struct {
	store  Store
	signer *jwtutil.Signer
	opts   Options
	log    *log.Logger
	now    func() time.Time
}

func NewManager(store Store, signer *jwtutil.Signer, opts Options, logger *log.Logger) *Manager {
	return &Manager{
		store:  store,
		signer: signer,
		opts:   opts,
		log:    logger.WithPrefix("session"),
		now:    time.Now,
	}
}

// Middleware attaches a Session to every request. A missing, forged or
// expired cookie starts a fresh anonymous session. Once less than half of
// the cookie's lifetime remains it is re-issued and the stored session state
// is extended to match.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, exp, ok := m.fromCookie(r)
		if !ok {
			s = &Session{ID: newID()}
			m.issue(w, s.ID)
		} else if exp.Sub(m.now()) < m.opts.TTL/2 {
			if err := m.store.Touch(r.Context(), s.ID, m.opts.TTL); err != nil {
				m.log.Warn("extending session failed", "err", err)
			}
			m.issue(w, s.ID)
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (m *Manager) fromCookie(r *http.Request) (*Session, time.Time, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, time.Time{}, false
	}
	sid, exp, err := m.signer.ParseSession(c.Value)
	if err != nil {
		m.log.Debug("rejecting session cookie", "err", err)
		return nil, time.Time{}, false
	}
	s := &Session{ID: sid}
	uid, err := m.store.UserID(r.Context(), sid)
	if err != nil {
		// Treat as anonymous for this request; the session itself stays.
		m.log.Warn("session lookup failed", "err", err)
		return s, exp, true
	}
	s.UserID = uid
	return s, exp, true
}

// Login binds userID to a new session id, carrying the saved list query
// over, and retires the old id.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, s *Session, userID string) error {
	old := s.ID
	fresh := newID()

	if raw, ok, err := m.store.Query(ctx, old); err == nil && ok {
		if err := m.store.SetQuery(ctx, fresh, raw, m.opts.TTL); err != nil {
			return err
		}
	}
	if err := m.store.SetUserID(ctx, fresh, userID, m.opts.TTL); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, old); err != nil {
		m.log.Warn("dropping old session failed", "err", err)
	}

	s.ID, s.UserID = fresh, userID
	m.issue(w, fresh)
	return nil
}

// Logout forgets the session server-side and clears the cookie.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, s *Session) error {
	err := m.store.Delete(ctx, s.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.UserID = ""
	return err
}

func (m *Manager) issue(w http.ResponseWriter, sid string) {
	tok, err := m.signer.SignSession(sid, m.opts.TTL)
	if err != nil {
		m.log.Error("signing session cookie", "err", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(m.opts.TTL / time.Second),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func newID() string { return uuid.NewString() }
