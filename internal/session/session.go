// Package session ties a browser to server-side state through a signed
// cookie, and keeps the last list query per session.
package session

import "context"

// Session is the per-request view of a browser session.
type Session struct {
	ID     string
	UserID string // empty when anonymous
}

func (s *Session) Authenticated() bool { return s != nil && s.UserID != "" }

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session, or nil outside the middleware.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
