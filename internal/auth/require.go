package auth

import (
	"net/http"
	"net/url"

	"github.com/5w1tchy/bookshelf/internal/api/middlewares"
	"github.com/5w1tchy/bookshelf/internal/session"
)

// RequireLogin sends anonymous visitors to the login page and exposes the
// actor to the wrapped handler through middlewares.UserIDFrom.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		if !s.Authenticated() {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(middlewares.WithUserID(r.Context(), s.UserID)))
	})
}
