package middlewares

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
)

type CSRFOptions struct {
	FormField      string        // Default: "csrf_token"
	TokenHeader    string        // Default: "X-CSRF-Token"
	CookieName     string        // Default: "csrf_token"
	CookiePath     string        // Default: "/"
	CookieSecure   bool          // Set to true in production with HTTPS
	CookieSameSite http.SameSite // Default: SameSiteStrictMode
}

func DefaultCSRFOptions() CSRFOptions {
	return CSRFOptions{
		FormField:      "csrf_token",
		TokenHeader:    "X-CSRF-Token",
		CookieName:     "csrf_token",
		CookiePath:     "/",
		CookieSecure:   false,
		CookieSameSite: http.SameSiteStrictMode,
	}
}

const csrfTokenKey ctxKey = 2

// CSRF implements the double-submit cookie pattern. Every request gets a
// token cookie (issued on first contact) and the token is put in the request
// context for templates; unsafe methods must echo it in the form field or
// header.
func CSRF(opts CSRFOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var expected string
			if c, err := r.Cookie(opts.CookieName); err == nil && c.Value != "" {
				expected = c.Value
			} else {
				expected = generateCSRFToken()
				http.SetCookie(w, &http.Cookie{
					Name:     opts.CookieName,
					Value:    expected,
					Path:     opts.CookiePath,
					Secure:   opts.CookieSecure,
					HttpOnly: true,
					SameSite: opts.CookieSameSite,
				})
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfTokenKey, expected))

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(opts.TokenHeader)
			if provided == "" {
				if err := r.ParseForm(); err != nil {
					var tooBig *http.MaxBytesError
					if errors.As(err, &tooBig) {
						http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
						return
					}
				}
				provided = r.PostFormValue(opts.FormField)
			}

			if !isValidCSRFToken(expected, provided) {
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFToken returns the token the CSRF middleware bound to r.
func CSRFToken(r *http.Request) string {
	v, _ := r.Context().Value(csrfTokenKey).(string)
	return v
}

func generateCSRFToken() string {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func isValidCSRFToken(expected, provided string) bool {
	if expected == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
