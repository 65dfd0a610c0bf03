package middlewares

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

type ctxKey int

const ctxKeyRequestID ctxKey = iota

var ridRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

// RequestID propagates a sane incoming X-Request-ID or mints a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if !ridRe.MatchString(rid) {
			rid = genRID()
		}
		// make it available to handlers/middlewares and the response
		r = r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, rid))
		r.Header.Set("X-Request-ID", rid)
		w.Header().Set("X-Request-ID", rid)

		next.ServeHTTP(w, r)
	})
}

// GetRequestID extracts the value previously set by RequestID middleware.
func GetRequestID(r *http.Request) string {
	v, _ := r.Context().Value(ctxKeyRequestID).(string)
	if v != "" {
		return v
	}
	return r.Header.Get("X-Request-ID")
}

func genRID() string { return uuid.NewString() }
