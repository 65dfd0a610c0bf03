package middlewares

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// AccessLog writes one line per request once the handler returns.
func AccessLog(logger *log.Logger) Middleware {
	logger = logger.WithPrefix("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrapStatus(w)
			next.ServeHTTP(rw, r)

			lvl := log.InfoLevel
			if rw.status >= 500 {
				lvl = log.ErrorLevel
			}
			logger.Log(lvl, r.Method+" "+r.URL.Path,
				"status", rw.status,
				"bytes", rw.bytes,
				"dur", time.Since(start).Round(time.Microsecond),
				"ip", clientIP(r),
				"request_id", GetRequestID(r),
			)
		})
	}
}
