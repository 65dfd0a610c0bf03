package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/charmbracelet/log"
)

func Recovery(logger *log.Logger) Middleware {
	logger = logger.WithPrefix("panic")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					rid := GetRequestID(r)
					if rid == "" {
						rid = "unknown"
					}
					logger.Error("recovered",
						"request_id", rid, "method", r.Method, "path", r.URL.Path,
						"err", err, "stack", string(debug.Stack()))

					// Don't expose internal errors to client
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
