package middlewares

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// LoginRateLimit allows max login attempts per client IP within window.
// Only POSTs count; rendering the form is free. A nil client disables it.
func LoginRateLimit(rdb *redis.Client, max int, window time.Duration, logger *log.Logger) Middleware {
	if rdb == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	sw := NewRedisSlidingWindow(rdb, max, window, PerIPKey("rl:login"), logger)
	return func(next http.Handler) http.Handler {
		limited := sw.Middleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
