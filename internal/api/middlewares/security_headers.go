package middlewares

import "net/http"

// SecurityHeaders sets the browser hardening headers. Forms post back to the
// same origin only.
func SecurityHeaders(strict bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-DNS-Prefetch-Control", "off")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "same-origin")
			h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")

			// HSTS should only be effective over HTTPS (r.TLS != nil)
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			}

			h.Set("Content-Security-Policy", "default-src 'self'; form-action 'self'; frame-ancestors 'none'; base-uri 'none'")

			// COOP/COEP can break embeds; opt in.
			if strict {
				h.Set("Cross-Origin-Opener-Policy", "same-origin")
				h.Set("Cross-Origin-Embedder-Policy", "require-corp")
				h.Set("Cross-Origin-Resource-Policy", "same-origin")
			}

			h.Set("Server", "")

			next.ServeHTTP(w, r)
		})
	}
}
