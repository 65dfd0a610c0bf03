package middlewares

import (
	"net/http"
	"time"
)

// statusWriter records the status code and stamps X-Response-Time just
// before the header goes out.
type statusWriter struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
	status      int
	bytes       int
}

func (w *statusWriter) stamp() {
	if !w.wroteHeader {
		w.Header().Set("X-Response-Time", time.Since(w.start).String())
		w.wroteHeader = true
	}
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.stamp()
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func wrapStatus(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w, start: time.Now(), status: http.StatusOK}
}

func ResponseTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := wrapStatus(w)
		next.ServeHTTP(rw, r)

		// If nothing was written (e.g., 204/HEAD), set it now.
		if !rw.wroteHeader {
			rw.Header().Set("X-Response-Time", time.Since(rw.start).String())
		}
	})
}
