// Package httpx holds the response helpers shared by the HTML handlers.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/5w1tchy/bookshelf/internal/api/apperr"
	"github.com/5w1tchy/bookshelf/internal/api/middlewares"
	"github.com/5w1tchy/bookshelf/internal/session"
	"github.com/5w1tchy/bookshelf/internal/view"
)

// Responder renders pages and error pages for one component.
type Responder struct {
	View *view.Renderer
	Log  *log.Logger
}

// Page wraps data with the per-request fields every template needs.
func (rs Responder) Page(r *http.Request, title string, data any) view.Page {
	return view.Page{
		Title:         title,
		CSRF:          middlewares.CSRFToken(r),
		Authenticated: session.FromContext(r.Context()).Authenticated(),
		Data:          data,
	}
}

func (rs Responder) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	if err := rs.View.Render(w, status, page, rs.Page(r, title, data)); err != nil {
		rs.Log.Error("render failed", "page", page, "err", err, "request_id", middlewares.GetRequestID(r))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Fail classifies err and renders the error page with the matching status.
// Server-side failures are logged; the page never shows their detail.
func (rs Responder) Fail(w http.ResponseWriter, r *http.Request, err error) {
	p := apperr.Classify(err)
	p.RequestID = middlewares.GetRequestID(r)
	if p.Status >= http.StatusInternalServerError {
		rs.Log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err, "request_id", p.RequestID)
		p.Detail = ""
	}
	rs.Render(w, r, p.Status, "error", p.Title, p)
}

// SeeOther redirects after a successful POST.
func SeeOther(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
