package apperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/5w1tchy/bookshelf/internal/paginate"
	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`    // e.g. "unique", "not_null", "fk", "invalid", "too_long"
	Message string `json:"message"` // human readable
}

type Problem struct {
	Type        string       `json:"type,omitempty"`   // RFC7807 type URI
	Title       string       `json:"title"`            // short summary
	Status      int          `json:"status"`           // HTTP status code
	Detail      string       `json:"detail,omitempty"` // human details
	Instance    string       `json:"instance,omitempty"`
	RequestID   string       `json:"request_id,omitempty"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
	Retryable   bool         `json:"retryable,omitempty"`
}

func (p Problem) Error() string {
	if p.Detail != "" {
		return p.Title + ": " + p.Detail
	}
	return p.Title
}

// NotFound is the Problem for a missing record or page.
func NotFound() Problem {
	return Problem{Status: http.StatusNotFound, Title: "Not Found"}
}

// Classify maps any store or handler error onto a Problem.
// Unknown errors become an opaque 500.
func Classify(err error) Problem {
	var p Problem
	switch {
	case err == nil:
		return Problem{Status: http.StatusOK, Title: "OK"}
	case errors.As(err, &p):
		return p
	case errors.Is(err, dbx.ErrNotFound), errors.Is(err, paginate.ErrInvalidPage):
		return NotFound()
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return Problem{Status: http.StatusRequestEntityTooLarge, Title: "Request Entity Too Large"}
	}
	if p, ok := FromPG(err); ok {
		return p
	}
	return Problem{Status: http.StatusInternalServerError, Title: "Internal Server Error"}
}

// Write renders p as application/problem+json.
func Write(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	if p.Instance == "" && r != nil {
		p.Instance = r.URL.Path
	}
	if p.RequestID == "" && r != nil {
		if rid := r.Header.Get("X-Request-ID"); rid != "" {
			p.RequestID = rid
		}
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
