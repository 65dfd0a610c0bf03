// Package view renders the server-side HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/bookshelf/internal/filter"
)

//go:embed templates/*.html
var files embed.FS

// Page is the data every template receives. Data carries the page-specific
// payload.
type Page struct {
	Title         string
	CSRF          string
	Authenticated bool
	Data          any
}

// Renderer holds one parsed template set per page, each sharing the layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(filter.DateLayout)
	},
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
	"withPage": func(q url.Values, n int) string {
		c := url.Values{}
		for k, v := range q {
			c[k] = append([]string(nil), v...)
		}
		c.Set("page", strconv.Itoa(n))
		return "/?" + c.Encode()
	},
	"int64": func(p *int64) int64 {
		if p == nil {
			return 0
		}
		return *p
	},
}

func New() (*Renderer, error) {
	pages, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, p := range pages {
		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".html")
		if name == "layout" {
			continue
		}
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", p)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into a buffer first so a template failure never
// leaves a half-written response behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, p Page) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("view: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("view: render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
