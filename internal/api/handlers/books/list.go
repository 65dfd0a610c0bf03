package books

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/5w1tchy/bookshelf/internal/filter"
	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/paginate"
	"github.com/5w1tchy/bookshelf/internal/session"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

type listData struct {
	Books      []models.Book
	Page       paginate.Page
	Query      url.Values
	Errors     validate.Errors
	Categories []models.Category
	Statuses   []models.ReadStatus
}

// List renders one page of the filtered book list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, restored := h.effectiveQuery(r)

	crit, ferrs := filter.Parse(q)
	fq := h.engine.Build(crit)

	total, err := h.books.Count(ctx, fq)
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	pg, err := paginate.New(total, PageSize, q.Get("page"))
	if restored && errors.Is(err, paginate.ErrInvalidPage) {
		// The saved page may have gone away since it was saved.
		pg, err = paginate.New(total, PageSize, "")
	}
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	rows, err := h.books.List(ctx, fq, pg.Limit(), pg.Offset())
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	cats, err := h.cats.List(ctx)
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}

	form := url.Values{}
	for k, v := range q {
		if k != "page" {
			form[k] = v
		}
	}
	h.rs.Render(w, r, http.StatusOK, "list", "Books", listData{
		Books:      rows,
		Page:       pg,
		Query:      form,
		Errors:     ferrs,
		Categories: cats,
		Statuses:   models.ReadStatuses,
	})
}

// effectiveQuery decides where the list query comes from. A request that
// carries parameters is a new search and replaces the saved one; a bare
// request restores the saved search onto an empty parameter set and reports
// restored. Session store failures degrade to "nothing saved".
func (h *Handler) effectiveQuery(r *http.Request) (q url.Values, restored bool) {
	ctx := r.Context()
	s := session.FromContext(ctx)

	incoming := r.URL.Query()
	if len(incoming) > 0 {
		if err := h.cache.Save(ctx, s, incoming); err != nil {
			h.log.Warn("saving list query failed", "err", err)
		}
		return incoming, false
	}

	effective := url.Values{}
	saved, err := h.cache.Restore(ctx, s)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			h.log.Warn("restoring list query failed", "err", err)
		}
		return effective, false
	}
	for k, v := range saved {
		effective[k] = v
	}
	return effective, len(saved) > 0
}
