package books

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/5w1tchy/bookshelf/internal/api/httpx"
	"github.com/5w1tchy/bookshelf/internal/api/middlewares"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	b, err := h.books.Get(r.Context(), id)
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, formData{ID: id, Action: updatePath(id), Values: valuesOf(b)})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	ctx := r.Context()
	// 404 before validation, so a stale form never reports field errors.
	if _, err := h.books.Get(ctx, id); err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.rs.Fail(w, r, err)
		return
	}

	in, shown, err := h.bind(ctx, r.PostForm)
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formData{ID: id, Action: updatePath(id), Values: shown, Errors: verrs})
		return
	}
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}

	actor, _ := middlewares.UserIDFrom(ctx)
	if err := h.books.Update(ctx, id, in, actor); err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	h.log.Info("updated", "id", id, "actor", actor)
	httpx.SeeOther(w, r, "/")
}

func updatePath(id int64) string { return "/update/" + strconv.FormatInt(id, 10) }
