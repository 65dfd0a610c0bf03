package books

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/bookshelf/internal/api/httpx"
	"github.com/5w1tchy/bookshelf/internal/api/middlewares"
	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, formData{Action: "/create", Values: map[string]string{}})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	ctx := r.Context()
	in, shown, err := h.bind(ctx, r.PostForm)
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formData{Action: "/create", Values: shown, Errors: verrs})
		return
	}
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}

	actor, _ := middlewares.UserIDFrom(ctx)
	id, err := h.books.Create(ctx, in, actor)
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	h.log.Info("created", "id", id, "actor", actor)
	httpx.SeeOther(w, r, "/")
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, d formData) {
	cats, err := h.cats.List(r.Context())
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	d.Categories = cats
	d.Statuses = models.ReadStatuses
	title := "Add a book"
	if d.ID != 0 {
		title = "Edit book"
	}
	h.rs.Render(w, r, status, "form", title, d)
}
