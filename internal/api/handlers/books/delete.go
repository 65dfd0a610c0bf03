package books

import (
	"net/http"

	"github.com/5w1tchy/bookshelf/internal/api/httpx"
	"github.com/5w1tchy/bookshelf/internal/api/middlewares"
)

// ConfirmDelete shows the single confirmation step before a delete.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
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
	h.rs.Render(w, r, http.StatusOK, "confirm_delete", "Delete "+b.Title, b)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	if err := h.books.Delete(r.Context(), id); err != nil {
		h.rs.Fail(w, r, err)
		return
	}
	actor, _ := middlewares.UserIDFrom(r.Context())
	h.log.Info("deleted", "id", id, "actor", actor)
	httpx.SeeOther(w, r, "/")
}
