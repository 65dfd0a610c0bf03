package books

import "net/http"

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
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
	h.rs.Render(w, r, http.StatusOK, "detail", b.Title, b)
}
