package books

import (
	"net/http"
	"strconv"

	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

// pathID reads the {id} path value. Anything that is not a positive integer
// cannot name a book, so it is reported as not found.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, dbx.ErrNotFound
	}
	return id, nil
}
