// Package books serves the book list, detail page and the create, update and
// delete forms.
package books

import (
	"context"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/5w1tchy/bookshelf/internal/api/httpx"
	"github.com/5w1tchy/bookshelf/internal/filter"
	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/session"
	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
	"github.com/5w1tchy/bookshelf/internal/validate"
	"github.com/5w1tchy/bookshelf/internal/view"
)

// PageSize is the number of books per list page.
const PageSize = 10

type BookStore interface {
	List(ctx context.Context, q filter.Query, limit, offset int) ([]models.Book, error)
	Count(ctx context.Context, q filter.Query) (int, error)
	Get(ctx context.Context, id int64) (models.Book, error)
	Create(ctx context.Context, in storebooks.Input, actor string) (int64, error)
	Update(ctx context.Context, id int64, in storebooks.Input, actor string) error
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id int64) (models.Category, error)
}

// QueryCache is implemented by *session.QueryCache.
type QueryCache interface {
	Save(ctx context.Context, s *session.Session, q url.Values) error
	Restore(ctx context.Context, s *session.Session) (url.Values, error)
}

type Handler struct {
	books  BookStore
	cats   CategoryStore
	cache  QueryCache
	engine filter.Engine
	v      *validate.Validator
	rs     httpx.Responder
	log    *log.Logger
}

func New(books BookStore, cats CategoryStore, cache QueryCache, engine filter.Engine, r *view.Renderer, logger *log.Logger) *Handler {
	logger = logger.WithPrefix("books")
	return &Handler{
		books:  books,
		cats:   cats,
		cache:  cache,
		engine: engine,
		v:      validate.New(),
		rs:     httpx.Responder{View: r, Log: logger},
		log:    logger,
	}
}
