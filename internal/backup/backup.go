// Package backup snapshots categories and books to object storage.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/5w1tchy/bookshelf/internal/filter"
	"github.com/5w1tchy/bookshelf/internal/models"
	"github.com/5w1tchy/bookshelf/internal/storage/s3"
)

const (
	keyStem   = "bookshelf-"
	keyLayout = "20060102T150405Z"
)

type BookLister interface {
	List(ctx context.Context, q filter.Query, limit, offset int) ([]models.Book, error)
}

type CategoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// ObjectStore is implemented by *s3.Client.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	List(ctx context.Context, prefix string) ([]s3.Object, error)
	Delete(ctx context.Context, key string) error
}

type Snapshot struct {
	TakenAt    time.Time         `json:"taken_at"`
	Categories []models.Category `json:"categories"`
	Books      []models.Book     `json:"books"`
}

type Service struct {
	books  BookLister
	cats   CategoryLister
	store  ObjectStore
	prefix string
	now    func() time.Time
	log    *log.Logger
}

func New(books BookLister, cats CategoryLister, store ObjectStore, prefix string, logger *log.Logger) *Service {
	return &Service{
		books:  books,
		cats:   cats,
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
		log:    logger.WithPrefix("backup"),
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Key names the snapshot taken at t.
func Key(prefix string, t time.Time) string {
	name := keyStem + t.UTC().Format(keyLayout) + ".json"
	if prefix = strings.Trim(prefix, "/"); prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Take reads every category and book.
func (s *Service) Take(ctx context.Context) (Snapshot, error) {
	cats, err := s.cats.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("backup: categories: %w", err)
	}
	books, err := s.books.List(ctx, filter.All(), 0, 0)
	if err != nil {
		return Snapshot{}, fmt.Errorf("backup: books: %w", err)
	}
	if cats == nil {
		cats = []models.Category{}
	}
	if books == nil {
		books = []models.Book{}
	}
	return Snapshot{TakenAt: s.now().UTC(), Categories: cats, Books: books}, nil
}

// Run takes a snapshot and uploads it, returning the object key.
func (s *Service) Run(ctx context.Context) (string, error) {
	snap, err := s.Take(ctx)
	if err != nil {
		return "", err
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("backup: encode: %w", err)
	}
	key := Key(s.prefix, snap.TakenAt)
	if err := s.store.Put(ctx, key, "application/json", body); err != nil {
		return "", err
	}
	s.log.Info("snapshot uploaded", "key", key, "books", len(snap.Books), "categories", len(snap.Categories), "bytes", len(body))
	return key, nil
}

// Prune deletes all but the newest keep snapshots under the prefix.
// Objects that do not look like snapshots are left alone.
func (s *Service) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep < 1 {
		return nil, fmt.Errorf("backup: keep must be >= 1, got %d", keep)
	}
	stem := keyStem
	if s.prefix != "" {
		stem = s.prefix + "/" + keyStem
	}
	objs, err := s.store.List(ctx, stem)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, o := range objs {
		if strings.HasSuffix(o.Key, ".json") {
			keys = append(keys, o.Key)
		}
	}
	if len(keys) <= keep {
		return nil, nil
	}
	// Timestamps in the key sort lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	var deleted []string
	for _, k := range keys[keep:] {
		if err := s.store.Delete(ctx, k); err != nil {
			return deleted, err
		}
		deleted = append(deleted, k)
	}
	s.log.Info("old snapshots pruned", "deleted", len(deleted), "kept", keep)
	return deleted, nil
}
