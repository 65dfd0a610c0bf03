package books_test

import (
	"context"
	"sync"
	"time"

	"github.com/5w1tchy/bookshelf/internal/filter"
	"github.com/5w1tchy/bookshelf/internal/models"
	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
	"github.com/5w1tchy/bookshelf/internal/store/dbx"
)

// fakeBooks is an in-memory BookStore that evaluates queries with the
// filter engine's in-process predicate.
type fakeBooks struct {
	mu    sync.Mutex
	rows  map[int64]models.Book
	next  int64
	clock time.Time
}

func newFakeBooks() *fakeBooks {
	return &fakeBooks{rows: map[int64]models.Book{}, clock: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeBooks) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeBooks) List(_ context.Context, q filter.Query, limit, offset int) ([]models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Book
	for _, b := range f.rows {
		if q.Match(b) {
			out = append(out, b)
		}
	}
	filter.Sort(out)
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBooks) Count(ctx context.Context, q filter.Query) (int, error) {
	all, err := f.List(ctx, q, 0, 0)
	return len(all), err
}

func (f *fakeBooks) Get(_ context.Context, id int64) (models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return models.Book{}, dbx.ErrNotFound
	}
	return b, nil
}

func apply(b *models.Book, in storebooks.Input) {
	b.Title, b.Author, b.ReadReason, b.Review = in.Title, in.Author, in.ReadReason, in.Review
	b.ReadStatus, b.IsWonder, b.CategoryID = in.ReadStatus, in.IsWonder, in.CategoryID
	b.StartDate, b.EndDate = in.StartDate, in.EndDate
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (f *fakeBooks) Create(_ context.Context, in storebooks.Input, actor string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	now := f.tick()
	b := models.Book{ID: f.next, CreatedBy: ptr(actor), CreatedAt: now, UpdatedBy: ptr(actor), UpdatedAt: now}
	apply(&b, in)
	f.rows[b.ID] = b
	return b.ID, nil
}

func (f *fakeBooks) Update(_ context.Context, id int64, in storebooks.Input, actor string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return dbx.ErrNotFound
	}
	apply(&b, in)
	b.UpdatedBy, b.UpdatedAt = ptr(actor), f.tick()
	f.rows[id] = b
	return nil
}

func (f *fakeBooks) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return dbx.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeCats map[int64]string

func (f fakeCats) List(context.Context) ([]models.Category, error) {
	var out []models.Category
	for id, name := range f {
		out = append(out, models.Category{ID: id, Name: name})
	}
	return out, nil
}

func (f fakeCats) Get(_ context.Context, id int64) (models.Category, error) {
	name, ok := f[id]
	if !ok {
		return models.Category{}, dbx.ErrNotFound
	}
	return models.Category{ID: id, Name: name}, nil
}
