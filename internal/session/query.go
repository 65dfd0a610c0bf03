package session

import (
	"context"
	"errors"
	"net/url"
	"time"
)

var ErrNoSession = errors.New("session: no session")

// QueryCache remembers the most recent list query of each session so that
// coming back to the list restores the search.
type QueryCache struct {
	store Store
	ttl   time.Duration
}

func NewQueryCache(store Store, ttl time.Duration) *QueryCache {
	return &QueryCache{store: store, ttl: ttl}
}

// Save replaces the session's stored query with q. There is no merging.
func (c *QueryCache) Save(ctx context.Context, s *Session, q url.Values) error {
	if s == nil {
		return ErrNoSession
	}
	return c.store.SetQuery(ctx, s.ID, q.Encode(), c.ttl)
}

// Restore returns the last saved query, or an empty one if nothing was saved
// or the session expired.
func (c *QueryCache) Restore(ctx context.Context, s *Session) (url.Values, error) {
	if s == nil {
		return url.Values{}, ErrNoSession
	}
	raw, ok, err := c.store.Query(ctx, s.ID)
	if err != nil || !ok {
		return url.Values{}, err
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return url.Values{}, err
	}
	return q, nil
}
