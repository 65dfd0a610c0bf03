package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node development.
type MemoryStore struct {
	mu    sync.Mutex
	now   func() time.Time
	uids  map[string]entry
	query map[string]entry
}

type entry struct {
	val string
	exp time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:   time.Now,
		uids:  map[string]entry{},
		query: map[string]entry{},
	}
}

func (m *MemoryStore) get(tbl map[string]entry, sid string) (string, bool) {
	e, ok := tbl[sid]
	if !ok {
		return "", false
	}
	if m.now().After(e.exp) {
		delete(tbl, sid)
		return "", false
	}
	return e.val, true
}

func (m *MemoryStore) UserID(_ context.Context, sid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, _ := m.get(m.uids, sid)
	return uid, nil
}

func (m *MemoryStore) SetUserID(_ context.Context, sid, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uids[sid] = entry{val: userID, exp: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Query(_ context.Context, sid string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.get(m.query, sid)
	return raw, ok, nil
}

func (m *MemoryStore) SetQuery(_ context.Context, sid, raw string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query[sid] = entry{val: raw, exp: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Touch(_ context.Context, sid string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tbl := range []map[string]entry{m.uids, m.query} {
		if v, ok := m.get(tbl, sid); ok {
			tbl[sid] = entry{val: v, exp: m.now().Add(ttl)}
		}
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uids, sid)
	delete(m.query, sid)
	return nil
}
