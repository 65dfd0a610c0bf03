package session_test

import (
	"context"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/5w1tchy/bookshelf/internal/session"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *session.RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, session.NewRedisStore(rdb)
}

func TestRedisStore_UserID(t *testing.T) {
	mr, st := newRedis(t)
	ctx := context.Background()

	uid, err := st.UserID(ctx, "s1")
	if err != nil || uid != "" {
		t.Fatalf("unknown session: uid=%q err=%v", uid, err)
	}

	if err := st.SetUserID(ctx, "s1", "u-1", time.Hour); err != nil {
		t.Fatal(err)
	}
	if uid, _ := st.UserID(ctx, "s1"); uid != "u-1" {
		t.Fatalf("uid = %q", uid)
	}
	if ttl := mr.TTL("sess:s1"); ttl != time.Hour {
		t.Fatalf("ttl = %s", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if uid, _ := st.UserID(ctx, "s1"); uid != "" {
		t.Fatalf("expired session still resolves to %q", uid)
	}
}

func TestQueryCache_SaveRestore(t *testing.T) {
	_, st := newRedis(t)
	ctx := context.Background()
	cache := session.NewQueryCache(st, time.Hour)
	s := &session.Session{ID: "s1"}

	got, err := cache.Restore(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("first visit should restore nothing, got %v", got)
	}

	first := url.Values{"title": {"go"}, "read_status": {"3"}}
	if err := cache.Save(ctx, s, first); err != nil {
		t.Fatal(err)
	}
	got, _ = cache.Restore(ctx, s)
	if !reflect.DeepEqual(got, first) {
		t.Fatalf("restore = %v, want %v", got, first)
	}

	// A second save replaces the first wholesale.
	second := url.Values{"author": {"pike"}}
	if err := cache.Save(ctx, s, second); err != nil {
		t.Fatal(err)
	}
	got, _ = cache.Restore(ctx, s)
	if !reflect.DeepEqual(got, second) {
		t.Fatalf("restore = %v, want %v", got, second)
	}
}

func TestQueryCache_IsPerSession(t *testing.T) {
	_, st := newRedis(t)
	ctx := context.Background()
	cache := session.NewQueryCache(st, time.Hour)

	_ = cache.Save(ctx, &session.Session{ID: "a"}, url.Values{"title": {"x"}})
	got, _ := cache.Restore(ctx, &session.Session{ID: "b"})
	if len(got) != 0 {
		t.Fatalf("session b sees session a's query: %v", got)
	}
}

func TestQueryCache_ExpiresWithSession(t *testing.T) {
	mr, st := newRedis(t)
	ctx := context.Background()
	cache := session.NewQueryCache(st, time.Minute)
	s := &session.Session{ID: "s1"}

	_ = cache.Save(ctx, s, url.Values{"title": {"x"}})
	mr.FastForward(2 * time.Minute)
	got, err := cache.Restore(ctx, s)
	if err != nil || len(got) != 0 {
		t.Fatalf("expired query restored: %v err=%v", got, err)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	mr, st := newRedis(t)
	ctx := context.Background()
	_ = st.SetUserID(ctx, "s1", "u-1", time.Hour)
	_ = st.SetQuery(ctx, "s1", "title=x", time.Hour)

	if err := st.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("sess:s1") || mr.Exists("sess:s1:query") {
		t.Fatal("keys survived delete")
	}
}
