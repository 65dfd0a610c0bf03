package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists per-session state outside the process.
// Every write resets the TTL of the keys it touches.
type Store interface {
	UserID(ctx context.Context, sid string) (string, error)
	SetUserID(ctx context.Context, sid, userID string, ttl time.Duration) error
	// Query returns the saved raw query and whether one exists.
	Query(ctx context.Context, sid string) (string, bool, error)
	SetQuery(ctx context.Context, sid, raw string, ttl time.Duration) error
	// Touch pushes the expiry of whatever the session holds to ttl from now.
	Touch(ctx context.Context, sid string, ttl time.Duration) error
	Delete(ctx context.Context, sid string) error
}

const (
	keyPrefix = "sess:"
	fieldUID  = "uid"
	opTimeout = 300 * time.Millisecond
)

func dataKey(sid string) string  { return keyPrefix + sid }
func queryKey(sid string) string { return keyPrefix + sid + ":query" }

// RedisStore keeps a hash per session for identity and a string key for the
// last list query.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) UserID(ctx context.Context, sid string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	uid, err := s.rdb.HGet(ctx, dataKey(sid), fieldUID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return uid, err
}

func (s *RedisStore) SetUserID(ctx context.Context, sid, userID string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, dataKey(sid), fieldUID, userID)
	pipe.Expire(ctx, dataKey(sid), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Query(ctx context.Context, sid string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	raw, err := s.rdb.Get(ctx, queryKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return raw, true, nil
}

func (s *RedisStore) SetQuery(ctx context.Context, sid, raw string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.rdb.Set(ctx, queryKey(sid), raw, ttl).Err()
}

func (s *RedisStore) Touch(ctx context.Context, sid string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	pipe := s.rdb.Pipeline()
	pipe.Expire(ctx, dataKey(sid), ttl)
	pipe.Expire(ctx, queryKey(sid), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.rdb.Del(ctx, dataKey(sid), queryKey(sid)).Err()
}
