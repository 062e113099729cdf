package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with a per-token TTL so logins survive
// API server restarts.
type RedisStore struct {
	rdb *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Store backed by the given Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// NewRedisClient dials Redis at addr with a short IO timeout.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		ReadTimeout: 2 * time.Second,
	})
}

func sessionKey(token string) string {
	return "session:" + token
}

func (r *RedisStore) Save(ctx context.Context, token string, s Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}
	if err := r.rdb.Set(ctx, sessionKey(token), data, ttl).Err(); err != nil {
		return errors.Wrap(err, "set session")
	}
	return nil
}

func (r *RedisStore) Lookup(ctx context.Context, token string) (*Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get session")
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "unmarshal session")
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	if err := r.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}
