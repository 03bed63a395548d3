package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cosurvival/pkg/platform/sentinel"
)

const redisKeyPrefix = "cosurvival:snapshot:"

// Redis stores snapshots in Redis so several dashboard processes can share
// one persisted state. The client lifecycle is managed externally.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis backend.
type RedisOption func(*Redis)

// WithTTL expires snapshots ttl after their last save. Zero keeps them
// forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces keys, e.g. per environment.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: redisKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) Load(ctx context.Context, key string) (data []byte, err error) {
	start := time.Now()
	defer func() { observe("redis", "load", start, err) }()

	data, err = r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Save uses SET with expiry so the value and its TTL change atomically.
func (r *Redis) Save(ctx context.Context, key string, data []byte) (err error) {
	start := time.Now()
	defer func() { observe("redis", "save", start, err) }()

	if err = r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
