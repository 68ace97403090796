package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/crux/internal/domain/model"
)

// redisKeyPrefix namespaces moment entries in a shared Redis.
const redisKeyPrefix = "crux:moment:"

// RedisCache implements Cache on Redis. The value is a JSON envelope that
// embeds the store time so freshness can be derived client-side; the Redis
// expiry is set to the stale-retention window, after which Redis itself
// evicts the entry.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

type redisEnvelope struct {
	Moment   model.Moment `json:"moment"`
	StoredAt time.Time    `json:"stored_at"`
}

// RedisOption applies a configuration option to the RedisCache.
type RedisOption func(*RedisCache)

// WithRedisTTL sets the freshness TTL.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRedisClock replaces the time source, for tests.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(c *RedisCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(addr, password string, db int, opts ...RedisOption) *RedisCache {
	c := &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached moment and its freshness. Redis errors map to a
// miss: the cache is advisory, a broken cache must not break computation.
func (c *RedisCache) Get(ctx context.Context, eventID string) (model.Moment, Freshness, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+eventID).Result()
	if err != nil {
		return model.Moment{}, Fresh, false
	}

	var env redisEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return model.Moment{}, Fresh, false
	}

	if c.now().Sub(env.StoredAt) <= c.ttl {
		return env.Moment, Fresh, true
	}
	return env.Moment, Stale, true
}

// Set stores a moment with an expiry covering the stale-retention window.
func (c *RedisCache) Set(ctx context.Context, eventID string, m model.Moment) error {
	data, err := json.Marshal(redisEnvelope{Moment: m, StoredAt: c.now()})
	if err != nil {
		return fmt.Errorf("marshal moment: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+eventID, data, c.ttl*staleRetentionFactor).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Len returns the number of moment keys, or 0 when Redis is unreachable.
func (c *RedisCache) Len(ctx context.Context) int {
	var count int
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return 0
	}
	return count
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
