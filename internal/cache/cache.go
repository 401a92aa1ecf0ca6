// Package cache is the read-through/invalidate layer over Redis used by the
// hot read paths. Writes to it never fail a request: a cache that is down
// degrades reads to the database and nothing more.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/redis"
)

// Backend is the slice of the Redis client the cache layer needs.
type Backend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	DelByPattern(ctx context.Context, pattern string) error
}

// Cache serializes values as JSON under fixed keys with a fixed TTL.
type Cache struct {
	backend Backend
	ttl     time.Duration
	logg    *logger.Logger
}

// New wires a Redis backend with the configured entry TTL.
func New(backend Backend, ttl time.Duration, logg *logger.Logger) *Cache {
	return &Cache{backend: backend, ttl: ttl, logg: logg}
}

// GetJSON loads the cached value for key into dest. It reports false on a
// miss and swallows backend errors as misses, logging them.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	raw, err := c.backend.Get(ctx, key)
	if err != nil {
		if err != redis.Nil {
			c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "cache read failed", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "cache entry corrupt", err)
		return false
	}
	return true
}

// SetJSON stores value under key with the configured TTL. Failures are
// logged and swallowed.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "cache marshal failed", err)
		return
	}
	if err := c.backend.Set(ctx, key, raw, c.ttl); err != nil {
		c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "cache write failed", err)
	}
}

// Invalidate drops the exact keys. Runs after the store commit; failures
// are logged and swallowed so they cannot undo a committed mutation.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.backend.Del(ctx, keys...); err != nil {
		c.logg.Error(c.logg.WithField(ctx, "cache_keys", keys), "cache invalidation failed", err)
	}
}

// InvalidateItemPages drops every paginated item-listing entry. Pagination
// offsets shift on any item mutation, so the whole family goes at once.
func (c *Cache) InvalidateItemPages(ctx context.Context) {
	if err := c.backend.DelByPattern(ctx, itemPagePrefix+"*"); err != nil {
		c.logg.Error(ctx, "item page invalidation failed", err)
	}
}
