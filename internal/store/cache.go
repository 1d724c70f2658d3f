package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"log/slog"

	"github.com/DiAndyW/TrueTalent/internal/app"
)

// Cache is a cache-aside Redis layer in front of the problem catalog.
// A miss or a Redis hiccup falls through to Postgres; the cache is
// never authoritative.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	log    *slog.Logger
}

// NewCache connects to redis and verifies connectivity
func NewCache(ctx context.Context, cfg app.Config, log *slog.Logger) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Cache{rdb: rdb, prefix: "catalog:", ttl: 5 * time.Minute, log: log}, nil
}

// Get loads key into dest. Returns false on a miss or any error.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	data, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache.get", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Warn("cache.decode", "key", key, "err", err)
		return false
	}
	return true
}

// Set stores value under key for the cache TTL; failures are logged, not returned
func (c *Cache) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.log.Warn("cache.set", "key", key, "err", err)
	}
}

// Invalidate drops a key, e.g. after the catalog changes
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		c.log.Warn("cache.del", "key", key, "err", err)
	}
}

// Close shuts down the redis connection
func (c *Cache) Close() { _ = c.rdb.Close() }
