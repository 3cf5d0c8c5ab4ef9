// Package cache is a Redis read-through cache for list endpoints. Keys are
// namespaced by table and a per-table version; bumping the version on every
// write invalidates all cached reads of that table at once.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Invalidator is the write side of the cache.
type Invalidator interface {
	Invalidate(ctx context.Context, tables ...string)
}

// Cache wraps a Redis client. A nil client turns every call into a
// pass-through to the loader.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// New creates a cache with the given entry TTL.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func versionKey(table string) string {
	return "cache:ver:" + table
}

// Key returns the current key for a variant of table's data.
func (c *Cache) Key(ctx context.Context, table, variant string) (string, error) {
	ver, err := c.client.Get(ctx, versionKey(table)).Result()
	if errors.Is(err, redis.Nil) {
		ver = "0"
	} else if err != nil {
		return "", err
	}
	return "cache:" + table + ":v" + ver + ":" + variant, nil
}

// Invalidate bumps the version of each table.
func (c *Cache) Invalidate(ctx context.Context, tables ...string) {
	if c == nil || c.client == nil {
		return
	}
	for _, t := range tables {
		if err := c.client.Incr(ctx, versionKey(t)).Err(); err != nil {
			log.Warn().Err(err).Str("table", t).Msg("Failed to invalidate cache")
		}
	}
}

// Fetch returns the cached value of table/variant or calls load, caching
// its result. Concurrent misses for the same key share one load. Redis
// failures degrade to calling load directly.
func Fetch[T any](ctx context.Context, c *Cache, table, variant string, load func(context.Context) (T, error)) (T, error) {
	if c == nil || c.client == nil {
		return load(ctx)
	}

	key, err := c.Key(ctx, table, variant)
	if err != nil {
		log.Debug().Err(err).Str("table", table).Msg("Cache unavailable")
		return load(ctx)
	}

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Debug().Err(err).Str("key", key).Msg("Cache read failed")
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(loaded); err == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				log.Debug().Err(err).Str("key", key).Msg("Cache write failed")
			}
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
