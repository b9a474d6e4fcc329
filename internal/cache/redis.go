// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCache implements Cache backed by Redis, so cached job results
// survive process restarts and can be shared between workers. Values
// are stored as JSON and come back as decoded generic values, which
// the engine tolerates because it treats cached results as opaque.
type RedisCache struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisCache creates a Redis-backed cache. The connection is
// verified with a ping so a misconfigured address fails at startup
// rather than on the first job.
func NewRedisCache(addr, password string, db int, timeout time.Duration) (*RedisCache, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Debug().Str("addr", addr).Int("db", db).Msg("Redis cache connected")
	return &RedisCache{client: client, timeout: timeout}, nil
}

// Get retrieves and JSON-decodes a cached value.
func (rc *RedisCache) Get(key string) (any, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()

	raw, err := rc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Redis get failed")
		return nil, false
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to decode cached value")
		return nil, false
	}

	log.Debug().Str("key", key).Msg("Cache hit")
	return value, true
}

// Set JSON-encodes and stores a value with TTL.
func (rc *RedisCache) Set(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Hour
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()
	return rc.client.Set(ctx, key, raw, ttl).Err()
}

// Delete removes a cached value.
func (rc *RedisCache) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()
	return rc.client.Del(ctx, key).Err()
}

// Clear flushes the selected database.
func (rc *RedisCache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()
	return rc.client.FlushDB(ctx).Err()
}

// Close releases the client connection pool.
func (rc *RedisCache) Close() {
	if err := rc.client.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing Redis cache")
	}
}
