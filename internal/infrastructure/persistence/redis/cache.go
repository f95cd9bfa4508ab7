// Package redis provides a Redis-backed second-level cache for computed
// league statistics. The in-process cache in internal/infrastructure/cache
// is authoritative for a single instance; this package lets several
// instances share computed snapshots and survive restarts without refetching
// play-by-play data.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ═══════════════════════════════════════════════════════════════════════════
// ERRORS
// ═══════════════════════════════════════════════════════════════════════════

var (
	// ErrCacheMiss indicates the requested key was not found.
	ErrCacheMiss = errors.New("redis: cache miss")

	// ErrCacheConnection indicates a connection-level failure.
	ErrCacheConnection = errors.New("redis: connection failed")

	// ErrCacheSerialization indicates a marshal or unmarshal failure.
	ErrCacheSerialization = errors.New("redis: serialization failed")

	// ErrCacheKeyEmpty indicates an empty key was supplied.
	ErrCacheKeyEmpty = errors.New("redis: key is empty")

	// ErrCacheNilValue indicates a nil value was supplied for storage.
	ErrCacheNilValue = errors.New("redis: nil value")
)

// ═══════════════════════════════════════════════════════════════════════════
// KEY PREFIXES
// ═══════════════════════════════════════════════════════════════════════════

const (
	// PrefixLeague namespaces computed league statistics snapshots.
	PrefixLeague = "nfl:league:"

	// PrefixRankings namespaces computed ranking maps.
	PrefixRankings = "nfl:rankings:"

	// PrefixSnapshot namespaces raw play-by-play snapshot metadata.
	PrefixSnapshot = "nfl:snapshot:"

	// PrefixLock namespaces distributed compute locks.
	PrefixLock = "nfl:lock:"
)

// ═══════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ═══════════════════════════════════════════════════════════════════════════

// Config holds Redis connection settings.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// Addr returns the host:port address string.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ═══════════════════════════════════════════════════════════════════════════
// CACHE
// ═══════════════════════════════════════════════════════════════════════════

// Cache wraps a Redis client with JSON serialization helpers.
type Cache struct {
	client *redis.Client
	config Config
}

// NewCache creates a Cache and verifies connectivity with a ping.
func NewCache(ctx context.Context, config Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr(),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return &Cache{client: client, config: config}, nil
}

// Client exposes the underlying Redis client.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping verifies the connection is alive.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return nil
}

// Set stores a value as JSON with the given TTL. A zero TTL stores the key
// without expiration.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrCacheKeyEmpty
	}
	if value == nil {
		return ErrCacheNilValue
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrCacheSerialization, key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrCacheConnection, key, err)
	}
	return nil
}

// Get retrieves a value and unmarshals it into dest. Returns ErrCacheMiss
// when the key does not exist.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if key == "" {
		return ErrCacheKeyEmpty
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrCacheMiss, key)
		}
		return fmt.Errorf("%w: get %s: %v", ErrCacheConnection, key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: unmarshal %s: %v", ErrCacheSerialization, key, err)
	}
	return nil
}

// Delete removes one or more keys. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: delete: %v", ErrCacheConnection, err)
	}
	return nil
}

// Exists reports whether the key is present.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrCacheKeyEmpty
	}
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: exists %s: %v", ErrCacheConnection, key, err)
	}
	return n > 0, nil
}

// TTL returns the remaining lifetime of a key.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, error) {
	if key == "" {
		return 0, ErrCacheKeyEmpty
	}
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: ttl %s: %v", ErrCacheConnection, key, err)
	}
	return ttl, nil
}

// DeleteByPattern removes all keys matching a glob pattern using SCAN to
// avoid blocking the server. Returns the number of keys removed.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	if pattern == "" {
		return 0, ErrCacheKeyEmpty
	}

	var deleted int
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 100 {
			n, err := c.client.Del(ctx, batch...).Result()
			if err != nil {
				return deleted, fmt.Errorf("%w: delete batch: %v", ErrCacheConnection, err)
			}
			deleted += int(n)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("%w: scan %s: %v", ErrCacheConnection, pattern, err)
	}

	if len(batch) > 0 {
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			return deleted, fmt.Errorf("%w: delete batch: %v", ErrCacheConnection, err)
		}
		deleted += int(n)
	}

	return deleted, nil
}

// SetNX stores a value only when the key does not already exist. Used as a
// lightweight distributed lock around expensive recomputation.
func (c *Cache) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrCacheKeyEmpty
	}

	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("%w: marshal %s: %v", ErrCacheSerialization, key, err)
	}

	ok, err := c.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: setnx %s: %v", ErrCacheConnection, key, err)
	}
	return ok, nil
}
