// Package cache provides the in-process caching layer: a generic TTL/LRU
// cache and the league statistics cache built on top of it.
package cache

import (
	"math"
	"strings"
	"sync"
	"time"
)

// NoExpiry marks an entry that never expires, regardless of the cache's
// default TTL.
const NoExpiry = time.Duration(-1)

type entry[V any] struct {
	value        V
	createdAt    time.Time
	lastAccessed time.Time
	accessCount  int64
	ttl          time.Duration // 0 means use the cache default
}

func (e *entry[V]) expired(defaultTTL time.Duration, now time.Time) bool {
	ttl := e.ttl
	if ttl == 0 {
		ttl = defaultTTL
	}
	if ttl <= 0 {
		return false
	}
	return now.Sub(e.createdAt) > ttl
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Size          int     `json:"size"`
	MaxSize       int     `json:"max_size"`
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Evictions     int64   `json:"evictions"`
	HitRatePct    float64 `json:"hit_rate_percent"`
	TotalRequests int64   `json:"total_requests"`
}

// SimpleCache is a mutex-guarded map with TTL expiry and LRU eviction.
// Expiry is evaluated lazily at lookup time; there is no background sweep.
// A zero defaultTTL means entries never expire unless given their own TTL,
// and a maxSize of 0 means unbounded.
type SimpleCache[V any] struct {
	mu         sync.Mutex
	entries    map[string]*entry[V]
	defaultTTL time.Duration
	maxSize    int
	now        func() time.Time

	hits      int64
	misses    int64
	evictions int64
}

// NewSimpleCache builds a cache with the given default TTL and size bound.
func NewSimpleCache[V any](defaultTTL time.Duration, maxSize int) *SimpleCache[V] {
	return &SimpleCache[V]{
		entries:    make(map[string]*entry[V]),
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
		now:        time.Now,
	}
}

// Get returns the cached value for key. An expired entry, or one the
// validator rejects, is deleted and reported as a miss.
func (c *SimpleCache[V]) Get(key string, validator func(V) bool) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	if e.expired(c.defaultTTL, c.now()) {
		delete(c.entries, key)
		c.misses++
		c.evictions++
		return zero, false
	}

	if validator != nil && !validator(e.value) {
		delete(c.entries, key)
		c.misses++
		c.evictions++
		return zero, false
	}

	e.accessCount++
	e.lastAccessed = c.now()
	c.hits++
	return e.value, true
}

// Set stores a value under the cache's default TTL.
func (c *SimpleCache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores a value with an entry-specific TTL. A ttl of 0 uses
// the cache default; NoExpiry pins the entry until evicted or cleared.
func (c *SimpleCache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		if _, exists := c.entries[key]; !exists {
			c.evictLRU()
		}
	}

	now := c.now()
	c.entries[key] = &entry[V]{
		value:        value,
		createdAt:    now,
		lastAccessed: now,
		ttl:          ttl,
	}
}

// GetOrCompute returns the cached value or computes, stores and returns a
// fresh one. A compute error is returned without caching anything.
func (c *SimpleCache[V]) GetOrCompute(key string, compute func() (V, error), validator func(V) bool, ttl time.Duration) (V, error) {
	if v, ok := c.Get(key, validator); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.SetWithTTL(key, v, ttl)
	return v, nil
}

// Invalidate removes one key, reporting whether it was present.
func (c *SimpleCache[V]) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	c.evictions++
	return true
}

// Clear removes entries whose key contains pattern, or everything when
// pattern is empty, returning the number removed.
func (c *SimpleCache[V]) Clear(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pattern == "" {
		n := len(c.entries)
		c.entries = make(map[string]*entry[V])
		c.evictions += int64(n)
		return n
	}

	n := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			n++
		}
	}
	c.evictions += int64(n)
	return n
}

// Contains reports whether a live entry exists without touching LRU order
// or statistics.
func (c *SimpleCache[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return ok && !e.expired(c.defaultTTL, c.now())
}

// Len returns the number of stored entries, expired or not.
func (c *SimpleCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of cache counters.
func (c *SimpleCache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = math.Round(float64(c.hits)/float64(total)*10000) / 100
	}

	return Stats{
		Size:          len(c.entries),
		MaxSize:       c.maxSize,
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		HitRatePct:    hitRate,
		TotalRequests: total,
	}
}

// evictLRU drops the least recently accessed entry. Caller holds the lock.
func (c *SimpleCache[V]) evictLRU() {
	var lruKey string
	var lruTime time.Time
	first := true

	for key, e := range c.entries {
		if first || e.lastAccessed.Before(lruTime) {
			lruKey = key
			lruTime = e.lastAccessed
			first = false
		}
	}
	if !first {
		delete(c.entries, lruKey)
		c.evictions++
	}
}
