package redis

import (
	"context"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/cache"
)

// SnapshotCache stores computed league statistics snapshots in Redis so that
// multiple instances share results and survive restarts. It implements
// cache.SnapshotStore and is consulted by LeagueStatsCache on an in-memory
// miss before recomputing from play-by-play data.
type SnapshotCache struct {
	cache *Cache
}

// NewSnapshotCache wraps a connected Cache.
func NewSnapshotCache(c *Cache) *SnapshotCache {
	return &SnapshotCache{cache: c}
}

func snapshotKey(key string) string {
	return PrefixSnapshot + key
}

// GetLeagueStats fetches a stored snapshot. Returns ErrCacheMiss when the
// key is absent.
func (s *SnapshotCache) GetLeagueStats(ctx context.Context, key string) (cache.LeagueStats, error) {
	var ls cache.LeagueStats
	if err := s.cache.Get(ctx, snapshotKey(key), &ls); err != nil {
		return cache.LeagueStats{}, err
	}
	return ls, nil
}

// SetLeagueStats stores a snapshot. A negative TTL pins the entry without
// expiration, matching the in-memory cache's treatment of complete seasons.
func (s *SnapshotCache) SetLeagueStats(ctx context.Context, key string, ls cache.LeagueStats, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.cache.Set(ctx, snapshotKey(key), ls, ttl)
}

// Clear removes stored snapshots. An empty pattern removes all snapshots;
// otherwise pattern is matched as a substring of the snapshot key, mirroring
// the in-memory cache's Clear semantics.
func (s *SnapshotCache) Clear(ctx context.Context, pattern string) (int, error) {
	return s.cache.DeleteByPattern(ctx, clearGlob(pattern))
}

func clearGlob(pattern string) string {
	if pattern == "" {
		return PrefixSnapshot + "*"
	}
	return PrefixSnapshot + "*" + pattern + "*"
}
