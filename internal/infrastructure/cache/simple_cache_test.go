package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newClockedCache(defaultTTL time.Duration, maxSize int) (*SimpleCache[string], *time.Time) {
	c := NewSimpleCache[string](defaultTTL, maxSize)
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestSimpleCache_SetAndGet(t *testing.T) {
	c, _ := newClockedCache(time.Minute, 0)

	c.Set("a", "alpha")

	v, ok := c.Get("a", nil)
	assert.True(t, ok)
	assert.Equal(t, "alpha", v)

	_, ok = c.Get("missing", nil)
	assert.False(t, ok)
}

func TestSimpleCache_TTLExpiry(t *testing.T) {
	c, now := newClockedCache(time.Minute, 0)

	c.Set("a", "alpha")

	*now = now.Add(59 * time.Second)
	_, ok := c.Get("a", nil)
	assert.True(t, ok)

	*now = now.Add(2 * time.Second)
	_, ok = c.Get("a", nil)
	assert.False(t, ok, "entry past its TTL should be dropped")
	assert.Equal(t, 0, c.Len())
}

func TestSimpleCache_EntryTTLOverridesDefault(t *testing.T) {
	c, now := newClockedCache(time.Minute, 0)

	c.SetWithTTL("short", "x", time.Second)
	c.SetWithTTL("pinned", "y", NoExpiry)

	*now = now.Add(2 * time.Second)
	_, ok := c.Get("short", nil)
	assert.False(t, ok)

	*now = now.Add(1000 * time.Hour)
	v, ok := c.Get("pinned", nil)
	assert.True(t, ok)
	assert.Equal(t, "y", v)
}

func TestSimpleCache_ZeroDefaultTTLNeverExpires(t *testing.T) {
	c, now := newClockedCache(0, 0)

	c.Set("a", "alpha")
	*now = now.Add(24 * 365 * time.Hour)

	_, ok := c.Get("a", nil)
	assert.True(t, ok)
}

func TestSimpleCache_ValidatorEvicts(t *testing.T) {
	c, _ := newClockedCache(time.Minute, 0)

	c.Set("a", "stale")

	_, ok := c.Get("a", func(v string) bool { return v != "stale" })
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "rejected entry should be deleted")

	st := c.Stats()
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, int64(1), st.Evictions)
}

func TestSimpleCache_LRUEviction(t *testing.T) {
	c, now := newClockedCache(time.Minute, 2)

	c.Set("a", "alpha")
	*now = now.Add(time.Second)
	c.Set("b", "beta")

	// Touch a so b becomes least recently used.
	*now = now.Add(time.Second)
	_, ok := c.Get("a", nil)
	assert.True(t, ok)

	*now = now.Add(time.Second)
	c.Set("c", "gamma")

	_, ok = c.Get("b", nil)
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("a", nil)
	assert.True(t, ok)
	_, ok = c.Get("c", nil)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestSimpleCache_OverwriteDoesNotEvict(t *testing.T) {
	c, _ := newClockedCache(time.Minute, 2)

	c.Set("a", "alpha")
	c.Set("b", "beta")
	c.Set("a", "alpha2")

	assert.Equal(t, 2, c.Len())
	v, ok := c.Get("a", nil)
	assert.True(t, ok)
	assert.Equal(t, "alpha2", v)
	_, ok = c.Get("b", nil)
	assert.True(t, ok)
}

func TestSimpleCache_GetOrCompute(t *testing.T) {
	c, _ := newClockedCache(time.Minute, 0)

	calls := 0
	compute := func() (string, error) {
		calls++
		return "computed", nil
	}

	v, err := c.GetOrCompute("k", compute, nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, "computed", v)

	v, err = c.GetOrCompute("k", compute, nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls, "second call should be served from cache")
}

func TestSimpleCache_GetOrComputeErrorNotCached(t *testing.T) {
	c, _ := newClockedCache(time.Minute, 0)

	boom := errors.New("fetch failed")
	_, err := c.GetOrCompute("k", func() (string, error) { return "", boom }, nil, 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.GetOrCompute("k", func() (string, error) { return "ok", nil }, nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestSimpleCache_Invalidate(t *testing.T) {
	c, _ := newClockedCache(time.Minute, 0)

	c.Set("a", "alpha")
	assert.True(t, c.Invalidate("a"))
	assert.False(t, c.Invalidate("a"))
	assert.Equal(t, 0, c.Len())
}

func TestSimpleCache_ClearPattern(t *testing.T) {
	c, _ := newClockedCache(time.Minute, 0)

	c.Set("league:2023:REG:abc", "x")
	c.Set("league:2023:POST:abc", "y")
	c.Set("league:2022:REG:abc", "z")

	removed := c.Clear(":2023:")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("league:2022:REG:abc", nil)
	assert.True(t, ok)
}

func TestSimpleCache_ClearAll(t *testing.T) {
	c, _ := newClockedCache(time.Minute, 0)

	c.Set("a", "x")
	c.Set("b", "y")

	assert.Equal(t, 2, c.Clear(""))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Clear(""))
}

func TestSimpleCache_Contains(t *testing.T) {
	c, now := newClockedCache(time.Minute, 0)

	c.Set("a", "alpha")
	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))

	*now = now.Add(2 * time.Minute)
	assert.False(t, c.Contains("a"))

	st := c.Stats()
	assert.Zero(t, st.Hits, "Contains should not count as a request")
	assert.Zero(t, st.Misses)
}

func TestSimpleCache_Stats(t *testing.T) {
	c, _ := newClockedCache(time.Minute, 10)

	c.Set("a", "alpha")
	c.Get("a", nil)
	c.Get("a", nil)
	c.Get("a", nil)
	c.Get("missing", nil)

	st := c.Stats()
	assert.Equal(t, 1, st.Size)
	assert.Equal(t, 10, st.MaxSize)
	assert.Equal(t, int64(3), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, int64(4), st.TotalRequests)
	assert.InDelta(t, 75.0, st.HitRatePct, 0.001)
}

func TestSimpleCache_StatsEmpty(t *testing.T) {
	c, _ := newClockedCache(time.Minute, 0)

	st := c.Stats()
	assert.Zero(t, st.TotalRequests)
	assert.Zero(t, st.HitRatePct)
}
