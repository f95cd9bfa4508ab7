package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Addr(t *testing.T) {
	cfg := Config{Host: "redis.internal", Port: 6380}
	assert.Equal(t, "redis.internal:6380", cfg.Addr())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "localhost:6379", cfg.Addr())
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Positive(t, cfg.DialTimeout)
	assert.Positive(t, cfg.ReadTimeout)
	assert.Positive(t, cfg.WriteTimeout)
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "nfl:snapshot:league:2023:REG:abcd1234", snapshotKey("league:2023:REG:abcd1234"))
}

func TestClearGlob(t *testing.T) {
	assert.Equal(t, "nfl:snapshot:*", clearGlob(""))
	assert.Equal(t, "nfl:snapshot:*:2023:*", clearGlob(":2023:"))
}
