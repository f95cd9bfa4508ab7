package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

func TestConfig_DSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "db.example.supabase.co"
	cfg.Password = "secret"

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.example.supabase.co")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "dbname=postgres")
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "connect_timeout=10")
}

func TestConfig_PoolConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "localhost"
	cfg.SSLMode = "disable"

	poolCfg, err := cfg.PoolConfig()
	assert.NoError(t, err)
	assert.Equal(t, int32(10), poolCfg.MaxConns)
	assert.Equal(t, int32(2), poolCfg.MinConns)
	assert.Equal(t, time.Hour, poolCfg.MaxConnLifetime)
}

func TestGetMigrations(t *testing.T) {
	migrations := GetMigrations()
	assert.Len(t, migrations, 3)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}

	assert.Contains(t, migrations[0].UpSQL, "CREATE TABLE IF NOT EXISTS plays")
	assert.Contains(t, migrations[1].UpSQL, "team_season_aggregates")
	assert.Contains(t, migrations[2].UpSQL, "aggregate_refresh_log")
}

func TestNewPlayRepository_RequiresConnection(t *testing.T) {
	_, err := NewPlayRepository(nil, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
