package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())

	assert.Equal(t, 30*time.Second, cfg.RateLimit)
	assert.Equal(t, 5*time.Minute, cfg.QueueTimeout)
	assert.Equal(t, 10*time.Minute, cfg.RoomTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Visibility)
	assert.Equal(t, time.Duration(0), cfg.BlockTTL)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)

	require.NotNil(t, cfg.EliteMinBalance)
	assert.Equal(t, "0", cfg.EliteMinBalance.String())
	assert.Equal(t, 5*time.Minute, cfg.EliteCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MESSAGE_RATE_LIMIT", "10s")
	t.Setenv("BLOCK_TTL", "24h")
	t.Setenv("ELITE_MIN_BALANCE", "1000000000000000000")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.RateLimit)
	assert.Equal(t, 24*time.Hour, cfg.BlockTTL)
	assert.Equal(t, "1000000000000000000", cfg.EliteMinBalance.String())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("QUEUE_TIMEOUT", "soon")
	t.Setenv("ELITE_MIN_BALANCE", "lots")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.QueueTimeout)
	assert.Equal(t, "0", cfg.EliteMinBalance.String())
}

func TestProductionRequiresRedis(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_URL", "")

	assert.Panics(t, func() { Load() })

	t.Setenv("REDIS_URL", "redis://localhost:6379")
	assert.NotPanics(t, func() { Load() })
}
