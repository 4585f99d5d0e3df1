package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, ":8090", cfg.MgmtListenAddr)
	assert.Equal(t, "tracker.db", cfg.DBPath)
	assert.Equal(t, "tracker.yaml", cfg.TrackerConfigPath)
	assert.Equal(t, time.Hour, cfg.RetentionInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DB_PATH", "/var/lib/tracker/tracker.db")
	t.Setenv("RETENTION_INTERVAL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "/var/lib/tracker/tracker.db", cfg.DBPath)
	assert.Equal(t, 30*time.Minute, cfg.RetentionInterval)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadWithPrefix(t *testing.T) {
	t.Setenv("TRACKER_HTTP_PORT", "7070")

	cfg, err := LoadWithPrefix("TRACKER")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.HTTPPort)
}
