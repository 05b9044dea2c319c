package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	var cfg Server
	_, err := Parse(&cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "chi", cfg.Transport)
	assert.Equal(t, 1500*time.Millisecond, cfg.Feed.LoadDelay)
	assert.Equal(t, int64(42), cfg.Feed.Seed)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Activity)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle)
	assert.Equal(t, 1000, cfg.MaxSessions)
}

func TestParseFlagsAndEnv(t *testing.T) {
	t.Setenv("DASHBOARD_TRANSPORT", "fiber")
	t.Setenv("LOG_FORMAT", "json")

	var cfg Server
	_, err := Parse(&cfg, []string{"--addr=:9000", "--feed-load-delay=0s", "--no-activity"})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "fiber", cfg.Transport)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Zero(t, cfg.Feed.LoadDelay)
	assert.False(t, cfg.Activity)
}

func TestParseRejectsUnknownTransport(t *testing.T) {
	var cfg Server
	_, err := Parse(&cfg, []string{"--transport=grpc"})
	assert.Error(t, err)
}

func TestValidateRejectsNegativeDelay(t *testing.T) {
	cfg := Server{Addr: ":1", Feed: Feed{LoadDelay: -time.Second}}
	assert.Error(t, cfg.Validate())

	cfg = Server{Addr: ":1", MaxSessions: -1}
	assert.Error(t, cfg.Validate())
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("DASHBOARD_SEED_TEST=7\n"), 0o600))
	t.Setenv("DASHBOARD_SEED_TEST", "")
	require.NoError(t, os.Unsetenv("DASHBOARD_SEED_TEST"))

	require.NoError(t, LoadEnv(file, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "7", os.Getenv("DASHBOARD_SEED_TEST"))
}
