package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CONFIG_FILE", "")
	for _, key := range []string{"BASE_API_URL", "LIVE_MODE", "CACHE_BACKEND", "REAUTH_AT", "REAUTH_TIMEZONE", "REAUTH_POLL_INTERVAL", "HTTP_TIMEOUT", "CACHE_TIMEOUT", "REDIS_URL", "QUANTX_BACKEND_PORT"} {
		t.Setenv(key, "")
	}

	return dir
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults to the demo gateway", func(t *testing.T) {
		isolateEnv(t)

		cfg, err := LoadConfig()
		require.NoError(t, err)

		require.Equal(t, DemoBaseAPIURL, cfg.BaseAPIURL)
		require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
		require.Equal(t, "5999", cfg.Port)
		require.Equal(t, "17:45", cfg.Reauth.At)
		require.Equal(t, "America/New_York", cfg.Reauth.Timezone)
		require.Equal(t, 60*time.Second, cfg.Reauth.PollInterval)
		require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	})

	t.Run("live mode picks the live gateway", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("LIVE_MODE", "TRUE")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.True(t, cfg.LiveMode)
		require.Equal(t, LiveBaseAPIURL, cfg.BaseAPIURL)
	})

	t.Run("environment overrides yaml", func(t *testing.T) {
		dir := isolateEnv(t)
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("base_api_url: https://yaml.example.com/\ncache_backend: memory\nreauth:\n  at: \"16:00\"\n  poll_interval: 30s\n"), 0o600))
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("REAUTH_AT", "18:15")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "https://yaml.example.com", cfg.BaseAPIURL)
		require.Equal(t, CacheBackendMemory, cfg.CacheBackend)
		require.Equal(t, "18:15", cfg.Reauth.At)
		require.Equal(t, 30*time.Second, cfg.Reauth.PollInterval)
	})

	t.Run("rejects an invalid reauth time", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("REAUTH_AT", "25:99")

		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("rejects an unknown cache backend", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("CACHE_BACKEND", "memcached")

		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("reads the env file", func(t *testing.T) {
		dir := isolateEnv(t)
		envFile := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("QUANTX_TEST_ONLY_KEY=from-file\n"), 0o600))
		t.Setenv("ENV_FILE", envFile)
		t.Cleanup(func() { os.Unsetenv("QUANTX_TEST_ONLY_KEY") })

		_, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "from-file", os.Getenv("QUANTX_TEST_ONLY_KEY"))
	})
}

func TestNextDailyOccurrence(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	t.Run("later today", func(t *testing.T) {
		now := time.Date(2024, 3, 4, 9, 0, 0, 0, loc)
		next := NextDailyOccurrence(now, 17, 45, loc)
		require.Equal(t, time.Date(2024, 3, 4, 17, 45, 0, 0, loc), next)
	})

	t.Run("after the slot rolls to tomorrow", func(t *testing.T) {
		now := time.Date(2024, 3, 4, 17, 45, 0, 0, loc)
		next := NextDailyOccurrence(now, 17, 45, loc)
		require.Equal(t, time.Date(2024, 3, 5, 17, 45, 0, 0, loc), next)
	})

	t.Run("converts from utc", func(t *testing.T) {
		now := time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC)
		next := NextDailyOccurrence(now, 17, 45, loc)
		require.Equal(t, time.Date(2024, 3, 5, 17, 45, 0, 0, loc), next)
	})
}
