package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeradar/radar-service/internal/recommend"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	path := writeConfig(t, "server:\n  host: 127.0.0.1\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.Equal(t, time.Minute, cfg.Database.HealthCheck)
	assert.Equal(t, "remote", cfg.Catalog.Source)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Remote.Timeout)
	assert.Equal(t, 5, cfg.Catalog.Remote.CircuitBreaker.MaxFailures)
	assert.Equal(t, recommend.MaxPriceAll, cfg.Engine.Ranking.MaxPriceScope)
	assert.Equal(t, 5, cfg.Engine.Ranking.RunnerUpLimit)
	assert.InDelta(t, 37.5665, cfg.Engine.DefaultPosition.Lat, 1e-9)
	assert.Equal(t, 0.1, cfg.Preference.Threshold)
	assert.Equal(t, 10, cfg.Preference.LearnEvery)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, 20, cfg.RateLimit.BurstSize)
	assert.False(t, cfg.Auth.Enabled())
	assert.Same(t, cfg, Get())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 4000
catalog:
  source: static
  data_file: ./testdata/catalog.json
engine:
  ranking:
    max_price_scope: candidates
preference:
  threshold: 0.2
`)
	t.Setenv("PORT", "4100")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RADAR_SESSION_MAX_SESSIONS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4100, cfg.Server.Port)
	assert.Equal(t, "static", cfg.Catalog.Source)
	assert.Equal(t, "./testdata/catalog.json", cfg.Catalog.DataFile)
	assert.Equal(t, recommend.MaxPriceCandidates, cfg.Engine.Ranking.MaxPriceScope)
	assert.Equal(t, 0.2, cfg.Preference.Threshold)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 7, cfg.Session.MaxSessions)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	tests := []struct {
		name string
		body string
	}{
		{"unknown catalog source", "catalog:\n  source: ftp\n"},
		{"postgres without database", "catalog:\n  source: postgres\n"},
		{"bad price scope", "engine:\n  ranking:\n    max_price_scope: nearby\n"},
		{"remote threshold with static catalog", "catalog:\n  source: static\n  data_file: x.json\npreference:\n  threshold_source: remote\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"min connections above max", "database:\n  max_connections: 2\n  min_connections: 5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
RADAR_TEST_PLAIN=value
export RADAR_TEST_QUOTED="quoted value"
RADAR_TEST_KEEP=from-file
NOT_A_PAIR
`), 0o600))
	t.Setenv("RADAR_TEST_PLAIN", "")
	os.Unsetenv("RADAR_TEST_PLAIN")
	t.Setenv("RADAR_TEST_QUOTED", "")
	os.Unsetenv("RADAR_TEST_QUOTED")
	t.Setenv("RADAR_TEST_KEEP", "from-env")

	require.NoError(t, loadDotEnvFile(path))
	assert.Equal(t, "value", os.Getenv("RADAR_TEST_PLAIN"))
	assert.Equal(t, "quoted value", os.Getenv("RADAR_TEST_QUOTED"))
	assert.Equal(t, "from-env", os.Getenv("RADAR_TEST_KEEP"))
}
