package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeradar/radar-service/internal/recommend"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"no connections", func(c *Config) { c.MaxConnections = 0 }, "database.max_connections"},
		{"negative min", func(c *Config) { c.MinConnections = -1 }, "database.min_connections"},
		{"min above max", func(c *Config) { c.MinConnections = c.MaxConnections + 1 }, "database.min_connections"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			var cfgErr recommend.ErrInvalidConfig
			require.ErrorAs(t, cfg.Validate(), &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestNotConnected(t *testing.T) {
	Close()

	assert.Nil(t, Pool())
	assert.ErrorIs(t, Status(context.Background()), ErrNotConnected)
	assert.Nil(t, Stats(nil))
}

func TestConnectInvalidURL(t *testing.T) {
	defer Close()

	cfg := DefaultConfig()
	cfg.URL = "://not a url"
	err := Connect(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database url")
	assert.Nil(t, Pool())
}
