// Package database holds the process-wide postgres pool and the catalog schema.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storeradar/radar-service/internal/recommend"
)

// ErrNotConnected is returned when the pool has not been opened.
var ErrNotConnected = errors.New("database not initialized")

// Config sizes the connection pool. An empty URL leaves the service without a database.
type Config struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheck     time.Duration `mapstructure:"health_check_period"`
	// Migrate creates the schema on startup.
	Migrate bool `mapstructure:"migrate"`
}

// DefaultConfig returns the default pool sizing without a URL.
func DefaultConfig() Config {
	return Config{
		MaxConnections:  25,
		MinConnections:  5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		HealthCheck:     time.Minute,
		Migrate:         true,
	}
}

// Validate checks the pool bounds.
func (c Config) Validate() error {
	if c.MaxConnections < 1 {
		return recommend.ErrInvalidConfig{Field: "database.max_connections", Reason: "must be at least 1"}
	}
	if c.MinConnections < 0 || c.MinConnections > c.MaxConnections {
		return recommend.ErrInvalidConfig{Field: "database.min_connections", Reason: "must be within [0, max_connections]"}
	}
	return nil
}

var (
	pool     *pgxpool.Pool
	poolMu   sync.RWMutex
	poolOnce sync.Once
)

// Connect opens the shared pool once. A failed attempt can be retried.
func Connect(ctx context.Context, cfg Config) error {
	var initErr error
	poolOnce.Do(func() {
		pcfg, err := pgxpool.ParseConfig(cfg.URL)
		if err != nil {
			initErr = fmt.Errorf("failed to parse database url: %w", err)
			return
		}

		pcfg.MaxConns = int32(cfg.MaxConnections)
		pcfg.MinConns = int32(cfg.MinConnections)
		pcfg.MaxConnLifetime = cfg.MaxConnLifetime
		pcfg.MaxConnIdleTime = cfg.MaxConnIdleTime
		if cfg.HealthCheck > 0 {
			pcfg.HealthCheckPeriod = cfg.HealthCheck
		}

		newPool, err := pgxpool.NewWithConfig(ctx, pcfg)
		if err != nil {
			initErr = fmt.Errorf("failed to create connection pool: %w", err)
			return
		}
		if err := newPool.Ping(ctx); err != nil {
			newPool.Close()
			initErr = fmt.Errorf("failed to reach database: %w", err)
			return
		}

		poolMu.Lock()
		pool = newPool
		poolMu.Unlock()
	})

	if initErr != nil {
		poolOnce = sync.Once{}
		return initErr
	}
	return nil
}

// Close closes the pool and allows a later Connect.
func Close() {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		pool.Close()
		pool = nil
	}
	poolOnce = sync.Once{}
}

// Pool returns the shared pool, or nil when not connected.
func Pool() *pgxpool.Pool {
	poolMu.RLock()
	defer poolMu.RUnlock()
	return pool
}

// Status pings the database.
func Status(ctx context.Context) error {
	p := Pool()
	if p == nil {
		return ErrNotConnected
	}
	return p.Ping(ctx)
}

// PoolStats is the pool usage reported by the health endpoint.
type PoolStats struct {
	Total    int32 `json:"total"`
	Idle     int32 `json:"idle"`
	Acquired int32 `json:"acquired"`
	Max      int32 `json:"max"`
}

// Stats returns the usage of p. A nil pool yields nil.
func Stats(p *pgxpool.Pool) *PoolStats {
	if p == nil {
		return nil
	}
	s := p.Stat()
	return &PoolStats{
		Total:    s.TotalConns(),
		Idle:     s.IdleConns(),
		Acquired: s.AcquiredConns(),
		Max:      s.MaxConns(),
	}
}
