package catalog

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoDatabase is returned when the postgres source is selected without a pool.
var ErrNoDatabase = errors.New("postgres catalog requires a database connection")

// Open builds the source selected by cfg. pool may be nil unless the source
// is postgres.
func Open(cfg Config, pool *pgxpool.Pool) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Source {
	case "remote":
		return NewRemote(cfg.Remote), nil
	case "postgres":
		if pool == nil {
			return nil, ErrNoDatabase
		}
		return NewPostgres(pool, cfg.Schema), nil
	default:
		src, err := LoadStatic(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load static catalog: %w", err)
		}
		return src, nil
	}
}
