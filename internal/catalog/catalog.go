// Package catalog provides store, price and region data from the remote
// catalog service, a Postgres database or a static JSON file.
package catalog

import (
	"context"

	"github.com/storeradar/radar-service/internal/recommend"
)

// Source is a store catalog.
type Source interface {
	// Stores returns the full catalog.
	Stores(ctx context.Context) ([]recommend.Store, error)
	// Prices returns the current price per store for a product.
	Prices(ctx context.Context, product string) ([]recommend.PricePoint, error)
	// Regions returns the administrative regions offered as filters.
	Regions(ctx context.Context) ([]recommend.Region, error)
}

// Config selects and configures the catalog source.
type Config struct {
	// Source is one of remote, postgres, static.
	Source   string       `mapstructure:"source"`
	Remote   RemoteConfig `mapstructure:"remote"`
	Schema   string       `mapstructure:"schema"`
	DataFile string       `mapstructure:"data_file"`
}

// Validate validates the configuration and returns an error if invalid.
func (c Config) Validate() error {
	switch c.Source {
	case "remote":
		if c.Remote.BaseURL == "" {
			return recommend.ErrInvalidConfig{Field: "catalog.remote.base_url", Reason: "required for remote source"}
		}
	case "postgres":
		if c.Schema == "" {
			return recommend.ErrInvalidConfig{Field: "catalog.schema", Reason: "required for postgres source"}
		}
	case "static":
		if c.DataFile == "" {
			return recommend.ErrInvalidConfig{Field: "catalog.data_file", Reason: "required for static source"}
		}
	default:
		return recommend.ErrInvalidConfig{Field: "catalog.source", Reason: "must be one of remote, postgres, static"}
	}
	return nil
}
