package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/storeradar/radar-service/internal/recommend"
)

// Dataset is the file format of a static catalog.
type Dataset struct {
	Stores  []recommend.Store                 `json:"stores"`
	Prices  map[string][]recommend.PricePoint `json:"prices"`
	Regions []recommend.Region                `json:"regions"`
}

// Static serves a catalog held in memory.
type Static struct {
	data Dataset
}

// NewStatic creates a static catalog from a dataset.
func NewStatic(data Dataset) *Static {
	if data.Prices == nil {
		data.Prices = map[string][]recommend.PricePoint{}
	}
	return &Static{data: data}
}

// LoadStatic reads a dataset from a JSON file.
func LoadStatic(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var data Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return NewStatic(data), nil
}

func (s *Static) Stores(ctx context.Context) ([]recommend.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]recommend.Store, len(s.data.Stores))
	copy(out, s.data.Stores)
	return out, nil
}

// Prices returns the prices listed for a product. An unknown product has no prices.
func (s *Static) Prices(ctx context.Context, product string) ([]recommend.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src := s.data.Prices[product]
	out := make([]recommend.PricePoint, len(src))
	copy(out, src)
	return out, nil
}

func (s *Static) Regions(ctx context.Context) ([]recommend.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]recommend.Region, len(s.data.Regions))
	copy(out, s.data.Regions)
	return out, nil
}
