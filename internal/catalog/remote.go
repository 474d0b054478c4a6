package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/storeradar/radar-service/internal/http"
	"github.com/storeradar/radar-service/internal/http/ratelimit"
	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/recommend"
)

// RemoteConfig configures the remote catalog service client.
type RemoteConfig struct {
	BaseURL        string               `mapstructure:"base_url"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	RateLimit      ratelimit.Config     `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// DefaultRemoteConfig returns the default remote configuration without a base URL.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		Timeout:        10 * time.Second,
		RateLimit:      ratelimit.DefaultConfig(),
		CircuitBreaker: DefaultCircuitBreakerConfig(),
	}
}

// Remote reads the catalog service over HTTP.
type Remote struct {
	client  *httpclient.Client
	baseURL string
	breaker *CircuitBreaker
	logger  zerolog.Logger
}

// NewRemote creates a remote catalog client.
func NewRemote(cfg RemoteConfig) *Remote {
	logger := log.With().Str("component", "remote_catalog").Logger()
	return &Remote{
		client:  httpclient.NewClient(cfg.RateLimit, cfg.Timeout),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		breaker: NewCircuitBreaker("catalog", cfg.CircuitBreaker, logger),
		logger:  logger,
	}
}

// Breaker exposes the circuit breaker for health reporting.
func (r *Remote) Breaker() *CircuitBreaker {
	return r.breaker
}

func (r *Remote) Stores(ctx context.Context) ([]recommend.Store, error) {
	var stores []recommend.Store
	if err := r.get(ctx, "/get/stores/all", nil, &stores); err != nil {
		return nil, fmt.Errorf("failed to fetch stores: %w", err)
	}
	return stores, nil
}

func (r *Remote) Prices(ctx context.Context, product string) ([]recommend.PricePoint, error) {
	var prices []recommend.PricePoint
	path := "/get/prices?good_name=" + url.QueryEscape(product)
	if err := r.get(ctx, path, nil, &prices); err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %q: %w", product, err)
	}
	return prices, nil
}

func (r *Remote) Regions(ctx context.Context) ([]recommend.Region, error) {
	var regions []recommend.Region
	if err := r.get(ctx, "/get/region-codes/all", nil, &regions); err != nil {
		return nil, fmt.Errorf("failed to fetch regions: %w", err)
	}
	return regions, nil
}

// Weights fetches the learned weights of an authenticated user. Anonymous
// callers get the defaults without a request.
func (r *Remote) Weights(ctx context.Context, id preference.Identity) (recommend.Preference, error) {
	if id.Token == "" {
		return recommend.DefaultPreference(), nil
	}
	var pref recommend.Preference
	header := http.Header{"Authorization": {"Bearer " + id.Token}}
	err := r.call(ctx, func() error {
		return r.client.PostJSON(ctx, r.baseURL+"/get/user-preferences", header, struct{}{}, &pref)
	})
	if err != nil {
		return recommend.Preference{}, fmt.Errorf("failed to fetch user preferences: %w", err)
	}
	return pref, nil
}

type selectionLog struct {
	StoreID        string          `json:"store_id"`
	GoodID         string          `json:"good_id"`
	Price          int64           `json:"price"`
	PreferenceType preference.Type `json:"preference_type"`
}

// ForwardSelection posts a selection to the user log, which the catalog
// service learns weights from. Anonymous selections are not sent.
func (r *Remote) ForwardSelection(ctx context.Context, id preference.Identity, sel preference.Selection) error {
	if id.Token == "" {
		return nil
	}
	header := http.Header{"Authorization": {"Bearer " + id.Token}}
	body := selectionLog{
		StoreID:        sel.StoreID,
		GoodID:         sel.Product,
		Price:          sel.Price,
		PreferenceType: sel.Type,
	}
	err := r.call(ctx, func() error {
		return r.client.PostJSON(ctx, r.baseURL+"/update/user-selection-log", header, body, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to log user selection: %w", err)
	}
	return nil
}

// FetchThreshold reads the classification threshold served by the catalog.
func (r *Remote) FetchThreshold(ctx context.Context) (float64, error) {
	var body struct {
		Threshold float64 `json:"threshold"`
	}
	if err := r.get(ctx, "/get/preference-threshold", nil, &body); err != nil {
		return 0, fmt.Errorf("failed to fetch preference threshold: %w", err)
	}
	return body.Threshold, nil
}

func (r *Remote) get(ctx context.Context, path string, header http.Header, out any) error {
	return r.call(ctx, func() error {
		return r.client.GetJSON(ctx, r.baseURL+path, header, out)
	})
}

func (r *Remote) call(ctx context.Context, fn func() error) error {
	if !r.breaker.Allow() {
		return ErrCircuitOpen
	}
	if err := fn(); err != nil {
		if ctx.Err() == nil {
			r.breaker.RecordFailure(err)
		}
		return err
	}
	r.breaker.RecordSuccess()
	return nil
}
