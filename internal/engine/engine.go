// Package engine runs the recompute cycle that turns the current state into a
// marker set: fetch, filter, rank, reconcile.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/storeradar/radar-service/internal/geo"
	"github.com/storeradar/radar-service/internal/markers"
	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/recommend"
)

// UserLocationInterval is how often the user location marker is refreshed.
const UserLocationInterval = 5 * time.Second

// Catalog provides the data a cycle fetches.
type Catalog interface {
	Stores(ctx context.Context) ([]recommend.Store, error)
	Prices(ctx context.Context, product string) ([]recommend.PricePoint, error)
}

// PreferenceSource provides the weights of an authenticated user.
type PreferenceSource interface {
	Weights(ctx context.Context, id preference.Identity) (recommend.Preference, error)
}

// Config holds engine settings.
type Config struct {
	// DefaultPosition is used until the user's position is known.
	DefaultPosition recommend.UserPosition `mapstructure:"default_position"`
	EventBuffer     int                    `mapstructure:"event_buffer"`
	Ranking         recommend.Config       `mapstructure:"ranking"`
}

// DefaultConfig returns the default engine configuration centred on Seoul City Hall.
func DefaultConfig() Config {
	return Config{
		DefaultPosition: recommend.UserPosition{Lat: 37.5665, Lng: 126.9780},
		EventBuffer:     16,
		Ranking:         recommend.DefaultConfig(),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if c.EventBuffer < 0 {
		return recommend.ErrInvalidConfig{Field: "engine.event_buffer", Reason: "must be non-negative"}
	}
	if c.DefaultPosition.Lat < -90 || c.DefaultPosition.Lat > 90 {
		return recommend.ErrInvalidConfig{Field: "engine.default_position.lat", Reason: "must be within [-90, 90]"}
	}
	if c.DefaultPosition.Lng < -180 || c.DefaultPosition.Lng > 180 {
		return recommend.ErrInvalidConfig{Field: "engine.default_position.lng", Reason: "must be within [-180, 180]"}
	}
	return c.Ranking.Validate()
}

// CycleResult is what one applied cycle produced.
type CycleResult struct {
	Generation uint64                   `json:"generation"`
	Mode       markers.Mode             `json:"mode"`
	Filter     recommend.FilterMode     `json:"filter"`
	Ranked     []recommend.ScoredStore  `json:"ranked"`
	Stores     []recommend.Store        `json:"stores"`
	Overlay    *recommend.RadiusOverlay `json:"overlay,omitempty"`
	Focus      *geo.Point               `json:"focus,omitempty"`
	Preference recommend.Preference     `json:"preference"`
	Diff       markers.Diff             `json:"diff"`
	AppliedAt  time.Time                `json:"applied_at"`
}

// Engine owns one map's state and marker set.
type Engine struct {
	catalog    Catalog
	prefs      PreferenceSource
	reconciler *markers.Reconciler
	builder    *markers.Builder
	ranker     *recommend.Ranker
	state      *State
	config     Config
	metrics    *MetricsRecorder
	tracer     trace.Tracer
	logger     zerolog.Logger

	events     chan Event
	stopChan   chan struct{}
	stopOnce   sync.Once
	generation atomic.Uint64
	applyMu    sync.Mutex

	resultMu sync.RWMutex
	result   *CycleResult
}

// New creates an engine. A nil prefs ranks everyone with the default weights.
func New(catalog Catalog, prefs PreferenceSource, reconciler *markers.Reconciler, config Config) *Engine {
	return &Engine{
		catalog:    catalog,
		prefs:      prefs,
		reconciler: reconciler,
		builder:    markers.NewBuilder(nil),
		ranker:     recommend.NewRanker(config.Ranking),
		state:      NewState(),
		config:     config,
		metrics:    NewMetricsRecorder(),
		tracer:     otel.Tracer("github.com/storeradar/radar-service/internal/engine"),
		logger:     log.With().Str("component", "engine").Logger(),
		events:     make(chan Event, config.EventBuffer),
		stopChan:   make(chan struct{}),
	}
}

// State returns the engine's application state.
func (e *Engine) State() *State {
	return e.state
}

// Reconciler returns the marker reconciler.
func (e *Engine) Reconciler() *markers.Reconciler {
	return e.reconciler
}

// Result returns the last applied cycle, or nil before the first one.
func (e *Engine) Result() *CycleResult {
	e.resultMu.RLock()
	defer e.resultMu.RUnlock()
	return e.result
}

// Dispatch queues an event for Run.
func (e *Engine) Dispatch(ctx context.Context, ev Event) error {
	select {
	case <-e.stopChan:
		return ErrStopped
	default:
	}

	select {
	case e.events <- ev:
		return nil
	case <-e.stopChan:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recompute runs one cycle against the current state.
//
// Every call takes a new generation. The result is applied only if no newer
// cycle was started meanwhile; otherwise ErrStaleCycle is returned. When
// stores or prices cannot be fetched a *DataFetchError is returned and the
// markers stay as they were. A failed preference fetch ranks with the default
// weights instead. When only some markers could be placed the result is
// returned together with the placement error.
func (e *Engine) Recompute(ctx context.Context) (*CycleResult, error) {
	gen := e.generation.Add(1)
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "engine.recompute",
		trace.WithAttributes(attribute.Int64("generation", int64(gen))))
	defer span.End()

	snap := e.state.Snapshot()
	pos := e.config.DefaultPosition
	if snap.Position != nil {
		pos = *snap.Position
	}

	stores, prices, pref, err := e.fetch(ctx, snap)
	if err != nil {
		var fetchErr *DataFetchError
		if errors.As(err, &fetchErr) {
			e.metrics.RecordFetchError(fetchErr.Source)
		}
		e.metrics.RecordCycle("fetch_error", "", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	if e.generation.Load() != gen {
		e.metrics.RecordCycle("stale", "", time.Since(start))
		return nil, ErrStaleCycle
	}

	desired, filter, ranked := e.desiredState(snap, stores, prices, pos, pref)

	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	if e.generation.Load() != gen {
		e.metrics.RecordCycle("stale", "", time.Since(start))
		return nil, ErrStaleCycle
	}

	diff, applyErr := e.reconciler.Apply(desired)
	if snap.HasHistory() {
		e.state.consumeHistory(snap)
	}

	result := &CycleResult{
		Generation: gen,
		Mode:       desired.Mode,
		Filter:     filter,
		Ranked:     ranked,
		Stores:     desired.Stores,
		Overlay:    desired.Overlay,
		Focus:      desired.Focus,
		Preference: pref,
		Diff:       diff,
		AppliedAt:  time.Now(),
	}
	if result.Ranked == nil {
		result.Ranked = []recommend.ScoredStore{}
	}
	if result.Stores == nil {
		result.Stores = []recommend.Store{}
	}

	e.resultMu.Lock()
	e.result = result
	e.resultMu.Unlock()

	outcome := "applied"
	if applyErr != nil {
		outcome = "degraded"
		span.RecordError(applyErr)
	}
	e.metrics.RecordCycle(outcome, desired.Mode, time.Since(start))
	e.metrics.RecordApply(len(desired.Markers), diff)
	e.metrics.RecordCandidates(len(ranked))
	if len(ranked) > 0 {
		e.metrics.RecordTopStoreDistance(ranked[0].DistanceKm)
	}
	span.SetAttributes(
		attribute.String("mode", string(desired.Mode)),
		attribute.Int("candidates", len(ranked)),
		attribute.Int("markers", len(desired.Markers)),
	)

	e.logger.Debug().
		Uint64("generation", gen).
		Str("mode", string(desired.Mode)).
		Str("filter", string(filter)).
		Int("candidates", len(ranked)).
		Int("added", len(diff.Added)).
		Int("removed", len(diff.Removed)).
		Dur("duration", time.Since(start)).
		Msg("Recompute cycle applied")

	if applyErr != nil {
		return result, fmt.Errorf("markers partially applied: %w", applyErr)
	}
	return result, nil
}

// fetch loads stores, prices and weights concurrently.
func (e *Engine) fetch(ctx context.Context, snap Snapshot) ([]recommend.Store, []recommend.PricePoint, recommend.Preference, error) {
	var (
		stores []recommend.Store
		prices []recommend.PricePoint
		pref   = recommend.DefaultPreference()
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := e.catalog.Stores(gctx)
		if err != nil {
			return &DataFetchError{Source: "stores", Err: err}
		}
		stores = s
		return nil
	})
	if snap.Product != "" {
		g.Go(func() error {
			p, err := e.catalog.Prices(gctx, snap.Product)
			if err != nil {
				return &DataFetchError{Source: "prices", Err: err}
			}
			prices = p
			return nil
		})
	}
	if e.prefs != nil && snap.Identity.Authenticated() {
		g.Go(func() error {
			p, err := e.prefs.Weights(gctx, snap.Identity)
			if err != nil {
				if gctx.Err() == nil {
					e.metrics.RecordPreferenceFallback()
					e.logger.Warn().Err(err).Str("user_id", snap.Identity.UserID).
						Msg("Failed to fetch preference, using default weights")
				}
				return nil
			}
			pref = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, recommend.Preference{}, err
	}
	return stores, prices, pref, nil
}

// desiredState decides what the map should show for a snapshot.
func (e *Engine) desiredState(snap Snapshot, stores []recommend.Store, prices []recommend.PricePoint, pos recommend.UserPosition, pref recommend.Preference) (markers.Desired, recommend.FilterMode, []recommend.ScoredStore) {
	if snap.HasHistory() {
		for _, s := range stores {
			if s.StoreID != snap.HistoryID {
				continue
			}
			if desired, ok := e.builder.Highlight(s); ok {
				return desired, recommend.FilterNone, nil
			}
			break
		}
		e.logger.Warn().Str("store_id", snap.HistoryID).Msg("History store not found or has no coordinates, showing regular markers")
	}

	filtered := recommend.FilterStores(stores, snap.Selection, pos)

	var desired markers.Desired
	var ranked []recommend.ScoredStore
	if snap.Product != "" {
		ranked = e.ranker.Rank(filtered.Stores, prices, pos, pref)
	}
	if len(ranked) > 0 {
		desired = e.builder.Ranked(ranked)
	} else {
		desired = e.builder.Plain(filtered.Stores)
	}
	desired.Overlay = filtered.Overlay
	return desired, filtered.Mode, ranked
}

// Run processes events until ctx is done or Stop is called. It starts with one
// cycle for the initial state and launches one cycle per event. A slow cycle
// never holds back a newer one; the newer one wins.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info().Msg("Starting engine event loop")

	var wg sync.WaitGroup
	defer wg.Wait()

	launch := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.runCycle(ctx)
		}()
	}
	launch()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Engine stopping (context cancelled)")
			return
		case <-e.stopChan:
			e.logger.Info().Msg("Engine stopping (stop signal)")
			return
		case ev := <-e.events:
			e.state.Apply(ev)
			launch()
		}
	}
}

func (e *Engine) runCycle(ctx context.Context) {
	_, err := e.Recompute(ctx)
	var fetchErr *DataFetchError
	switch {
	case err == nil:
	case errors.Is(err, ErrStaleCycle):
		e.logger.Debug().Msg("Discarded stale recompute cycle")
	case errors.As(err, &fetchErr):
		e.logger.Warn().Err(err).Str("source", fetchErr.Source).Msg("Recompute aborted, keeping previous markers")
	default:
		e.logger.Error().Err(err).Msg("Recompute cycle failed")
	}
}

// RunUserLocation refreshes the user marker every UserLocationInterval until
// ctx is done or Stop is called. It never waits for a recompute.
func (e *Engine) RunUserLocation(ctx context.Context) {
	e.runUserLocation(ctx, UserLocationInterval)
}

func (e *Engine) runUserLocation(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.RefreshUserLocation()
		}
	}
}

// RefreshUserLocation places the user marker at the last known position.
func (e *Engine) RefreshUserLocation() {
	snap := e.state.Snapshot()
	if snap.Position == nil {
		return
	}
	if err := e.reconciler.SetUserLocation(*snap.Position); err != nil {
		e.metrics.RecordUserLocationRefresh(false)
		e.logger.Warn().Err(err).Msg("Failed to refresh user location marker")
		return
	}
	e.metrics.RecordUserLocationRefresh(true)
}

// Stop signals Run and RunUserLocation to return.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
}
