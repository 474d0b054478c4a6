package preference

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storeradar/radar-service/internal/recommend"
)

// Outcome is the result of recording one selection.
type Outcome struct {
	Type       Type                 `json:"preference_type"`
	Count      int                  `json:"selection_count"`
	Updated    bool                 `json:"weights_updated"`
	Preference recommend.Preference `json:"preference"`
}

// Upstream is an external service that receives selections and owns the
// weights learned from them.
type Upstream interface {
	ForwardSelection(ctx context.Context, id Identity, sel Selection) error
	Weights(ctx context.Context, id Identity) (recommend.Preference, error)
}

// Recorder classifies selections, logs them and periodically re-learns weights.
// With an upstream, selections are forwarded and weights are read back from it
// instead of being learned locally.
type Recorder struct {
	store     Store
	threshold ThresholdSource
	upstream  Upstream
	config    Config
	logger    zerolog.Logger
	now       func() time.Time
}

// NewRecorder creates a new recorder.
func NewRecorder(store Store, threshold ThresholdSource, config Config) *Recorder {
	return &Recorder{
		store:     store,
		threshold: threshold,
		config:    config,
		logger:    log.With().Str("component", "preference_recorder").Logger(),
		now:       time.Now,
	}
}

// WithUpstream forwards selections to u and reads weights from it.
func (r *Recorder) WithUpstream(u Upstream) *Recorder {
	r.upstream = u
	return r
}

// Weights returns the weights used to rank for a user, or the defaults.
func (r *Recorder) Weights(ctx context.Context, id Identity) (recommend.Preference, error) {
	if r.upstream != nil {
		pref, err := r.upstream.Weights(ctx, id)
		if err != nil {
			return recommend.Preference{}, fmt.Errorf("failed to load upstream preference: %w", err)
		}
		return pref, nil
	}
	pref, ok, err := r.store.Preference(ctx, id.UserID)
	if err != nil {
		return recommend.Preference{}, fmt.Errorf("failed to load preference: %w", err)
	}
	if !ok {
		return recommend.DefaultPreference(), nil
	}
	return pref, nil
}

// Record classifies the selected store against the candidates and logs the
// selection. Without an upstream, every LearnEvery-th selection updates the
// user's weights; with one, the selection is forwarded and the upstream
// weights are reported.
func (r *Recorder) Record(ctx context.Context, id Identity, product string, selected recommend.ScoredStore, candidates []recommend.ScoredStore) (Outcome, error) {
	userID := id.UserID
	threshold := r.threshold.Threshold(ctx)
	typ := Classify(selected, candidates, threshold)

	sel := Selection{
		UserID:     userID,
		StoreID:    selected.StoreID,
		StoreName:  selected.Name,
		Product:    product,
		Price:      selected.Price,
		DistanceKm: selected.DistanceKm,
		Type:       typ,
		CreatedAt:  r.now(),
	}
	count, err := r.store.LogSelection(ctx, sel)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to log selection: %w", err)
	}

	if r.upstream != nil {
		if err := r.upstream.ForwardSelection(ctx, id, sel); err != nil {
			return Outcome{}, fmt.Errorf("failed to forward selection: %w", err)
		}
	}

	pref, err := r.Weights(ctx, id)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Type: typ, Count: count, Preference: pref}
	if r.upstream != nil || count%r.config.LearnEvery != 0 {
		return out, nil
	}

	recent, err := r.store.RecentTypes(ctx, userID, r.config.Window)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load recent selections: %w", err)
	}
	updated := Learn(pref, recent, r.config.Alpha)
	if err := r.store.SavePreference(ctx, userID, updated); err != nil {
		return Outcome{}, fmt.Errorf("failed to save preference: %w", err)
	}

	r.logger.Info().
		Str("user_id", userID).
		Int("selection_count", count).
		Float64("w_price", updated.WPrice).
		Float64("w_distance", updated.WDistance).
		Msg("Updated preference weights")

	out.Updated = true
	out.Preference = updated
	return out, nil
}

// History returns a user's selections, newest first.
func (r *Recorder) History(ctx context.Context, userID string) ([]Selection, error) {
	sels, err := r.store.Selections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load selection history: %w", err)
	}
	return sels, nil
}
