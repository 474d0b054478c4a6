package markers

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storeradar/radar-service/internal/recommend"
)

type entry struct {
	handle Handle
	marker Marker
}

// Reconciler owns the store markers on a surface, keyed by store id, and the
// singleton user location marker.
//
// Store markers are only changed by Apply. The user location marker has its
// own lock so that a refresh never waits for a recompute.
type Reconciler struct {
	surface Surface
	logger  zerolog.Logger

	mu      sync.RWMutex
	arena   map[string]entry
	orphans []Handle
	current Desired

	userMu sync.Mutex
	user   *Handle
}

// NewReconciler creates a reconciler in ModeEmpty.
func NewReconciler(surface Surface) *Reconciler {
	return &Reconciler{
		surface: surface,
		logger:  log.With().Str("component", "marker_reconciler").Logger(),
		arena:   make(map[string]entry),
		current: Empty(),
	}
}

// Apply replaces every store marker with the desired set.
//
// All prior handles are removed before any new one is created. A handle the
// surface refused to remove is kept and retried on the next Apply. When the
// surface fails to place some markers the rest are still placed and the
// failures are returned joined; the marker set is then knowingly incomplete
// until the next Apply. The returned Diff compares the markers actually placed
// with the prior ones, so applying the same state twice yields an empty Diff.
func (r *Reconciler) Apply(desired Desired) (Diff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	var orphans []Handle
	for _, h := range r.orphans {
		if err := r.surface.RemoveMarker(h); err != nil {
			orphans = append(orphans, h)
			errs = append(errs, fmt.Errorf("failed to remove orphaned marker %d: %w", h, err))
		}
	}
	for _, id := range sortedKeys(r.arena) {
		h := r.arena[id].handle
		if err := r.surface.RemoveMarker(h); err != nil {
			r.logger.Warn().Err(err).Str("store_id", id).Msg("Failed to remove marker")
			orphans = append(orphans, h)
			errs = append(errs, fmt.Errorf("failed to remove marker for store %s: %w", id, err))
		}
	}
	r.orphans = orphans

	arena := make(map[string]entry, len(desired.Markers))
	placed := make([]Marker, 0, len(desired.Markers))
	for _, m := range desired.Markers {
		if _, dup := arena[m.StoreID]; dup {
			continue
		}
		h, err := r.surface.AddMarker(m)
		if err != nil {
			r.logger.Warn().Err(err).Str("store_id", m.StoreID).Msg("Failed to add marker")
			errs = append(errs, fmt.Errorf("failed to add marker for store %s: %w", m.StoreID, err))
			continue
		}
		arena[m.StoreID] = entry{handle: h, marker: m}
		placed = append(placed, m)
	}
	diff := diffMarkers(r.arena, placed)
	r.arena = arena
	r.current = desired

	r.surface.SetOverlay(desired.Overlay)
	if desired.Focus != nil {
		r.surface.FlyTo(*desired.Focus)
	}
	r.surface.OpenDetail(desired.OpenDetail)

	r.logger.Debug().
		Str("mode", string(desired.Mode)).
		Int("visible", len(arena)).
		Int("orphaned", len(orphans)).
		Int("added", len(diff.Added)).
		Int("removed", len(diff.Removed)).
		Int("retagged", len(diff.Retagged)).
		Msg("Applied marker state")

	return diff, errors.Join(errs...)
}

// Mode returns the mode of the last applied state.
func (r *Reconciler) Mode() Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Mode
}

// Visible returns the store ids that currently have a marker, sorted.
func (r *Reconciler) Visible() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.arena)
}

// Marker returns the marker currently placed for a store.
func (r *Reconciler) Marker(storeID string) (Marker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.arena[storeID]
	return e.marker, ok
}

// StoreDetail is what a marker click opens.
type StoreDetail struct {
	Store recommend.Store `json:"store"`
	// Scored is set when the store was ranked in the current cycle.
	Scored *recommend.ScoredStore `json:"scored,omitempty"`
	// Candidates is the full ranked list, used to classify a later selection.
	Candidates []recommend.ScoredStore `json:"candidates"`
}

// Detail returns the detail view for a visible store.
func (r *Reconciler) Detail(storeID string) (StoreDetail, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.arena[storeID]; !ok {
		return StoreDetail{}, false
	}

	candidates := make([]recommend.ScoredStore, len(r.current.Ranked))
	copy(candidates, r.current.Ranked)

	for i := range candidates {
		if candidates[i].StoreID == storeID {
			scored := candidates[i]
			return StoreDetail{Store: scored.Store, Scored: &scored, Candidates: candidates}, true
		}
	}
	for _, s := range r.current.Stores {
		if s.StoreID == storeID {
			return StoreDetail{Store: s, Candidates: candidates}, true
		}
	}
	return StoreDetail{}, false
}

// SetUserLocation places the user marker, replacing the previous one.
// The new marker is placed before the old one is removed so the slot is never empty.
func (r *Reconciler) SetUserLocation(pos recommend.UserPosition) error {
	r.userMu.Lock()
	defer r.userMu.Unlock()

	h, err := r.surface.AddMarker(Marker{
		Kind:     KindUser,
		Position: pos.Point(),
		Glyph:    GlyphUser,
	})
	if err != nil {
		return fmt.Errorf("failed to add user location marker: %w", err)
	}

	if r.user != nil {
		if err := r.surface.RemoveMarker(*r.user); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to remove previous user location marker")
		}
	}
	r.user = &h
	return nil
}

func sortedKeys(m map[string]entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
