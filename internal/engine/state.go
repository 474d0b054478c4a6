package engine

import (
	"sync"

	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/recommend"
)

// State is the application state read at the start of every cycle.
type State struct {
	mu         sync.RWMutex
	selection  recommend.FilterSelection
	product    string
	historyID  string
	historySeq uint64
	position   *recommend.UserPosition
	identity   preference.Identity
}

// NewState returns a state with no filter, no product and no known position.
func NewState() *State {
	return &State{selection: recommend.NewFilterSelection()}
}

// Snapshot is an immutable copy of State for one cycle.
type Snapshot struct {
	Selection  recommend.FilterSelection
	Product    string
	HistoryID  string
	historySeq uint64
	Position   *recommend.UserPosition
	Identity   preference.Identity
}

// HasHistory reports whether a history highlight is pending.
func (s Snapshot) HasHistory() bool {
	return s.HistoryID != ""
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Selection:  s.selection,
		Product:    s.product,
		HistoryID:  s.historyID,
		historySeq: s.historySeq,
		Identity:   s.identity,
	}
	if s.selection.DistanceKm != nil {
		km := *s.selection.DistanceKm
		snap.Selection.DistanceKm = &km
	}
	if s.position != nil {
		pos := *s.position
		snap.Position = &pos
	}
	return snap
}

// Apply mutates the state for an event.
func (s *State) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case RegionChanged:
		s.selection.SetRegion(e.RegionCode)
	case DistanceChanged:
		s.selection.SetDistance(e.DistanceKm)
	case ProductSelected:
		s.product = e.Product
	case HistoryHighlightRequested:
		s.historyID = e.StoreID
		s.historySeq++
	}
}

// SetPosition records the latest user position.
func (s *State) SetPosition(pos recommend.UserPosition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = &pos
}

// SetIdentity sets the caller whose weights are used for ranking.
func (s *State) SetIdentity(id preference.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = id
}

// consumeHistory clears the history flag if it is still the one in snap.
func (s *State) consumeHistory(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historySeq == snap.historySeq {
		s.historyID = ""
	}
}
