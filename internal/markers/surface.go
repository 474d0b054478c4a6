package markers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/storeradar/radar-service/internal/geo"
	"github.com/storeradar/radar-service/internal/recommend"
)

// Handle identifies a marker placed on a surface.
type Handle uint64

// Surface is the map a reconciler draws on.
// FlyTo and OpenDetail are fire-and-forget. OpenDetail with an empty store id
// closes the detail panel.
type Surface interface {
	AddMarker(m Marker) (Handle, error)
	RemoveMarker(h Handle) error
	SetOverlay(o *recommend.RadiusOverlay)
	FlyTo(p geo.Point)
	OpenDetail(storeID string)
}

// Snapshot is what a client needs to render a MemorySurface.
type Snapshot struct {
	Markers      []Marker                 `json:"markers"`
	UserLocation *Marker                  `json:"user_location,omitempty"`
	Overlay      *recommend.RadiusOverlay `json:"overlay,omitempty"`
	Focus        *geo.Point               `json:"focus,omitempty"`
	Detail       string                   `json:"detail,omitempty"`
}

// MemorySurface keeps markers in process. Clients render from Snapshot.
type MemorySurface struct {
	mu      sync.RWMutex
	next    Handle
	markers map[Handle]Marker
	overlay *recommend.RadiusOverlay
	focus   *geo.Point
	detail  string
}

// NewMemorySurface creates an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{markers: make(map[Handle]Marker)}
}

func (s *MemorySurface) AddMarker(m Marker) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.markers[s.next] = m
	return s.next, nil
}

func (s *MemorySurface) RemoveMarker(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.markers[h]; !ok {
		return fmt.Errorf("unknown marker handle %d", h)
	}
	delete(s.markers, h)
	return nil
}

func (s *MemorySurface) SetOverlay(o *recommend.RadiusOverlay) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o == nil {
		s.overlay = nil
		return
	}
	cp := *o
	s.overlay = &cp
}

func (s *MemorySurface) FlyTo(p geo.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = &p
}

func (s *MemorySurface) OpenDetail(storeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = storeID
}

// Snapshot returns the current surface contents with store markers in
// placement order.
func (s *MemorySurface) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handles := make([]Handle, 0, len(s.markers))
	for h := range s.markers {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	snap := Snapshot{Markers: []Marker{}, Detail: s.detail}
	for _, h := range handles {
		m := s.markers[h]
		if m.Kind == KindUser {
			um := m
			snap.UserLocation = &um
			continue
		}
		snap.Markers = append(snap.Markers, m)
	}
	if s.overlay != nil {
		o := *s.overlay
		snap.Overlay = &o
	}
	if s.focus != nil {
		f := *s.focus
		snap.Focus = &f
	}
	return snap
}

// Len returns the number of markers of all kinds on the surface.
func (s *MemorySurface) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}
