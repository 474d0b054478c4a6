// Package markers owns the on-map marker set and reconciles it against the
// result of each recompute cycle.
package markers

import (
	"sort"

	"github.com/storeradar/radar-service/internal/geo"
	"github.com/storeradar/radar-service/internal/recommend"
)

// Mode is the display state of the marker set.
type Mode string

const (
	ModeEmpty            Mode = "empty"
	ModePlain            Mode = "plain"
	ModeRanked           Mode = "ranked"
	ModeHistoryHighlight Mode = "history_highlight"
)

// Glyph is the visual marker style.
type Glyph string

const (
	GlyphTop      Glyph = "red"
	GlyphRunnerUp Glyph = "orange"
	GlyphDefault  Glyph = "black"
	GlyphUser     Glyph = "blue"
)

// GlyphFor returns the glyph used for a tier.
func GlyphFor(t recommend.Tier) Glyph {
	switch t {
	case recommend.TierTop:
		return GlyphTop
	case recommend.TierRunnerUp:
		return GlyphRunnerUp
	default:
		return GlyphDefault
	}
}

// Kind separates store markers from the user location marker.
type Kind string

const (
	KindStore Kind = "store"
	KindUser  Kind = "user"
)

// Tooltip is the text shown next to a marker.
type Tooltip struct {
	Text      string `json:"text"`
	Permanent bool   `json:"permanent"`
}

// Marker is one marker to be placed on the surface.
type Marker struct {
	Kind     Kind           `json:"kind"`
	StoreID  string         `json:"store_id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Position geo.Point      `json:"position"`
	Tier     recommend.Tier `json:"tier"`
	Glyph    Glyph          `json:"glyph"`
	Tooltip  *Tooltip       `json:"tooltip,omitempty"`
	// Summary is shown when a runner-up marker is tapped.
	Summary string `json:"summary,omitempty"`
}

// sameLook reports whether two markers for the same store render identically.
func (m Marker) sameLook(o Marker) bool {
	if m.Tier != o.Tier || m.Glyph != o.Glyph || m.Summary != o.Summary || m.Position != o.Position {
		return false
	}
	if (m.Tooltip == nil) != (o.Tooltip == nil) {
		return false
	}
	return m.Tooltip == nil || *m.Tooltip == *o.Tooltip
}

// Desired is the complete marker state a cycle wants on the surface.
type Desired struct {
	Mode    Mode
	Markers []Marker
	// Overlay is the radius to draw; nil clears any drawn overlay.
	Overlay *recommend.RadiusOverlay
	// Focus is where the viewport flies to, if anywhere.
	Focus *geo.Point
	// OpenDetail is the store id whose detail panel is open; empty closes the panel.
	OpenDetail string
	// Ranked and Stores back the detail view opened by a marker click.
	Ranked []recommend.ScoredStore
	Stores []recommend.Store
}

// Empty returns the desired state with no store markers.
func Empty() Desired {
	return Desired{Mode: ModeEmpty}
}

// Diff lists the store ids whose markers changed in one Apply.
type Diff struct {
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Retagged []string `json:"retagged"`
}

// IsEmpty reports whether the apply changed nothing visible.
func (d Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Retagged) == 0
}

func diffMarkers(prior map[string]entry, desired []Marker) Diff {
	d := Diff{Added: []string{}, Removed: []string{}, Retagged: []string{}}
	want := make(map[string]Marker, len(desired))
	for _, m := range desired {
		if _, dup := want[m.StoreID]; dup {
			continue
		}
		want[m.StoreID] = m
		old, ok := prior[m.StoreID]
		switch {
		case !ok:
			d.Added = append(d.Added, m.StoreID)
		case !old.marker.sameLook(m):
			d.Retagged = append(d.Retagged, m.StoreID)
		}
	}
	for id := range prior {
		if _, ok := want[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Retagged)
	return d
}
