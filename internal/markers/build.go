package markers

import (
	"github.com/storeradar/radar-service/internal/recommend"
)

// Builder turns filter and ranking results into desired marker states.
type Builder struct {
	format *Formatter
}

// NewBuilder creates a builder. A nil formatter uses DefaultFormatter.
func NewBuilder(format *Formatter) *Builder {
	if format == nil {
		format = DefaultFormatter()
	}
	return &Builder{format: format}
}

// Plain shows every store with coordinates as a default marker without a tooltip.
func (b *Builder) Plain(stores []recommend.Store) Desired {
	d := Desired{Mode: ModePlain, Markers: make([]Marker, 0, len(stores)), Stores: stores}
	for _, s := range stores {
		loc, ok := s.Location()
		if !ok {
			continue
		}
		d.Markers = append(d.Markers, Marker{
			Kind:     KindStore,
			StoreID:  s.StoreID,
			Name:     s.Name,
			Position: loc,
			Tier:     recommend.TierDefault,
			Glyph:    GlyphDefault,
		})
	}
	if len(d.Markers) == 0 {
		d.Mode = ModeEmpty
	}
	return d
}

// Ranked shows scored stores by tier and focuses the viewport on rank 0.
// An empty list yields ModeEmpty.
func (b *Builder) Ranked(scored []recommend.ScoredStore) Desired {
	d := Desired{Mode: ModeRanked, Markers: make([]Marker, 0, len(scored)), Ranked: scored}
	for _, s := range scored {
		loc, ok := s.Location()
		if !ok {
			continue
		}
		d.Markers = append(d.Markers, b.rankedMarker(s))
		if s.Rank == 0 {
			focus := loc
			d.Focus = &focus
		}
	}
	if len(d.Markers) == 0 {
		d.Mode = ModeEmpty
		d.Focus = nil
	}
	return d
}

func (b *Builder) rankedMarker(s recommend.ScoredStore) Marker {
	loc, _ := s.Location()
	m := Marker{
		Kind:     KindStore,
		StoreID:  s.StoreID,
		Name:     s.Name,
		Position: loc,
		Tier:     s.Tier,
		Glyph:    GlyphFor(s.Tier),
	}
	price := b.format.Price(s.Price)
	switch s.Tier {
	case recommend.TierTop:
		m.Tooltip = &Tooltip{
			Text:      price + " · " + b.format.Distance(s.DistanceKm) + " · " + b.format.Score(s.Score),
			Permanent: true,
		}
	case recommend.TierRunnerUp:
		m.Tooltip = &Tooltip{Text: price}
		m.Summary = s.Name + "\n" + price + " · " + b.format.Distance(s.DistanceKm)
	default:
		m.Tooltip = &Tooltip{Text: price}
	}
	return m
}

// Highlight spotlights a single store picked from the selection history.
// It returns false when the store has no coordinates.
func (b *Builder) Highlight(store recommend.Store) (Desired, bool) {
	loc, ok := store.Location()
	if !ok {
		return Desired{}, false
	}
	focus := loc
	return Desired{
		Mode: ModeHistoryHighlight,
		Markers: []Marker{{
			Kind:     KindStore,
			StoreID:  store.StoreID,
			Name:     store.Name,
			Position: loc,
			Tier:     recommend.TierTop,
			Glyph:    GlyphTop,
			Tooltip:  &Tooltip{Text: store.Name, Permanent: true},
		}},
		Focus:      &focus,
		OpenDetail: store.StoreID,
		Stores:     []recommend.Store{store},
	}, true
}
