package recommend

import (
	"github.com/storeradar/radar-service/internal/geo"
)

// FilterMode reports which filter produced a FilterResult.
type FilterMode string

const (
	FilterNone     FilterMode = "none"
	FilterDistance FilterMode = "distance"
	FilterRegion   FilterMode = "region"
)

// FilterResult is the candidate set for one recompute cycle.
// A nil Overlay means any previously drawn radius must be cleared.
type FilterResult struct {
	Mode    FilterMode
	Stores  []Store
	Overlay *RadiusOverlay
}

// FilterStores narrows the catalog by the current selection.
//
// A distance radius takes precedence over a region, even when both are set.
// Stores without coordinates never pass the distance filter but are kept by the
// region filter, which only looks at area codes. The input slice is not modified.
func FilterStores(all []Store, sel FilterSelection, pos UserPosition) FilterResult {
	if sel.DistanceKm != nil {
		radius := *sel.DistanceKm
		center := pos.Point()
		stores := make([]Store, 0, len(all))
		for _, s := range all {
			loc, ok := s.Location()
			if !ok {
				continue
			}
			if geo.Between(center, loc) <= radius {
				stores = append(stores, s)
			}
		}
		return FilterResult{
			Mode:    FilterDistance,
			Stores:  stores,
			Overlay: &RadiusOverlay{Center: center, RadiusKm: radius},
		}
	}

	if sel.RegionCode != "" && sel.RegionCode != AllRegions {
		stores := make([]Store, 0, len(all))
		for _, s := range all {
			if s.AreaCode == sel.RegionCode {
				stores = append(stores, s)
			}
		}
		return FilterResult{Mode: FilterRegion, Stores: stores}
	}

	stores := make([]Store, len(all))
	copy(stores, all)
	return FilterResult{Mode: FilterNone, Stores: stores}
}
