package engine

// Event is a state change that triggers a recompute.
type Event interface {
	isEvent()
}

// RegionChanged selects a region and clears any distance radius.
type RegionChanged struct {
	RegionCode string `json:"region_code"`
}

// DistanceChanged selects a radius and resets the region to all regions.
type DistanceChanged struct {
	DistanceKm float64 `json:"distance_km"`
}

// ProductSelected sets the product to rank by. An empty product shows plain markers.
type ProductSelected struct {
	Product string `json:"product"`
}

// HistoryHighlightRequested spotlights one store on the next cycle only.
type HistoryHighlightRequested struct {
	StoreID string `json:"store_id"`
}

func (RegionChanged) isEvent()             {}
func (DistanceChanged) isEvent()           {}
func (ProductSelected) isEvent()           {}
func (HistoryHighlightRequested) isEvent() {}
