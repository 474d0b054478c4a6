package recommend

import (
	"github.com/storeradar/radar-service/internal/geo"
)

// AllRegions is the region code meaning "no region filter".
const AllRegions = "020000000"

// Store is a retail location as returned by the store catalog.
// Coordinates are nullable because geocoding may be missing.
type Store struct {
	StoreID        string   `json:"store_id"`
	Name           string   `json:"store_name"`
	Phone          *string  `json:"tel_no"`
	PostNo         *string  `json:"post_no"`
	JibunAddr      string   `json:"jibun_addr"`
	RoadAddr       string   `json:"road_addr"`
	X              *float64 `json:"x_coord"` // latitude
	Y              *float64 `json:"y_coord"` // longitude
	AreaCode       string   `json:"area_code"`
	AreaDetailCode string   `json:"area_detail_code"`
}

// Location returns the store's coordinates and whether they are present.
func (s Store) Location() (geo.Point, bool) {
	if s.X == nil || s.Y == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *s.X, Lng: *s.Y}, true
}

// PricePoint is a price observation for the selected product at one store.
type PricePoint struct {
	StoreID    string `json:"store_id"`
	Price      int64  `json:"price"`
	InspectDay string `json:"inspect_day"`
}

// Tier is the display category of a marker.
type Tier int

const (
	TierDefault  Tier = iota // plain stores and ranks >= 5
	TierRunnerUp             // ranks 1..4
	TierTop                  // rank 0
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierTop:
		return "top"
	case TierRunnerUp:
		return "runner-up"
	default:
		return "default"
	}
}

// MarshalText lets tiers serialize as their names.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ScoredStore is a Store joined with its price, distance and efficiency score.
// Slices of ScoredStore are ordered: index 0 is the best candidate.
type ScoredStore struct {
	Store
	Price      int64   `json:"price"`
	InspectDay string  `json:"inspect_day"`
	DistanceKm float64 `json:"distance"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
	Tier       Tier    `json:"tier"`
}

// UserPosition is the last known position of the user.
type UserPosition struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy"`
}

// Point returns the position as a geo.Point.
func (p UserPosition) Point() geo.Point {
	return geo.Point{Lat: p.Lat, Lng: p.Lng}
}

// Preference holds the user's relative emphasis on cheapness vs. proximity.
// Weights are used as given; they are not required to sum to 1.
type Preference struct {
	WPrice    float64 `json:"w_price"`
	WDistance float64 `json:"w_distance"`
}

// DefaultPreference is used for unauthenticated or unknown users.
func DefaultPreference() Preference {
	return Preference{WPrice: 0.5, WDistance: 0.5}
}

// FilterSelection is the spatial/administrative filter. Region and distance are
// mutually exclusive: setting one clears the other.
type FilterSelection struct {
	RegionCode string   `json:"region_code"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// NewFilterSelection returns a selection with no filter applied.
func NewFilterSelection() FilterSelection {
	return FilterSelection{RegionCode: AllRegions}
}

// SetRegion selects a region and clears the distance radius.
func (f *FilterSelection) SetRegion(code string) {
	if code == "" {
		code = AllRegions
	}
	f.RegionCode = code
	f.DistanceKm = nil
}

// SetDistance selects a radius and resets the region to all regions.
func (f *FilterSelection) SetDistance(km float64) {
	f.DistanceKm = &km
	f.RegionCode = AllRegions
}

// RadiusOverlay describes the circle drawn for a distance filter.
type RadiusOverlay struct {
	Center   geo.Point `json:"center"`
	RadiusKm float64   `json:"radius_km"`
}

// Region is an administrative area offered as a filter.
type Region struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	ParentCode *string `json:"parent_code"`
	Level      int16   `json:"level"`
}
