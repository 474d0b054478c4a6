// Package geo holds the great-circle math shared by filtering, scoring and display.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Point is a coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm calculates the great-circle distance between two points in kilometers.
// NaN inputs yield NaN; callers filter out stores without coordinates first.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(math.Abs(lat1 - lat2))
	dLng := toRad(math.Abs(lng1 - lng2))

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	a := sinLat*sinLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinLng*sinLng

	// Rounding can push a marginally above 1 for antipodal points.
	if a > 1 {
		a = 1
	}
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// Between is DistanceKm for two Points.
func Between(a, b Point) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
