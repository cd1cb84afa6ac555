package fuel

import "github.com/tkrajina/gpxgo/gpx"

const metersPerKm = 1000.0

// DistanceKm returns the great-circle (haversine) distance in kilometers
// between two WGS84 coordinates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return gpx.Distance2D(lat1, lon1, lat2, lon2, true) / metersPerKm
}
