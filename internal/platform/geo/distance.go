// File: internal/platform/geo/distance.go
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DistanceKM returns the great-circle distance in kilometers between two
// lat/lon points.
func DistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := orb.Point{lon1, lat1}
	p2 := orb.Point{lon2, lat2}
	return geo.DistanceHaversine(p1, p2) / 1000.0
}
