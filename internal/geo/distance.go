// Package geo holds the small pure-geometry helpers the planner leans on.
package geo

import "math"

const earthRadiusKm = 6371

// DistanceKm returns the great-circle distance between two coordinates in
// kilometers, using the Haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Centroid returns the arithmetic center of a coordinate set. ok is false
// when the set is empty.
func Centroid(coords [][2]float64) (lat, lon float64, ok bool) {
	if len(coords) == 0 {
		return 0, 0, false
	}
	for _, c := range coords {
		lat += c[0]
		lon += c[1]
	}
	n := float64(len(coords))
	return lat / n, lon / n, true
}
