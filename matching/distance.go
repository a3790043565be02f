package matching

import "math"

// earthRadiusKm is the mean Earth radius used by the spherical
// great-circle approximation. No ellipsoid correction is applied.
const earthRadiusKm = 6371.0

// HaversineDistanceKm returns the great-circle distance in kilometers
// between two points given in decimal degrees. The result is symmetric
// in its arguments and zero for identical points.
func HaversineDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
