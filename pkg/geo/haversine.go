package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for every great-circle
// computation in the module.
const EarthRadiusMeters = 6_371_000.0

// metersPerDegree is the length of one degree of arc on the mean sphere.
const metersPerDegree = math.Pi / 180 * EarthRadiusMeters

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just outside [0, 1] near antipodes.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// DegreeSpan returns the latitude and longitude half-extents, in degrees, of a
// box centred at lat that covers radiusMeters in every direction.
func DegreeSpan(lat, radiusMeters float64) (dLat, dLon float64) {
	dLat = radiusMeters / metersPerDegree
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		// Near the poles every longitude is within reach.
		return dLat, 180
	}
	return dLat, dLat / cosLat
}
