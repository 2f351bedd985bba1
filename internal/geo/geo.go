// Package geo provides coordinate values, great-circle distance math, and the
// proximity gate used to authorize visit transitions.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000

// Coordinate is an immutable latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is inside the WGS84 range:
// latitude in [-90, 90] and longitude in [-180, 180].
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// DistanceMeters returns the haversine great-circle distance between a and b.
// Callers are responsible for validating the inputs (see Coordinate.Valid);
// NaN input propagates to the result.
//
// The result is deliberately unrounded. Comparisons (the proximity gate)
// use the raw value; round only for presentation.
func DistanceMeters(a, b Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

func toRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
