// Package geo provides the coordinate value type, great-circle distance, and
// the device location provider.
package geo

import (
	"math"

	dErrors "ponto/pkg/domain-errors"
)

// earthRadiusMeters is the mean Earth radius used by the Haversine formula.
const earthRadiusMeters = 6371000.0

// Coordinate is an immutable latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate enforces the WGS84 coordinate ranges at trust boundaries.
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "latitude %v out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "longitude %v out of range [-180, 180]", c.Longitude)
	}
	return nil
}

// Distance returns the Haversine great-circle distance between a and b in
// meters. It is symmetric and returns 0 for identical coordinates.
func Distance(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
