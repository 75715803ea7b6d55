package location

import (
	"math"
	"time"

	"github.com/benmeehan/fog-agent/pkg/geo"
)

// Location represents the geographical coordinates of a device
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters, or HDOP for sensor fixes
	Timestamp time.Time
}

// Coordinate returns the position without accuracy metadata.
func (l Location) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Valid reports whether the coordinates are finite and within WGS 84 bounds.
func (l Location) Valid() bool {
	if math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) ||
		math.IsInf(l.Latitude, 0) || math.IsInf(l.Longitude, 0) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}
