package models

import (
	"math"

	"github.com/benmeehan/fog-agent/pkg/geo"
)

// ExploredRegion is a disc of ground known to be explored. The center never
// moves once created; only the radius may grow.
type ExploredRegion struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}

// Center returns the region's center as a coordinate.
func (r ExploredRegion) Center() geo.Coordinate {
	return geo.Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Valid reports whether the region has finite, in-range coordinates and a positive radius.
func (r ExploredRegion) Valid() bool {
	for _, v := range []float64{r.Latitude, r.Longitude, r.Radius} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Radius > 0 &&
		r.Latitude >= -90 && r.Latitude <= 90 &&
		r.Longitude >= -180 && r.Longitude <= 180
}

// ExplorationSet is the ordered list of explored regions, in creation order.
type ExplorationSet []ExploredRegion

// Clone returns a copy that shares no backing array with s. A nil set clones
// to an empty, non-nil set so it serializes as [].
func (s ExplorationSet) Clone() ExplorationSet {
	out := make(ExplorationSet, len(s))
	copy(out, s)
	return out
}
