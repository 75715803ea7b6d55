package exploration

import (
	"math"

	"github.com/benmeehan/fog-agent/internal/models"
	"github.com/benmeehan/fog-agent/pkg/geo"
)

// MinRadius is the radius in meters of a new region and the floor a region is
// grown to when it absorbs a sample.
const MinRadius = 300.0

// Result describes what a single observation did to the set.
type Result struct {
	// Created is true when the point matched no region and a new one was appended.
	Created bool
	// Absorbed is the number of existing regions containing the point.
	Absorbed int
}

// Observe classifies point against set and returns the updated set. The input
// set is not modified.
//
// Every region containing the point is grown to at least MinRadius; regions
// are never merged. A point covered by no region starts a new one centered on
// it.
func Observe(point geo.Coordinate, set models.ExplorationSet) (models.ExplorationSet, Result) {
	next := set.Clone()
	var res Result

	for i := range next {
		if geo.Distance(point, next[i].Center()) <= next[i].Radius {
			res.Absorbed++
			next[i].Radius = math.Max(next[i].Radius, MinRadius)
		}
	}

	if res.Absorbed == 0 {
		res.Created = true
		next = append(next, models.ExploredRegion{
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
			Radius:    MinRadius,
		})
	}

	return next, res
}
