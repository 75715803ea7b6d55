// Package render converts explored regions into overlays a map can draw.
package render

import (
	"github.com/benmeehan/fog-agent/internal/models"
	"github.com/benmeehan/fog-agent/pkg/geo"
)

// Defaults match the translucent "fog" disc drawn for each region.
const (
	DefaultSegments    = 64
	DefaultFillColor   = "rgba(0, 0, 0, 0.5)"
	DefaultStrokeColor = "transparent"
)

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON Feature with a polygon geometry.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Polygon        `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Polygon is a GeoJSON Polygon. Coordinates are [lon, lat] rings; the first
// ring is the exterior and is closed.
type Polygon struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// Options tunes the generated overlay.
type Options struct {
	Segments    int
	FillColor   string
	StrokeColor string
}

func (o Options) withDefaults() Options {
	if o.Segments < 3 {
		o.Segments = DefaultSegments
	}
	if o.FillColor == "" {
		o.FillColor = DefaultFillColor
	}
	if o.StrokeColor == "" {
		o.StrokeColor = DefaultStrokeColor
	}
	return o
}

// Regions renders one disc polygon per region. The "key" property is the
// region's index in the set, which is stable because regions are only appended.
func Regions(set models.ExplorationSet, opts Options) FeatureCollection {
	opts = opts.withDefaults()

	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(set)),
	}
	for i, region := range set {
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: disc(region, opts.Segments),
			Properties: map[string]any{
				"key":         i,
				"radius":      region.Radius,
				"center":      []float64{region.Longitude, region.Latitude},
				"fillColor":   opts.FillColor,
				"strokeColor": opts.StrokeColor,
			},
		})
	}
	return fc
}

// disc approximates the region boundary with segments points, counter-clockwise.
func disc(region models.ExploredRegion, segments int) Polygon {
	ring := make([][]float64, 0, segments+1)
	center := region.Center()
	for i := 0; i < segments; i++ {
		bearing := 360 - float64(i)*360/float64(segments)
		p := geo.Destination(center, bearing, region.Radius)
		ring = append(ring, []float64{p.Longitude, p.Latitude})
	}
	ring = append(ring, ring[0])

	return Polygon{Type: "Polygon", Coordinates: [][][]float64{ring}}
}
