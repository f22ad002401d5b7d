package source

import (
	"github.com/rendis/aqimap/internal/engine/geo"
	"github.com/rendis/aqimap/internal/model"
)

// DemoRegion is one entry of a built-in last-resort dataset: a named region
// approximated by its lon/lat rectangle.
type DemoRegion struct {
	Name   string
	Code   string
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
	AQI    float64
}

// DemoFeatures turns demo regions into features. The output is deterministic.
func DemoFeatures(kind model.Kind, regions []DemoRegion) []model.Feature {
	out := make([]model.Feature, 0, len(regions))
	for _, r := range regions {
		ring := geo.Rect(r.MinLon, r.MinLat, r.MaxLon, r.MaxLat)
		out = append(out, model.Feature{
			ID:       string(kind) + ":" + r.Code,
			Name:     r.Name,
			Code:     r.Code,
			Kind:     kind,
			Ring:     ring,
			Centroid: geo.Centroid(ring),
			AQI:      model.Float(r.AQI),
		})
	}
	return out
}
