package aqi

import (
	"fmt"
	"image/color"
	"math"

	"github.com/rendis/aqimap/internal/model"
)

// NoDataLabel replaces the band label when a feature has no AQI at all.
const NoDataLabel = "No data"

// bands is the shared legend. Every layer classifies against this one table
// so the legend stays identical across region kinds.
var bands = [...]model.Band{
	{Index: 0, Min: 0, Max: 51, Label: "Good",
		Fill: color.NRGBA{0, 228, 0, 64}, Stroke: color.NRGBA{0, 228, 0, 255}},
	{Index: 1, Min: 51, Max: 101, Label: "Good-Moderate",
		Fill: color.NRGBA{255, 255, 0, 150}, Stroke: color.NRGBA{255, 255, 0, 255}},
	{Index: 2, Min: 101, Max: 151, Label: "Moderate",
		Fill: color.NRGBA{255, 126, 0, 150}, Stroke: color.NRGBA{255, 126, 0, 255}},
	{Index: 3, Min: 151, Max: 201, Label: "Moderate-Unhealthy",
		Fill: color.NRGBA{255, 0, 0, 150}, Stroke: color.NRGBA{255, 0, 0, 255}},
	{Index: 4, Min: 201, Max: 301, Label: "Unhealthy",
		Fill: color.NRGBA{143, 63, 151, 160}, Stroke: color.NRGBA{143, 63, 151, 255}},
	{Index: 5, Min: 301, Max: math.Inf(1), Label: "Very-Unhealthy",
		Fill: color.NRGBA{126, 0, 35, 180}, Stroke: color.NRGBA{126, 0, 35, 255}},
}

// Bands returns a copy of the legend, lowest severity first.
func Bands() []model.Band {
	out := make([]model.Band, len(bands))
	copy(out, bands[:])
	return out
}

// Classify maps an AQI to its band. A nil or NaN value resolves to the Good
// band colors labelled NoDataLabel; negative values clamp to Good.
func Classify(aqi *float64) model.Band {
	if aqi == nil || math.IsNaN(*aqi) {
		b := bands[0]
		b.Label = NoDataLabel
		return b
	}
	return classifyValue(*aqi)
}

// ClassifyValue is Classify for a present value.
func ClassifyValue(v float64) model.Band {
	if math.IsNaN(v) {
		return Classify(nil)
	}
	return classifyValue(v)
}

func classifyValue(v float64) model.Band {
	for _, b := range bands {
		if v < b.Max {
			return b
		}
	}
	return bands[len(bands)-1]
}

// ClassifyFeature stores the band for f's current AQI on f.
func ClassifyFeature(f *model.Feature) {
	f.Band = Classify(f.AQI)
}

// Hex renders c as #rrggbb, dropping alpha. Terminal renderers use it.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
