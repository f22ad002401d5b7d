package aqi

import (
	"github.com/rendis/aqimap/internal/engine/geo"
	"github.com/rendis/aqimap/internal/model"
)

// Overrides is a fixed table of curated AQI values keyed by region name.
// Matching features get the curated value on every composite pass.
type Overrides struct {
	values map[string]float64
}

func NewOverrides(values map[string]float64) Overrides {
	o := Overrides{values: make(map[string]float64, len(values))}
	for name, v := range values {
		o.values[geo.NormalizeName(name)] = v
	}
	return o
}

// Lookup returns the curated AQI for name.
func (o Overrides) Lookup(name string) (float64, bool) {
	v, ok := o.values[geo.NormalizeName(name)]
	return v, ok
}

// Apply replaces f's AQI and band when an override exists and reports
// whether it did.
func (o Overrides) Apply(f *model.Feature) bool {
	v, ok := o.Lookup(f.Name)
	if !ok {
		return false
	}
	f.AQI = model.Float(v)
	f.Band = ClassifyValue(v)
	f.Overridden = true
	return true
}

func (o Overrides) Len() int {
	return len(o.values)
}
