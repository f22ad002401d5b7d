package model

import (
	"image/color"
	"time"

	"github.com/paulmach/orb"
)

// Kind is the discriminator that tags every feature and render record with
// the layer it belongs to.
type Kind string

const (
	KindProvince Kind = "province"
	KindState    Kind = "state"
)

// Origin records where a layer's current feature set came from.
type Origin string

const (
	OriginNone     Origin = ""
	OriginRemote   Origin = "remote"   // first-priority provider
	OriginFallback Origin = "fallback" // later provider or local payload cache
	OriginDemo     Origin = "demo"     // built-in synthetic dataset
)

// LoadState is the data lifecycle of a layer.
type LoadState int

const (
	Uninitialized LoadState = iota
	Loading
	Ready
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	}
	return "uninitialized"
}

// Band is one row of the AQI color scale. Min is inclusive, Max exclusive.
type Band struct {
	Index  int
	Min    float64
	Max    float64
	Label  string
	Fill   color.NRGBA
	Stroke color.NRGBA
}

// Feature is one administrative boundary polygon with its AQI classification.
type Feature struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	Kind       Kind      `json:"kind"`
	Ring       orb.Ring  `json:"-"`
	Centroid   orb.Point `json:"centroid"`
	AQI        *float64  `json:"aqi,omitempty"`
	Band       Band      `json:"-"`
	Overridden bool      `json:"overridden"`
}

// HasAQI reports whether the feature carries an AQI value.
func (f Feature) HasAQI() bool {
	return f.AQI != nil
}

// AQIValue returns the AQI or 0 when absent.
func (f Feature) AQIValue() float64 {
	if f.AQI == nil {
		return 0
	}
	return *f.AQI
}

// Status is the operator-facing snapshot of a layer.
type Status struct {
	Kind         Kind
	Enabled      bool
	DataLoaded   bool
	FeatureCount int
	State        LoadState
	Origin       Origin
	LoadID       string
	LoadedAt     time.Time
}

// Float returns a pointer to v. Handy for literal AQI values.
func Float(v float64) *float64 {
	return &v
}
