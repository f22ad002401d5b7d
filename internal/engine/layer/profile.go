package layer

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/rendis/aqimap/internal/engine/aqi"
	"github.com/rendis/aqimap/internal/engine/geo"
	"github.com/rendis/aqimap/internal/engine/source"
	"github.com/rendis/aqimap/internal/model"
)

// Profile parameterizes the generic Layer for one region kind.
type Profile struct {
	Kind  model.Kind
	Title string

	Providers   []source.Provider
	Bounds      orb.Bound
	MaxVertices int
	Excluded    []string

	Overrides       map[string]float64
	SyntheticRanges map[string]aqi.Range
	// NoSyntheticAQI leaves features without an AQI as "No data".
	NoSyntheticAQI bool
	Demo           []source.DemoRegion
}

func (p Profile) ValidatorConfig() geo.ValidatorConfig {
	return geo.ValidatorConfig{
		Bounds:      p.Bounds,
		MaxVertices: p.MaxVertices,
		Excluded:    geo.NewNameSet(p.Excluded...),
	}
}

// WithProviderURLs replaces the provider list with urls, named by position.
// An empty list keeps the profile unchanged.
func (p Profile) WithProviderURLs(urls []string) Profile {
	if len(urls) == 0 {
		return p
	}
	providers := make([]source.Provider, 0, len(urls))
	for i, u := range urls {
		providers = append(providers, source.Provider{Name: providerName(i), URL: u})
	}
	p.Providers = providers
	return p
}

func providerName(i int) string {
	return fmt.Sprintf("custom-%d", i+1)
}
