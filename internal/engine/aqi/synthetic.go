package aqi

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/rendis/aqimap/internal/engine/geo"
)

// Range is a half-open AQI interval [Min, Max).
type Range struct {
	Min float64
	Max float64
}

// DefaultRange is used for names missing from the generator's table.
var DefaultRange = Range{Min: 50, Max: 90}

// Generator draws synthetic AQI values for regions whose payload carries
// none. Draws are random per load; pass a seed only for reproducible runs.
type Generator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	ranges map[string]Range
}

// NewGenerator builds a generator over a per-name range table. seed may be
// nil, in which case draws come from an unseeded source.
func NewGenerator(ranges map[string]Range, seed *uint64) *Generator {
	g := &Generator{ranges: make(map[string]Range, len(ranges))}
	for name, r := range ranges {
		g.ranges[geo.NormalizeName(name)] = r
	}
	if seed != nil {
		g.rng = rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	} else {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// RangeFor returns the base range used for name.
func (g *Generator) RangeFor(name string) Range {
	if r, ok := g.ranges[geo.NormalizeName(name)]; ok {
		return r
	}
	return DefaultRange
}

// Synthetic returns a whole-number AQI drawn uniformly from name's range.
func (g *Generator) Synthetic(name string) float64 {
	r := g.RangeFor(name)
	g.mu.Lock()
	u := g.rng.Float64()
	g.mu.Unlock()
	v := math.Floor(r.Min + u*(r.Max-r.Min))
	if v >= r.Max {
		v = r.Max - 1
	}
	return v
}
