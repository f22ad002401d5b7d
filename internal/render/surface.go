// Package render defines the contract of the shared render surface that
// boundary layers are drawn on, plus an in-memory implementation.
package render

import (
	"image/color"

	"github.com/paulmach/orb"

	"github.com/rendis/aqimap/internal/model"
)

// Channel names one record list on the surface.
type Channel string

const (
	Polygons Channel = "polygons"
	Points   Channel = "points"
	Labels   Channel = "labels"
)

// Channels lists every channel in draw order.
var Channels = []Channel{Polygons, Points, Labels}

// Record is one drawable item. Kind is the discriminator that ties it to a
// layer; only Polygons records carry a Ring.
type Record struct {
	Kind     model.Kind
	ID       string
	Name     string
	Code     string
	Ring     orb.Ring
	Position orb.Point
	AQI      *float64
	Text     string
}

// Style is what the color callback resolves for a record.
type Style struct {
	Fill   color.NRGBA
	Stroke color.NRGBA
}

// Surface is the external stateful draw target. Whole-channel replacement is
// the only mutation it supports.
type Surface interface {
	Records(ch Channel) []Record
	SetRecords(ch Channel, recs []Record)

	OnColor(fn func(Record) Style)
	OnLabel(fn func(Record) string)
	// OnHover receives nil when the pointer leaves every record.
	OnHover(fn func(*Record))
	OnClick(fn func(Record))
}

// Host is the optional application hook that shows tooltips and routes
// clicks. It is keyed by discriminator.
type Host interface {
	Tooltip(kind model.Kind, rec *Record)
	Route(kind model.Kind, rec Record)
}
