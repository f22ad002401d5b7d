package compositor

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"go.uber.org/zap"

	"github.com/rendis/aqimap/internal/engine/aqi"
	"github.com/rendis/aqimap/internal/metrics"
	"github.com/rendis/aqimap/internal/model"
	"github.com/rendis/aqimap/internal/render"
)

// ErrNoSurface is the configuration error raised when no render surface was
// supplied.
var ErrNoSurface = errors.New("render surface not configured")

// foreignStyle colors records whose discriminator no layer registered.
var foreignStyle = render.Style{
	Fill:   color.NRGBA{128, 128, 128, 32},
	Stroke: color.NRGBA{128, 128, 128, 255},
}

// Compositor is the only component that reads or writes surface channels.
// Every mutation is a read-filter-concat-write over all channels, serialized
// so sequences for different layers never interleave.
type Compositor struct {
	mu      sync.Mutex
	surface render.Surface
	host    render.Host
	logger  *zap.Logger

	kindsMu sync.RWMutex
	kinds   map[model.Kind]string
}

// New installs the shared callback set on surface. surface may be nil, in
// which case every mutation fails with ErrNoSurface. host may be nil.
func New(surface render.Surface, host render.Host, logger *zap.Logger) *Compositor {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Compositor{
		surface: surface,
		host:    host,
		logger:  logger,
		kinds:   make(map[model.Kind]string),
	}
	if surface != nil {
		surface.OnColor(c.color)
		surface.OnLabel(c.label)
		surface.OnHover(c.hover)
		surface.OnClick(c.click)
	}
	return c
}

// Ready reports whether a surface is attached.
func (c *Compositor) Ready() bool {
	return c != nil && c.surface != nil
}

// Register declares kind as a layer discriminator with a display title.
func (c *Compositor) Register(kind model.Kind, title string) {
	c.kindsMu.Lock()
	c.kinds[kind] = title
	c.kindsMu.Unlock()
}

func (c *Compositor) registered(kind model.Kind) (string, bool) {
	c.kindsMu.RLock()
	defer c.kindsMu.RUnlock()
	t, ok := c.kinds[kind]
	return t, ok
}

// Project replaces kind's records on every channel with records built from
// features. Records of other kinds keep their content and relative order.
func (c *Compositor) Project(kind model.Kind, features []model.Feature) error {
	if !c.Ready() {
		return ErrNoSurface
	}
	polys, points, labels := buildRecords(kind, features)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.replace(render.Polygons, kind, polys)
	c.replace(render.Points, kind, points)
	c.replace(render.Labels, kind, labels)

	metrics.CompositePassesTotal.WithLabelValues(string(kind), "project").Inc()
	c.logger.Debug("COMPOSITE_PROJECT", zap.String("kind", string(kind)), zap.Int("features", len(features)))
	return nil
}

// Remove drops every record of kind from every channel.
func (c *Compositor) Remove(kind model.Kind) error {
	if !c.Ready() {
		return ErrNoSurface
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range render.Channels {
		c.replace(ch, kind, nil)
	}

	metrics.CompositePassesTotal.WithLabelValues(string(kind), "remove").Inc()
	c.logger.Debug("COMPOSITE_REMOVE", zap.String("kind", string(kind)))
	return nil
}

// Count returns how many records of kind sit on ch.
func (c *Compositor) Count(ch render.Channel, kind model.Kind) int {
	if !c.Ready() {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.surface.Records(ch) {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

// replace is the read-filter-concat-write step. Caller holds c.mu.
func (c *Compositor) replace(ch render.Channel, kind model.Kind, add []render.Record) {
	cur := c.surface.Records(ch)
	next := make([]render.Record, 0, len(cur)+len(add))
	for _, r := range cur {
		if r.Kind != kind {
			next = append(next, r)
		}
	}
	next = append(next, add...)
	c.surface.SetRecords(ch, next)
}

func buildRecords(kind model.Kind, features []model.Feature) (polys, points, labels []render.Record) {
	polys = make([]render.Record, 0, len(features))
	points = make([]render.Record, 0, len(features))
	labels = make([]render.Record, 0, len(features))
	for _, f := range features {
		band := aqi.Classify(f.AQI)
		polys = append(polys, render.Record{
			Kind: kind,
			ID:   f.ID,
			Name: f.Name,
			Code: f.Code,
			Ring: f.Ring,
			AQI:  f.AQI,
			Text: band.Label,
		})
		points = append(points, render.Record{
			Kind:     kind,
			ID:       f.ID,
			Name:     f.Name,
			Code:     f.Code,
			Position: f.Centroid,
			AQI:      f.AQI,
			Text:     f.Name,
		})
		labels = append(labels, render.Record{
			Kind:     kind,
			ID:       f.ID,
			Name:     f.Name,
			Position: f.Centroid,
			AQI:      f.AQI,
			Text:     aqiText(f.AQI),
		})
	}
	return polys, points, labels
}

func aqiText(v *float64) string {
	if v == nil {
		return aqi.NoDataLabel
	}
	return fmt.Sprintf("AQI %.0f", *v)
}

// The callbacks below are installed once and shared by every layer. They
// only look at the record's discriminator.

func (c *Compositor) color(r render.Record) render.Style {
	if _, ok := c.registered(r.Kind); !ok {
		return foreignStyle
	}
	b := aqi.Classify(r.AQI)
	return render.Style{Fill: b.Fill, Stroke: b.Stroke}
}

func (c *Compositor) label(r render.Record) string {
	title, ok := c.registered(r.Kind)
	if !ok {
		return r.Text
	}
	if r.Text == r.Name {
		return r.Name
	}
	return fmt.Sprintf("%s %s: %s", title, r.Name, r.Text)
}

func (c *Compositor) hover(r *render.Record) {
	if c.host == nil {
		return
	}
	if r == nil {
		c.host.Tooltip("", nil)
		return
	}
	if _, ok := c.registered(r.Kind); !ok {
		return
	}
	c.host.Tooltip(r.Kind, r)
}

func (c *Compositor) click(r render.Record) {
	if c.host == nil {
		return
	}
	if _, ok := c.registered(r.Kind); !ok {
		return
	}
	c.host.Route(r.Kind, r)
}
