package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rendis/aqimap/internal/engine/aqi"
	"github.com/rendis/aqimap/internal/model"
	"github.com/rendis/aqimap/internal/render"
)

// Host is the tooltip/router hook handed to the compositor. It only keeps
// the text to show; the App reads it on every View.
type Host struct {
	mu      sync.Mutex
	tooltip string
	detail  string
}

func NewHost() *Host {
	return &Host{}
}

// Tooltip implements render.Host.
func (h *Host) Tooltip(kind model.Kind, rec *render.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if rec == nil {
		h.tooltip = ""
		return
	}
	band := aqi.Classify(rec.AQI)
	value := aqi.NoDataLabel
	if rec.AQI != nil {
		value = fmt.Sprintf("%.0f", *rec.AQI)
	}
	h.tooltip = fmt.Sprintf("%s · %s · AQI %s (%s)", kind, rec.Name, value, band.Label)
}

// Route implements render.Host. A click opens the detail card.
func (h *Host) Route(kind model.Kind, rec render.Record) {
	band := aqi.Classify(rec.AQI)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rec.Name)
	fmt.Fprintf(&b, "layer  %s\n", kind)
	if rec.Code != "" {
		fmt.Fprintf(&b, "code   %s\n", rec.Code)
	}
	if rec.AQI != nil {
		fmt.Fprintf(&b, "aqi    %.0f\n", *rec.AQI)
	}
	fmt.Fprintf(&b, "band   %s\n", band.Label)
	fmt.Fprintf(&b, "at     %.3f, %.3f", rec.Position.Lat(), rec.Position.Lon())

	h.mu.Lock()
	h.detail = b.String()
	h.mu.Unlock()
}

func (h *Host) Tip() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tooltip
}

func (h *Host) Detail() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.detail
}

func (h *Host) CloseDetail() {
	h.mu.Lock()
	h.detail = ""
	h.mu.Unlock()
}
