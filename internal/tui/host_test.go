package tui

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/rendis/aqimap/internal/model"
	"github.com/rendis/aqimap/internal/render"
)

func TestHostTooltip(t *testing.T) {
	h := NewHost()

	h.Tooltip(model.KindState, &render.Record{Name: "Delhi", AQI: model.Float(312)})
	if got := h.Tip(); got != "state · Delhi · AQI 312 (Very-Unhealthy)" {
		t.Errorf("tip = %q", got)
	}

	h.Tooltip(model.KindProvince, &render.Record{Name: "Tibet"})
	if got := h.Tip(); !strings.Contains(got, "No data") {
		t.Errorf("tip without aqi = %q", got)
	}

	h.Tooltip("", nil)
	if h.Tip() != "" {
		t.Error("tooltip not cleared")
	}
}

func TestHostRoute(t *testing.T) {
	h := NewHost()
	h.Route(model.KindProvince, render.Record{
		Name: "Hebei", Code: "CN-HE", AQI: model.Float(212), Position: orb.Point{116.6, 39.3},
	})

	d := h.Detail()
	for _, want := range []string{"Hebei", "CN-HE", "212", "Unhealthy", "39.300, 116.600"} {
		if !strings.Contains(d, want) {
			t.Errorf("detail missing %q:\n%s", want, d)
		}
	}

	h.CloseDetail()
	if h.Detail() != "" {
		t.Error("detail not closed")
	}
}
