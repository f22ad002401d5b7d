package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"github.com/rendis/aqimap/internal/engine/compositor"
	"github.com/rendis/aqimap/internal/engine/layer"
	"github.com/rendis/aqimap/internal/engine/source"
	"github.com/rendis/aqimap/internal/model"
	"github.com/rendis/aqimap/internal/render"
	"github.com/rendis/aqimap/internal/tui/components"
)

func newTestApp(t *testing.T) (App, *compositor.Compositor) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	mapView := components.NewMapView(40, 12)
	host := NewHost()
	comp := compositor.New(mapView, host, logger)
	src := source.New(source.NewClientWith(nil), nil, logger)

	provinces, states := layer.Provinces(), layer.States()
	provinces.Providers, states.Providers = nil, nil
	deps := layer.Deps{Source: src, Compositor: comp, Logger: logger}
	set := layer.NewSet(layer.New(provinces, deps), layer.New(states, deps))

	mapView.SetBounds(provinces.Bounds.Union(states.Bounds))
	return NewApp(context.Background(), set, mapView, host, false), comp
}

func press(t *testing.T, a App, key tea.KeyMsg) App {
	t.Helper()
	m, cmd := a.Update(key)
	return drain(m.(App), cmd)
}

// drain runs cmd synchronously, feeding layer results back into the model.
// Spinner ticks are dropped.
func drain(a App, cmd tea.Cmd) App {
	if cmd == nil {
		return a
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			a = drain(a, c)
		}
	case layerOpDoneMsg:
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func TestAppToggleAndSelect(t *testing.T) {
	a, comp := newTestApp(t)

	// Cursor starts on the province layer.
	a = press(t, a, tea.KeyMsg{Type: tea.KeySpace})
	if n := comp.Count(render.Polygons, model.KindProvince); n == 0 {
		t.Fatal("space did not enable the province layer")
	}
	if a.busy[model.KindProvince] != 0 {
		t.Errorf("busy counter = %d after the op finished", a.busy[model.KindProvince])
	}

	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	if a.host.Tip() == "" {
		t.Error("tab did not produce a tooltip")
	}
	a = press(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if a.host.Detail() == "" {
		t.Error("c did not open the detail card")
	}
	a = press(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.host.Detail() != "" || a.host.Tip() != "" {
		t.Error("esc did not clear the selection")
	}

	a = press(t, a, tea.KeyMsg{Type: tea.KeyDown})
	a = press(t, a, tea.KeyMsg{Type: tea.KeySpace})
	if comp.Count(render.Polygons, model.KindState) == 0 {
		t.Error("state layer not enabled")
	}

	a = press(t, a, tea.KeyMsg{Type: tea.KeyUp})
	a = press(t, a, tea.KeyMsg{Type: tea.KeySpace})
	if comp.Count(render.Polygons, model.KindProvince) != 0 {
		t.Error("second toggle left province records")
	}
	if comp.Count(render.Polygons, model.KindState) == 0 {
		t.Error("disabling provinces removed state records")
	}
}

func TestAppView(t *testing.T) {
	a, _ := newTestApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a = m.(App)
	a = press(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'E'}})

	if a.layers.Statuses()[1].FeatureCount == 0 {
		t.Fatal("E did not load the state layer")
	}

	out := a.View()
	for _, want := range []string{"Layers", "Province", "State", "AQI", "Very-Unhealthy"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
