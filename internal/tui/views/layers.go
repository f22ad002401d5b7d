package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/aqimap/internal/engine/aqi"
	"github.com/rendis/aqimap/internal/model"
	"github.com/rendis/aqimap/internal/tui/styles"
)

// LayerRow is one line of the layer panel.
type LayerRow struct {
	Title  string
	Status model.Status
	Busy   bool
}

// LayerPanel renders the toggle list with per-layer status.
func LayerPanel(rows []LayerRow, cursor int, spinner string) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Layers"))
	b.WriteString("\n")

	for i, r := range rows {
		prefix := "  "
		style := styles.InactiveItem
		if i == cursor {
			prefix = "> "
			style = styles.ActiveItem
		}

		check := "[ ]"
		if r.Status.Enabled {
			check = styles.Checked.Render("[x]")
		}

		state := r.Status.State.String()
		if r.Busy {
			state = spinner + " " + state
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", prefix, check, style.Render(r.Title)))
		b.WriteString(styles.Label.Render("    state") + styles.Value.Render(state) + "\n")
		b.WriteString(styles.Label.Render("    features") + styles.Value.Render(fmt.Sprintf("%d", r.Status.FeatureCount)) + "\n")
		if r.Status.Origin != model.OriginNone {
			b.WriteString(styles.Label.Render("    origin") + originStyle(r.Status.Origin).Render(string(r.Status.Origin)) + "\n")
		}
	}
	return b.String()
}

func originStyle(o model.Origin) lipgloss.Style {
	switch o {
	case model.OriginRemote:
		return lipgloss.NewStyle().Foreground(styles.Remote)
	case model.OriginFallback:
		return lipgloss.NewStyle().Foreground(styles.Fallback)
	}
	return lipgloss.NewStyle().Foreground(styles.Demo)
}

// Legend renders the shared AQI scale.
func Legend() string {
	var b strings.Builder
	b.WriteString(styles.Subtitle.Render("AQI"))
	b.WriteString("\n")
	for _, band := range aqi.Bands() {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(aqi.Hex(band.Stroke))).Render("■")
		rng := fmt.Sprintf("%.0f+", band.Min)
		if band.Index < len(aqi.Bands())-1 {
			rng = fmt.Sprintf("%.0f-%.0f", band.Min, band.Max-1)
		}
		b.WriteString(fmt.Sprintf("%s %-8s %s\n", swatch, rng, styles.InactiveItem.Render(band.Label)))
	}
	return b.String()
}
