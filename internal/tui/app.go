package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/aqimap/internal/engine/layer"
	"github.com/rendis/aqimap/internal/model"
	"github.com/rendis/aqimap/internal/tui/components"
	"github.com/rendis/aqimap/internal/tui/styles"
	"github.com/rendis/aqimap/internal/tui/views"
)

const panelWidth = 34

// Map cell (0,0) sits inside the one-cell frame border.
const (
	mapOffsetX = 1
	mapOffsetY = 1
)

type layerOp int

const (
	opToggle layerOp = iota
	opEnable
	opReset
)

type layerOpDoneMsg struct {
	kind model.Kind
}

// App is the root bubbletea model: map surface on the left, layer panel and
// legend on the right.
type App struct {
	ctx     context.Context
	layers  *layer.Set
	mapView *components.MapView
	host    *Host
	spinner spinner.Model
	busy    map[model.Kind]int
	cursor  int
	width   int
	height  int
	// enableOnStart enables every layer from Init.
	enableOnStart bool
}

func NewApp(ctx context.Context, layers *layer.Set, mapView *components.MapView, host *Host, enableOnStart bool) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Secondary)
	return App{
		ctx:           ctx,
		layers:        layers,
		mapView:       mapView,
		host:          host,
		spinner:       sp,
		busy:          make(map[model.Kind]int),
		enableOnStart: enableOnStart,
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick}
	if a.enableOnStart {
		for _, l := range a.layers.All() {
			a.busy[l.Kind()]++
			cmds = append(cmds, a.run(l, opEnable))
		}
	}
	return tea.Batch(cmds...)
}

// run executes a blocking layer operation off the UI loop.
func (a App) run(l *layer.Layer, op layerOp) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		switch op {
		case opToggle:
			l.Toggle(ctx)
		case opEnable:
			l.Enable(ctx)
		case opReset:
			l.ForceReset(ctx)
		}
		return layerOpDoneMsg{kind: l.Kind()}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mapView.SetSize(a.mapWidth(), a.mapHeight())
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case layerOpDoneMsg:
		if a.busy[msg.kind] > 0 {
			a.busy[msg.kind]--
		}
		return a, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion {
			a.mapView.HoverAt(msg.X-mapOffsetX, msg.Y-mapOffsetY)
		}
		return a, nil

	case tea.KeyMsg:
		layers := a.layers.All()
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "up", "k":
			if a.cursor > 0 {
				a.cursor--
			}
		case "down", "j":
			if a.cursor < len(layers)-1 {
				a.cursor++
			}
		case " ", "enter":
			if a.cursor < len(layers) {
				l := layers[a.cursor]
				a.busy[l.Kind()]++
				return a, a.run(l, opToggle)
			}
		case "r":
			if a.cursor < len(layers) {
				l := layers[a.cursor]
				a.busy[l.Kind()]++
				return a, a.run(l, opReset)
			}
		case "E":
			var cmds []tea.Cmd
			for _, l := range layers {
				a.busy[l.Kind()]++
				cmds = append(cmds, a.run(l, opEnable))
			}
			return a, tea.Batch(cmds...)
		case "tab":
			a.mapView.SelectNext(1)
		case "shift+tab":
			a.mapView.SelectNext(-1)
		case "c":
			a.mapView.ClickSelected()
		case "esc":
			a.mapView.ClearSelection()
			a.host.CloseDetail()
		case "+", "=":
			a.mapView.ZoomIn()
		case "-":
			a.mapView.ZoomOut()
		case "0":
			a.mapView.ZoomReset()
		case "w":
			a.mapView.Pan(1, 0)
		case "s":
			a.mapView.Pan(-1, 0)
		case "a":
			a.mapView.Pan(0, -1)
		case "d":
			a.mapView.Pan(0, 1)
		}
	}
	return a, nil
}

func (a App) mapWidth() int {
	w := a.width - panelWidth - 6
	if w < 10 {
		w = 10
	}
	return w
}

func (a App) mapHeight() int {
	h := a.height - 4
	if h < 5 {
		h = 5
	}
	return h
}

func (a App) View() string {
	var rows []views.LayerRow
	for _, l := range a.layers.All() {
		rows = append(rows, views.LayerRow{
			Title:  l.Title(),
			Status: l.Status(),
			Busy:   a.busy[l.Kind()] > 0,
		})
	}

	side := views.LayerPanel(rows, a.cursor, a.spinner.View()) + "\n" + views.Legend()
	if d := a.host.Detail(); d != "" {
		side += "\n" + styles.DetailCard.Render(d)
	}
	panel := lipgloss.NewStyle().Width(panelWidth).Render(side)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.MapFrame.Render(a.mapView.View()),
		" ",
		panel,
	)

	tip := a.host.Tip()
	if tip == "" {
		tip = a.mapView.SelectedLabel()
	}
	status := styles.StatusBar.Render("↑↓ layer • space toggle • r reset • E enable all • tab region • c open • +/- zoom • wasd pan • q quit")
	if tip != "" {
		status = styles.Tooltip.Render(tip) + "\n" + status
	}
	return body + "\n" + status
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, layers *layer.Set, mapView *components.MapView, host *Host, enableOnStart bool) error {
	p := tea.NewProgram(
		NewApp(ctx, layers, mapView, host, enableOnStart),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
