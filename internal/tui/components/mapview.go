package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/rendis/aqimap/internal/engine/aqi"
	"github.com/rendis/aqimap/internal/render"
	"github.com/rendis/aqimap/internal/tui/styles"
)

// MapView is a render.Surface that draws polygon outlines and centroid dots
// with Braille characters. It is shared by pointer between the bubbletea
// model copies and the compositor, so all state sits behind mu.
type MapView struct {
	mu       sync.RWMutex
	channels map[render.Channel][]render.Record

	color func(render.Record) render.Style
	label func(render.Record) string
	hover func(*render.Record)
	click func(render.Record)

	width    int
	height   int
	selected int // index into the Points channel, -1 if none

	// Viewport bounds
	minLat, maxLat float64
	minLng, maxLng float64
	// Base bounds (for zoom reference)
	basMinLat, basMaxLat float64
	basMinLng, basMaxLng float64
	zoomLevel            float64 // 1.0 = no zoom, >1 = zoomed in
	panLat, panLng       float64 // pan offset in degrees
}

func NewMapView(width, height int) *MapView {
	return &MapView{
		channels:  make(map[render.Channel][]render.Record),
		width:     width,
		height:    height,
		selected:  -1,
		zoomLevel: 1.0,
	}
}

// render.Surface

func (m *MapView) Records(ch render.Channel) []render.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]render.Record(nil), m.channels[ch]...)
}

func (m *MapView) SetRecords(ch render.Channel, recs []render.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch] = append([]render.Record(nil), recs...)
	if ch == render.Points && m.selected >= len(recs) {
		m.selected = -1
	}
}

func (m *MapView) OnColor(fn func(render.Record) render.Style) { m.mu.Lock(); m.color = fn; m.mu.Unlock() }
func (m *MapView) OnLabel(fn func(render.Record) string)       { m.mu.Lock(); m.label = fn; m.mu.Unlock() }
func (m *MapView) OnHover(fn func(*render.Record))             { m.mu.Lock(); m.hover = fn; m.mu.Unlock() }
func (m *MapView) OnClick(fn func(render.Record))              { m.mu.Lock(); m.click = fn; m.mu.Unlock() }

// Viewport

func (m *MapView) SetSize(width, height int) {
	m.mu.Lock()
	m.width = width
	m.height = height
	m.mu.Unlock()
}

func (m *MapView) SetBounds(b orb.Bound) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.basMinLat = b.Min.Lat()
	m.basMaxLat = b.Max.Lat()
	m.basMinLng = b.Min.Lon()
	m.basMaxLng = b.Max.Lon()
	m.applyZoom()
}

func (m *MapView) ZoomIn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zoomLevel *= 1.5
	if m.zoomLevel > 20 {
		m.zoomLevel = 20
	}
	m.applyZoom()
}

func (m *MapView) ZoomOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zoomLevel /= 1.5
	if m.zoomLevel < 0.5 {
		m.zoomLevel = 0.5
	}
	m.applyZoom()
}

func (m *MapView) ZoomReset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zoomLevel = 1.0
	m.panLat = 0
	m.panLng = 0
	m.applyZoom()
}

func (m *MapView) Pan(dLat, dLng float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latRange := m.basMaxLat - m.basMinLat
	lngRange := m.basMaxLng - m.basMinLng
	m.panLat += dLat * latRange * 0.1 / m.zoomLevel
	m.panLng += dLng * lngRange * 0.1 / m.zoomLevel
	m.applyZoom()
}

// applyZoom recomputes the viewport. Caller holds m.mu.
func (m *MapView) applyZoom() {
	centerLat := (m.basMinLat+m.basMaxLat)/2 + m.panLat
	centerLng := (m.basMinLng+m.basMaxLng)/2 + m.panLng
	halfLat := (m.basMaxLat - m.basMinLat) / 2 / m.zoomLevel
	halfLng := (m.basMaxLng - m.basMinLng) / 2 / m.zoomLevel
	m.minLat = centerLat - halfLat
	m.maxLat = centerLat + halfLat
	m.minLng = centerLng - halfLng
	m.maxLng = centerLng + halfLng
}

// Interaction

// SelectNext moves the selection through the Points channel and fires the
// hover callback for the new selection.
func (m *MapView) SelectNext(step int) {
	m.mu.Lock()
	n := len(m.channels[render.Points])
	if n == 0 {
		m.selected = -1
	} else {
		m.selected = ((m.selected+step)%n + n) % n
	}
	rec, hover := m.selectedLocked(), m.hover
	m.mu.Unlock()

	if hover != nil {
		hover(rec)
	}
}

// ClearSelection drops the selection and fires hover(nil).
func (m *MapView) ClearSelection() {
	m.mu.Lock()
	m.selected = -1
	hover := m.hover
	m.mu.Unlock()
	if hover != nil {
		hover(nil)
	}
}

// ClickSelected fires the click callback for the selected record.
func (m *MapView) ClickSelected() {
	m.mu.RLock()
	rec, click := m.selectedLocked(), m.click
	m.mu.RUnlock()
	if rec != nil && click != nil {
		click(*rec)
	}
}

// HoverAt fires the hover callback for the polygon under a cell of the map,
// or nil when the cell is outside every polygon.
func (m *MapView) HoverAt(col, row int) {
	m.mu.RLock()
	rec, hover := m.polygonAtLocked(col, row), m.hover
	m.mu.RUnlock()
	if hover != nil {
		hover(rec)
	}
}

func (m *MapView) selectedLocked() *render.Record {
	pts := m.channels[render.Points]
	if m.selected < 0 || m.selected >= len(pts) {
		return nil
	}
	r := pts[m.selected]
	return &r
}

func (m *MapView) polygonAtLocked(col, row int) *render.Record {
	if m.width <= 0 || m.height <= 0 {
		return nil
	}
	lng := m.minLng + (float64(col)+0.5)/float64(m.width)*(m.maxLng-m.minLng)
	lat := m.maxLat - (float64(row)+0.5)/float64(m.height)*(m.maxLat-m.minLat)
	pt := orb.Point{lng, lat}

	polys := m.channels[render.Polygons]
	// Last drawn wins, matching what is visible on top.
	for i := len(polys) - 1; i >= 0; i-- {
		if len(polys[i].Ring) > 0 && planar.RingContains(polys[i].Ring, pt) {
			r := polys[i]
			return &r
		}
	}
	return nil
}

// Braille character encoding:
// Each braille char is a 2x4 dot grid.
// Dot positions:  0 3
//
//	1 4
//	2 5
//	6 7
//
// Unicode: 0x2800 + sum of raised dot bits
var brailleDots = [8]rune{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

var dotPositions = [8][2]int{
	{0, 0}, {1, 0}, {2, 0}, {0, 1},
	{1, 1}, {2, 1}, {3, 0}, {3, 1},
}

func (m *MapView) View() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	cols := m.width
	rows := m.height
	dotW := cols * 2
	dotH := rows * 4

	latRange := m.maxLat - m.minLat
	lngRange := m.maxLng - m.minLng
	if latRange == 0 || lngRange == 0 {
		return strings.Repeat(strings.Repeat(" ", cols)+"\n", rows)
	}

	toDot := func(p orb.Point) (int, int) {
		x := int((p.Lon() - m.minLng) / lngRange * float64(dotW-1))
		y := int((m.maxLat - p.Lat()) / latRange * float64(dotH-1))
		return x, y
	}

	// Per-dot stroke color of the outline drawn last; "" means empty.
	strokes := make([][]string, dotH)
	points := make([][]bool, dotH)
	for i := range strokes {
		strokes[i] = make([]string, dotW)
		points[i] = make([]bool, dotW)
	}

	for _, rec := range m.channels[render.Polygons] {
		stroke := string(styles.Secondary)
		if m.color != nil {
			stroke = aqi.Hex(m.color(rec).Stroke)
		}
		for i := 0; i+1 < len(rec.Ring); i++ {
			x0, y0 := toDot(rec.Ring[i])
			x1, y1 := toDot(rec.Ring[i+1])
			drawLine(strokes, stroke, x0, y0, x1, y1, dotW, dotH)
		}
	}

	selID := ""
	if sel := m.selectedLocked(); sel != nil {
		selID = sel.ID
	}
	selX, selY := -1, -1
	for _, rec := range m.channels[render.Points] {
		x, y := toDot(rec.Position)
		if x >= 0 && x < dotW && y >= 0 && y < dotH {
			points[y][x] = true
			if rec.ID == selID {
				selX, selY = x/2, y/4
			}
		}
	}

	pointStyle := lipgloss.NewStyle().Foreground(styles.Text)
	selStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	strokeStyles := make(map[string]lipgloss.Style)

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			var lineVal rune = 0x2800
			var pointVal rune = 0x2800
			color := ""

			for dot := 0; dot < 8; dot++ {
				dy := row*4 + dotPositions[dot][0]
				dx := col*2 + dotPositions[dot][1]
				if dy < dotH && dx < dotW {
					if s := strokes[dy][dx]; s != "" {
						lineVal |= brailleDots[dot]
						color = s
					}
					if points[dy][dx] {
						pointVal |= brailleDots[dot]
					}
				}
			}

			switch {
			case col == selX && row == selY:
				sb.WriteString(selStyle.Render("◉"))
			case pointVal != 0x2800:
				sb.WriteString(pointStyle.Render(string(pointVal | lineVal)))
			case lineVal != 0x2800:
				st, ok := strokeStyles[color]
				if !ok {
					st = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
					strokeStyles[color] = st
				}
				sb.WriteString(st.Render(string(lineVal)))
			default:
				sb.WriteRune(' ')
			}
		}
		if row < rows-1 {
			sb.WriteRune('\n')
		}
	}

	return sb.String()
}

// SelectedLabel renders the selected record through the label callback.
func (m *MapView) SelectedLabel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec := m.selectedLocked()
	if rec == nil {
		return ""
	}
	if m.label == nil {
		return rec.Text
	}
	return m.label(*rec)
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(grid [][]string, color string, x0, y0, x1, y1, maxW, maxH int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= 0 && x0 < maxW && y0 >= 0 && y0 < maxH {
			grid[y0][x0] = color
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

