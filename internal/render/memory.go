package render

import "sync"

// Memory is a Surface that only keeps records. Headless runs and tests use it.
type Memory struct {
	mu       sync.RWMutex
	channels map[Channel][]Record
	writes   map[Channel]int

	color func(Record) Style
	label func(Record) string
	hover func(*Record)
	click func(Record)
}

func NewMemory() *Memory {
	return &Memory{
		channels: make(map[Channel][]Record),
		writes:   make(map[Channel]int),
	}
}

// Records returns a copy of the channel content.
func (m *Memory) Records(ch Channel) []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Record(nil), m.channels[ch]...)
}

func (m *Memory) SetRecords(ch Channel, recs []Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch] = append([]Record(nil), recs...)
	m.writes[ch]++
}

// Writes reports how many times ch was replaced.
func (m *Memory) Writes(ch Channel) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes[ch]
}

func (m *Memory) OnColor(fn func(Record) Style) { m.mu.Lock(); m.color = fn; m.mu.Unlock() }
func (m *Memory) OnLabel(fn func(Record) string) { m.mu.Lock(); m.label = fn; m.mu.Unlock() }
func (m *Memory) OnHover(fn func(*Record))       { m.mu.Lock(); m.hover = fn; m.mu.Unlock() }
func (m *Memory) OnClick(fn func(Record))        { m.mu.Lock(); m.click = fn; m.mu.Unlock() }

// Color runs the installed color callback.
func (m *Memory) Color(r Record) (Style, bool) {
	m.mu.RLock()
	fn := m.color
	m.mu.RUnlock()
	if fn == nil {
		return Style{}, false
	}
	return fn(r), true
}

// Label runs the installed label callback.
func (m *Memory) Label(r Record) (string, bool) {
	m.mu.RLock()
	fn := m.label
	m.mu.RUnlock()
	if fn == nil {
		return "", false
	}
	return fn(r), true
}

// Hover simulates the pointer entering r, or leaving when r is nil.
func (m *Memory) Hover(r *Record) {
	m.mu.RLock()
	fn := m.hover
	m.mu.RUnlock()
	if fn != nil {
		fn(r)
	}
}

// Click simulates a click on r.
func (m *Memory) Click(r Record) {
	m.mu.RLock()
	fn := m.click
	m.mu.RUnlock()
	if fn != nil {
		fn(r)
	}
}
