package layer

import (
	"context"
	"sync"

	"github.com/rendis/aqimap/internal/model"
)

// Set keeps a host's layers in a fixed display order.
type Set struct {
	order  []*Layer
	byKind map[model.Kind]*Layer
}

func NewSet(layers ...*Layer) *Set {
	s := &Set{byKind: make(map[model.Kind]*Layer, len(layers))}
	for _, l := range layers {
		s.order = append(s.order, l)
		s.byKind[l.Kind()] = l
	}
	return s
}

func (s *Set) Get(kind model.Kind) (*Layer, bool) {
	l, ok := s.byKind[kind]
	return l, ok
}

// All returns the layers in display order.
func (s *Set) All() []*Layer {
	return append([]*Layer(nil), s.order...)
}

// EnableAll enables every layer concurrently and waits for all of them.
func (s *Set) EnableAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, l := range s.order {
		wg.Add(1)
		go func(l *Layer) {
			defer wg.Done()
			l.Enable(ctx)
		}(l)
	}
	wg.Wait()
}

// Statuses returns one status per layer in display order.
func (s *Set) Statuses() []model.Status {
	out := make([]model.Status, 0, len(s.order))
	for _, l := range s.order {
		out = append(out, l.Status())
	}
	return out
}
