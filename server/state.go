package server

import (
	"sync"

	"github.com/TFMV/cohortviz/interact"
	"github.com/TFMV/cohortviz/models"
	"github.com/TFMV/cohortviz/physics"
)

// NodePosition is one node's coordinates in a broadcast frame.
type NodePosition struct {
	Slug   string  `json:"slug"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Pinned bool    `json:"pinned"`
}

// State owns the live graph and its layout. Every access goes through the
// mutex so the tick loop, the WebSocket hub, and the HTTP handlers never
// race on positions.
type State struct {
	mu         sync.Mutex
	graph      *models.Graph
	layout     physics.LayoutAlgorithm
	layoutName string
}

// NewState wires a graph to a fresh layout of the named kind.
func NewState(graph *models.Graph, layoutName string) (*State, error) {
	layout, err := physics.GetLayoutAlgorithm(layoutName)
	if err != nil {
		return nil, err
	}
	layout.Initialize(graph)
	return &State{graph: graph, layout: layout, layoutName: layoutName}, nil
}

// Step advances the simulation one tick and returns the resulting positions.
// Once the layout has settled this is a cheap no-op that keeps returning the
// final frame.
func (s *State) Step() []NodePosition {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layout.Step()
	s.layout.Apply(s.graph)

	positions := make([]NodePosition, 0, len(s.graph.Contributors))
	for i := range s.graph.Contributors {
		c := &s.graph.Contributors[i]
		positions = append(positions, NodePosition{Slug: c.Slug, X: c.X, Y: c.Y, Pinned: c.Pinned})
	}
	return positions
}

// Snapshot returns a deep copy of the graph with current positions applied.
func (s *State) Snapshot() *models.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layout.Apply(s.graph)
	return s.graph.Clone()
}

// Swap replaces the live graph, as after a roster file change or an upload.
// The new graph gets a fresh layout of the same kind.
func (s *State) Swap(graph *models.Graph) error {
	layout, err := physics.GetLayoutAlgorithm(s.layoutName)
	if err != nil {
		return err
	}
	layout.Initialize(graph)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = graph
	s.layout = layout
	return nil
}

func (s *State) withPinner(fn func(interact.Pinner)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.layout.(interact.Pinner); ok {
		fn(p)
	}
}

// Pin holds a node at the given position for the duration of a drag.
func (s *State) Pin(slug string, x, y float64) {
	s.withPinner(func(p interact.Pinner) { p.Pin(slug, x, y) })
}

// MovePin drags a pinned node to follow the pointer.
func (s *State) MovePin(slug string, x, y float64) {
	s.withPinner(func(p interact.Pinner) { p.MovePin(slug, x, y) })
}

// Release returns a pinned node to simulation control.
func (s *State) Release(slug string) {
	s.withPinner(func(p interact.Pinner) { p.Release(slug) })
}

// AtRest reports whether the layout has settled.
func (s *State) AtRest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.layout.(interact.Pinner); ok {
		return p.AtRest()
	}
	return false
}

// Reheat nudges a settled layout back into motion with bounded energy.
func (s *State) Reheat() {
	s.withPinner(func(p interact.Pinner) { p.Reheat() })
}
