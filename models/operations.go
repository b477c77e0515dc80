package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewContributor creates a contributor with default visual attributes. The
// caller supplies the derived slug and the ordinal position in the roster.
func NewContributor(slug, name string, ordinal int) *Contributor {
	return &Contributor{
		Slug:    slug,
		Name:    name,
		Ordinal: ordinal,
		Size:    12.0,
		Color:   "#808080",
	}
}

// NewEdge creates an undirected edge between two contributor slugs with a
// unique ID.
func NewEdge(source, target, cohort string, weight float64) *Edge {
	return &Edge{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
		Cohort: cohort,
		Weight: weight,
		Color:  "#666666",
	}
}

// NewGraph creates an empty graph with a unique ID, timestamps, and default
// simulation parameters.
func NewGraph(name string) *Graph {
	now := time.Now()
	return &Graph{
		ID:                     uuid.New().String(),
		Name:                   name,
		Contributors:           []Contributor{},
		Edges:                  []Edge{},
		Width:                  800,
		Height:                 600,
		Forces:                 DefaultForces(),
		MaxIterations:          500,
		StabilizationThreshold: 0.0005,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// SetPosition sets the position of a contributor.
func (c *Contributor) SetPosition(x, y float64) {
	c.X = x
	c.Y = y
}

// AddContributor appends a contributor to the graph.
func (g *Graph) AddContributor(c *Contributor) {
	g.Contributors = append(g.Contributors, *c)
	g.UpdatedAt = time.Now()
}

// AddEdge appends an edge to the graph. Both endpoints must already exist.
func (g *Graph) AddEdge(e *Edge) error {
	sourceExists, targetExists := false, false
	for i := range g.Contributors {
		if g.Contributors[i].Slug == e.Source {
			sourceExists = true
		}
		if g.Contributors[i].Slug == e.Target {
			targetExists = true
		}
		if sourceExists && targetExists {
			break
		}
	}

	if !sourceExists {
		return fmt.Errorf("source contributor %q does not exist in the graph", e.Source)
	}
	if !targetExists {
		return fmt.Errorf("target contributor %q does not exist in the graph", e.Target)
	}

	g.Edges = append(g.Edges, *e)
	g.UpdatedAt = time.Now()
	return nil
}

// SetDimensions sets the viewport width and height of the graph.
func (g *Graph) SetDimensions(width, height float64) {
	g.Width = width
	g.Height = height
	g.UpdatedAt = time.Now()
}

// Clone returns a deep copy of the graph. Handlers use this to read a
// consistent snapshot while the layout loop keeps mutating positions.
func (g *Graph) Clone() *Graph {
	out := *g
	out.Contributors = make([]Contributor, len(g.Contributors))
	copy(out.Contributors, g.Contributors)
	out.Edges = make([]Edge, len(g.Edges))
	copy(out.Edges, g.Edges)
	return &out
}
