package ingest

import (
	"fmt"

	"github.com/TFMV/cohortviz/cohort"
	"github.com/TFMV/cohortviz/models"
)

// Node size bounds: base size grows by one per connection, clamped so hub
// nodes never dwarf the rest of the graph.
const (
	baseNodeSize = 12.0
	minNodeSize  = 8.0
	maxNodeSize  = 24.0
)

// BuildGraph normalizes roster records into contributors, synthesizes cohort
// ring edges, then styles nodes and edges from the palette. Each cohort gets
// the next node color in first-appearance order, so a cohort reads as one hue
// across the graph and the list view.
func BuildGraph(name string, records []PersonRecord, palette *Palette) (*models.Graph, error) {
	if palette == nil {
		palette = DefaultPalette()
	}

	contributors, err := Normalize(records)
	if err != nil {
		return nil, err
	}

	graph := models.NewGraph(name)
	graph.SetDimensions(1200, 900)

	colorFor := make(map[string]string)
	for i := range contributors {
		label := cohort.Key(contributors[i].GraduationYear)
		if _, ok := colorFor[label]; !ok {
			colorFor[label] = palette.NodeColors[len(colorFor)%len(palette.NodeColors)]
		}
		contributors[i].Color = colorFor[label]
	}

	edges := cohort.Build(contributors)

	degree := make(map[string]int)
	for i := range edges {
		degree[edges[i].Source]++
		degree[edges[i].Target]++
	}
	for i := range contributors {
		size := baseNodeSize + float64(degree[contributors[i].Slug])
		contributors[i].Size = min(max(size, minNodeSize), maxNodeSize)
		graph.AddContributor(&contributors[i])
	}

	for i := range edges {
		edge := edges[i]
		edge.Color = palette.EdgeColors[i%len(palette.EdgeColors)]
		if err := graph.AddEdge(&edge); err != nil {
			return nil, fmt.Errorf("error wiring cohort edges: %w", err)
		}
	}

	return graph, nil
}
