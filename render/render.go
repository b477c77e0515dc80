package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/TFMV/cohortviz/cohort"
	"github.com/TFMV/cohortviz/models"
	"github.com/TFMV/cohortviz/physics"
)

// Fallback colors for records that arrived without palette assignment.
const (
	fallbackNodeColor = "#4285F4"
	fallbackEdgeColor = "#666666"
)

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format       string  // Output format (svg, ascii, html, json, dot)
	Width        float64 // Width of the output
	Height       float64 // Height of the output
	Background   string  // Background color
	Timestamp    bool    // Include timestamp in visualization
	NodeSize     float64 // Default node size
	EdgeWidth    float64 // Default edge width
	FontSize     float64 // Font size for labels
	ShowLabels   bool    // Show node labels
	MinZoom      float64 // Minimum zoom factor (html)
	MaxZoom      float64 // Maximum zoom factor (html)
	Layout       string  // Layout algorithm (force, cluster, drift)
	LiveEndpoint string  // WebSocket path for live positions (html); empty embeds a static snapshot
}

// Renderer is implemented by every output backend.
type Renderer interface {
	// Render creates a visualization of the graph using the provided options
	Render(graph *models.Graph, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      800,
		Height:     600,
		Background: "#f8f8f8",
		Timestamp:  true,
		NodeSize:   12.0,
		EdgeWidth:  1.0,
		FontSize:   10.0,
		ShowLabels: true,
		MinZoom:    0.25,
		MaxZoom:    4.0,
		Layout:     "force",
	}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "ascii":
		return &ASCIIRenderer{}, nil
	case "html":
		return &HTMLRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Generate runs the layout to rest and renders the graph in the given format
func Generate(graph *models.Graph, format string) ([]byte, error) {
	options := NewDefaultOptions(format)
	options.Width = graph.Width
	options.Height = graph.Height

	return GenerateWithOptions(graph, options)
}

type renderResult struct {
	data []byte
	err  error
}

// GenerateWithOptions settles the layout and renders with specific options.
// The settle loop runs off the calling goroutine under a 30 second guard so a
// simulation that never stabilizes cannot hang the caller.
func GenerateWithOptions(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	resultChan := make(chan renderResult, 1)

	go func() {
		layout, err := physics.GetLayoutAlgorithm(options.Layout)
		if err != nil {
			resultChan <- renderResult{err: err}
			return
		}

		layout.Initialize(graph)

		maxSteps := graph.MaxIterations
		if maxSteps <= 0 {
			maxSteps = 100
		}
		for i := 0; i < maxSteps; i++ {
			if layout.Step() {
				break
			}
		}
		layout.Apply(graph)

		renderer, err := GetRenderer(options.Format)
		if err != nil {
			resultChan <- renderResult{err: err}
			return
		}

		data, err := renderer.Render(graph, options)
		resultChan <- renderResult{data: data, err: err}
	}()

	select {
	case r := <-resultChan:
		return r.data, r.err
	case <-time.After(30 * time.Second):
		return nil, fmt.Errorf("rendering timed out after 30 seconds")
	}
}

// contributorIndex maps slugs to contributors for edge endpoint lookups.
func contributorIndex(graph *models.Graph) map[string]*models.Contributor {
	index := make(map[string]*models.Contributor, len(graph.Contributors))
	for i := range graph.Contributors {
		index[graph.Contributors[i].Slug] = &graph.Contributors[i]
	}
	return index
}

// cohortColors maps each cohort label to the color of its first member.
func cohortColors(graph *models.Graph) map[string]string {
	colors := make(map[string]string)
	for i := range graph.Contributors {
		label := cohort.Key(graph.Contributors[i].GraduationYear)
		if _, ok := colors[label]; !ok {
			colors[label] = graph.Contributors[i].Color
		}
	}
	return colors
}

// SVGRenderer emits a standalone vector snapshot.
type SVGRenderer struct{}

func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

func (r *SVGRenderer) Description() string {
	return "Renders the cohort graph as Scalable Vector Graphics (SVG) for high-quality vector output"
}

// Render creates an SVG representation of the graph
func (r *SVGRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>`+"\n")
	fmt.Fprintf(&buf, `<svg width="%f" height="%f" viewBox="0 0 %f %f" xmlns="http://www.w3.org/2000/svg">`+"\n",
		options.Width, options.Height, options.Width, options.Height)
	fmt.Fprintf(&buf, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", options.Background)

	index := contributorIndex(graph)

	// Edges go underneath the nodes
	for i := range graph.Edges {
		edge := &graph.Edges[i]
		source, target := index[edge.Source], index[edge.Target]
		if source == nil || target == nil {
			continue
		}

		edgeColor := edge.Color
		if edgeColor == "" {
			edgeColor = fallbackEdgeColor
		}

		strokeWidth := options.EdgeWidth
		if edge.Weight > 0 {
			strokeWidth = math.Max(0.5, edge.Weight*options.EdgeWidth*0.5)
		}

		fmt.Fprintf(&buf, `<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="%s" stroke-width="%f"/>`+"\n",
			source.X, source.Y, target.X, target.Y, edgeColor, strokeWidth)
	}

	for i := range graph.Contributors {
		node := &graph.Contributors[i]

		nodeColor := node.Color
		if nodeColor == "" {
			nodeColor = fallbackNodeColor
		}

		radius := node.Size
		if radius <= 0 {
			radius = options.NodeSize
		}

		fmt.Fprintf(&buf, `<circle cx="%f" cy="%f" r="%f" fill="%s" stroke="rgba(0,0,0,0.3)" stroke-width="0.5"/>`+"\n",
			node.X, node.Y, radius, nodeColor)

		if options.ShowLabels && node.Name != "" {
			// Label sits just under the node's rim
			labelY := node.Y + radius + options.FontSize + 2
			fmt.Fprintf(&buf, `<text x="%f" y="%f" font-family="sans-serif" font-size="%f" fill="#333333" text-anchor="middle">%s</text>`+"\n",
				node.X, labelY, options.FontSize, escapeXML(node.Name))
		}
	}

	// Cohort legend in the top-right corner
	if options.ShowLabels {
		groups := cohort.Groups(graph.Contributors)
		colors := cohortColors(graph)
		legendX := options.Width - 120
		for i, g := range groups {
			y := 20 + float64(i)*16
			fmt.Fprintf(&buf, `<circle cx="%f" cy="%f" r="5" fill="%s"/>`+"\n", legendX, y, colors[g.Label])
			fmt.Fprintf(&buf, `<text x="%f" y="%f" font-family="sans-serif" font-size="%f" fill="#555555">%s (%d)</text>`+"\n",
				legendX+10, y+3, options.FontSize, escapeXML(g.Label), len(g.Members))
		}
	}

	if options.Timestamp {
		fmt.Fprintf(&buf, `<text x="5" y="%f" font-family="sans-serif" font-size="8" fill="#808080">%s</text>`+"\n",
			options.Height-5, time.Now().Format("2006-01-02 15:04:05"))
	}

	buf.WriteString(`</svg>`)

	return buf.Bytes(), nil
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// ASCIIRenderer plots the graph onto a bordered character grid.
type ASCIIRenderer struct{}

func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

func (r *ASCIIRenderer) Description() string {
	return "Renders the cohort graph as ASCII art for terminal or text-based output"
}

// cohortGlyphs are cycled through in cohort first-appearance order, so
// classmates share a symbol.
var cohortGlyphs = []rune{'O', '@', '#', 'X', '*', '+'}

// Render creates an ASCII representation of the graph
func (r *ASCIIRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	// Character cells are roughly twice as tall as wide
	width := max(int(options.Width/10), 40)
	height := max(int(options.Height/20), 20)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for i := 0; i < width; i++ {
		grid[0][i] = '-'
		grid[height-1][i] = '-'
	}
	for i := 0; i < height; i++ {
		grid[i][0] = '|'
		grid[i][width-1] = '|'
	}
	grid[0][0], grid[0][width-1] = '+', '+'
	grid[height-1][0], grid[height-1][width-1] = '+', '+'

	toCell := func(wx, wy float64) (int, int) {
		x := clamp(int(wx*float64(width-2)/options.Width)+1, 1, width-2)
		y := clamp(int(wy*float64(height-2)/options.Height)+1, 1, height-2)
		return x, y
	}

	index := contributorIndex(graph)

	// Edges first; node glyphs stamp over the crossings afterwards
	for i := range graph.Edges {
		edge := &graph.Edges[i]
		source, target := index[edge.Source], index[edge.Target]
		if source == nil || target == nil {
			continue
		}
		x1, y1 := toCell(source.X, source.Y)
		x2, y2 := toCell(target.X, target.Y)
		drawLine(grid, x1, y1, x2, y2)
	}

	glyphFor := make(map[string]rune)
	for i := range graph.Contributors {
		node := &graph.Contributors[i]
		label := cohort.Key(node.GraduationYear)
		if _, ok := glyphFor[label]; !ok {
			glyphFor[label] = cohortGlyphs[len(glyphFor)%len(cohortGlyphs)]
		}

		x, y := toCell(node.X, node.Y)
		grid[y][x] = glyphFor[label]

		if options.ShowLabels && node.Name != "" && y+1 < height-1 {
			stamp(grid, y+1, x, node.Name)
		}
	}

	if title := "cohortviz - " + graph.Name; len(title) < width-4 && height > 3 {
		stamp(grid, 1, 2, title)
	}
	if options.Timestamp && height > 4 {
		if ts := time.Now().Format("2006-01-02 15:04"); len(ts) < width-4 {
			stamp(grid, height-2, 2, ts)
		}
	}

	var result strings.Builder
	for _, row := range grid {
		result.WriteString(string(row))
		result.WriteRune('\n')
	}

	return []byte(result.String()), nil
}

// stamp writes text onto a grid row, truncated at the border.
func stamp(grid [][]rune, y, x int, text string) {
	width := len(grid[y])
	i := 0
	for _, r := range text {
		if x+i >= width-1 {
			break
		}
		grid[y][x+i] = r
		i++
	}
}

// JSONRenderer outputs raw JSON format
type JSONRenderer struct{}

func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

func (r *JSONRenderer) Description() string {
	return "Renders the cohort graph as JSON data for machine consumption or custom visualizations"
}

// Render creates a JSON representation of the graph. Absent optional fields
// are emitted as explicit empty strings, never omitted keys.
func (r *JSONRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	type jsonNode struct {
		Slug           string  `json:"slug"`
		Name           string  `json:"name"`
		Website        string  `json:"website"`
		LinkedIn       string  `json:"linkedIn"`
		GitHub         string  `json:"gitHub"`
		Email          string  `json:"professionalEmail"`
		GraduationYear string  `json:"graduationYear"`
		X              float64 `json:"x"`
		Y              float64 `json:"y"`
		Size           float64 `json:"size"`
		Color          string  `json:"color"`
		Pinned         bool    `json:"pinned"`
	}

	type jsonEdge struct {
		Source string  `json:"source"`
		Target string  `json:"target"`
		Cohort string  `json:"cohort"`
		Weight float64 `json:"weight"`
		Color  string  `json:"color"`
	}

	type jsonGraph struct {
		Nodes    []jsonNode     `json:"nodes"`
		Edges    []jsonEdge     `json:"edges"`
		Metadata map[string]any `json:"metadata"`
	}

	groups := cohort.Groups(graph.Contributors)
	labels := make([]string, 0, len(groups))
	for _, g := range groups {
		labels = append(labels, g.Label)
	}

	jsonData := jsonGraph{
		Nodes: make([]jsonNode, 0, len(graph.Contributors)),
		Edges: make([]jsonEdge, 0, len(graph.Edges)),
		Metadata: map[string]any{
			"name":       graph.Name,
			"width":      options.Width,
			"height":     options.Height,
			"background": options.Background,
			"timestamp":  time.Now().Format(time.RFC3339),
			"nodeCount":  len(graph.Contributors),
			"edgeCount":  len(graph.Edges),
			"cohorts":    labels,
		},
	}

	for i := range graph.Contributors {
		node := &graph.Contributors[i]
		jsonData.Nodes = append(jsonData.Nodes, jsonNode{
			Slug:           node.Slug,
			Name:           node.Name,
			Website:        node.Website,
			LinkedIn:       node.LinkedIn,
			GitHub:         node.GitHub,
			Email:          node.Email,
			GraduationYear: node.GraduationYear,
			X:              node.X,
			Y:              node.Y,
			Size:           node.Size,
			Color:          node.Color,
			Pinned:         node.Pinned,
		})
	}

	for i := range graph.Edges {
		edge := &graph.Edges[i]
		jsonData.Edges = append(jsonData.Edges, jsonEdge{
			Source: edge.Source,
			Target: edge.Target,
			Cohort: edge.Cohort,
			Weight: edge.Weight,
			Color:  edge.Color,
		})
	}

	return json.MarshalIndent(jsonData, "", "  ")
}

// DOTRenderer outputs Graphviz DOT format
type DOTRenderer struct{}

func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

func (r *DOTRenderer) Description() string {
	return "Renders the cohort graph in Graphviz DOT format, one cluster per cohort"
}

// Render creates a DOT representation of the graph. Output is deterministic:
// clusters follow cohort first-appearance order and edges are sorted.
func (r *DOTRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer

	// Cohort edges are unordered pairs, so emit an undirected graph
	buf.WriteString("graph cohorts {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=%q, size=\"%f,%f\"];\n", options.Background, options.Width/72.0, options.Height/72.0)
	fmt.Fprintf(&buf, "  node [shape=circle, fontname=\"Arial\", fontsize=%f];\n", options.FontSize)
	fmt.Fprintf(&buf, "  edge [fontname=\"Arial\", fontsize=%f];\n", options.FontSize*0.8)

	index := contributorIndex(graph)
	colors := cohortColors(graph)

	for i, g := range cohort.Groups(graph.Contributors) {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", g.Label)
		fmt.Fprintf(&buf, "    color=%q;\n", colors[g.Label])

		for _, slug := range g.Members {
			node := index[slug]
			if node == nil {
				continue
			}

			color := node.Color
			if color == "" {
				color = fallbackNodeColor
			}
			size := node.Size
			if size <= 0 {
				size = options.NodeSize
			}
			label := node.Name
			if label == "" {
				label = node.Slug
			}

			fmt.Fprintf(&buf, "    %q [label=%q, color=%q, width=%f, pos=\"%f,%f!\"];\n",
				node.Slug, label, color, size/20.0, node.X/100.0, node.Y/100.0)
		}
		buf.WriteString("  }\n")
	}

	// Sort edges for stable output
	edges := make([]*models.Edge, 0, len(graph.Edges))
	for i := range graph.Edges {
		edges = append(edges, &graph.Edges[i])
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Key() < edges[j].Key() })

	for _, edge := range edges {
		color := edge.Color
		if color == "" {
			color = fallbackEdgeColor
		}
		weight := edge.Weight
		if weight <= 0 {
			weight = 1.0
		}

		fmt.Fprintf(&buf, "  %q -- %q [color=%q, weight=%f];\n", edge.Source, edge.Target, color, weight)
	}

	buf.WriteString("}\n")

	return buf.Bytes(), nil
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// drawLine traces a Bresenham segment of midpoint dots across the grid.
func drawLine(grid [][]rune, x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if x1 >= 0 && x1 < len(grid[0]) && y1 >= 0 && y1 < len(grid) {
			grid[y1][x1] = '·'
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 >= dy {
			if x1 == x2 {
				break
			}
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			if y1 == y2 {
				break
			}
			err += dx
			y1 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
