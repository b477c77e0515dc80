// Package tui renders the cohort graph as an interactive terminal session:
// the same simulation, selection, and search behavior as the web page,
// projected onto a character grid.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TFMV/cohortviz/cohort"
	"github.com/TFMV/cohortviz/interact"
	"github.com/TFMV/cohortviz/models"
	"github.com/TFMV/cohortviz/physics"
	"github.com/TFMV/cohortviz/search"
)

// tickInterval matches the server's frame cadence.
const tickInterval = 33 * time.Millisecond

// sideWidth is the column budget for the search box, roster list, and
// detail panel.
const sideWidth = 30

// tickMsg drives one simulation step.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the bubbletea model for the interactive session.
type Model struct {
	graph   *models.Graph
	layout  physics.LayoutAlgorithm
	control *interact.Controller

	searchIn textinput.Model
	list     viewport.Model
	result   search.Result

	width  int
	height int
	graphW int
	graphH int
	ready  bool

	selected  int
	dragSlug  string
	dragMoved bool
	quitting  bool
}

// NewModel builds a session over the given graph. The layout must support
// pinning so drags can take ownership of node positions.
func NewModel(graph *models.Graph, layoutName string) (Model, error) {
	layout, err := physics.GetLayoutAlgorithm(layoutName)
	if err != nil {
		return Model{}, err
	}
	pinnable, ok := layout.(interact.Pinner)
	if !ok {
		return Model{}, fmt.Errorf("layout %q does not support dragging", layoutName)
	}
	layout.Initialize(graph)

	input := textinput.New()
	input.Placeholder = "search name or cohort"
	input.CharLimit = 64
	input.Width = sideWidth - 6

	m := Model{
		graph:    graph,
		layout:   layout,
		control:  interact.NewController(pinnable),
		searchIn: input,
		result:   search.Apply(graph.Contributors, ""),
		selected: -1,
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), textinput.Blink)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.layout.Step()
		m.layout.Apply(m.graph)
		return m, tick()

	case tea.WindowSizeMsg:
		// A size change tears the session down and starts a fresh one,
		// the same way the page reloads on browser resize.
		m.width = msg.Width
		m.height = msg.Height
		return m.rebuildSession(), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

// rebuildSession resets every piece of per-session state: layout energy,
// selection, search, and the raster dimensions.
func (m Model) rebuildSession() Model {
	m.graphW = m.width - sideWidth - 1
	if m.graphW < 20 {
		m.graphW = 20
	}
	m.graphH = m.height - 3
	if m.graphH < 10 {
		m.graphH = 10
	}

	m.layout.Initialize(m.graph)

	pinnable, _ := m.layout.(interact.Pinner)
	m.control = interact.NewController(pinnable)

	m.searchIn.SetValue("")
	m.searchIn.Blur()
	m.result = search.Apply(m.graph.Contributors, "")

	listHeight := m.graphH - 2
	if listHeight < 3 {
		listHeight = 3
	}
	m.list = viewport.New(sideWidth, listHeight)
	m.selected = -1
	m.dragSlug = ""
	m.dragMoved = false
	m.ready = true
	m.refreshList()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchIn.Focused() {
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			// Escape clears the query and drops the filter
			m.searchIn.SetValue("")
			m.searchIn.Blur()
			m.applySearch()
			return m, nil
		case "enter":
			m.searchIn.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchIn, cmd = m.searchIn.Update(msg)
			m.applySearch()
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "/":
		return m, m.searchIn.Focus()

	case "esc":
		m.control.OutsideClick()
		m.selected = -1
		m.refreshList()

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		} else {
			m.selected = 0
		}
		m.scrollTo(m.selected)
		m.refreshList()

	case "down", "j":
		if m.selected < len(m.graph.Contributors)-1 {
			m.selected++
		}
		m.scrollTo(m.selected)
		m.refreshList()

	case "enter":
		if m.selected >= 0 && m.selected < len(m.graph.Contributors) {
			m.control.ClickEntry(m.graph.Contributors[m.selected].Slug)
			m.refreshList()
		}

	case "r":
		if p, ok := m.layout.(interact.Pinner); ok {
			p.Reheat()
		}

	case "pgup":
		m.list.HalfViewUp()

	case "pgdown":
		m.list.HalfViewDown()
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.list.LineUp(1)
			return m, nil
		case tea.MouseButtonWheelDown:
			m.list.LineDown(1)
			return m, nil
		case tea.MouseButtonLeft:
			if slug, ok := m.nodeAt(msg.X, msg.Y); ok {
				m.dragSlug = slug
				m.dragMoved = false
				// Pin where the node is, not where the coarse cell hit
				// landed; the pin only starts following on actual motion.
				if c, err := m.graph.FindBySlug(slug); err == nil {
					m.control.DragStart(slug, c.X, c.Y)
				}
				return m, nil
			}
			if idx, ok := m.entryAt(msg.X, msg.Y); ok {
				m.selected = idx
				m.control.ClickEntry(m.graph.Contributors[idx].Slug)
				m.refreshList()
				return m, nil
			}
			// Neither a node nor a list entry
			m.control.OutsideClick()
			m.selected = -1
			m.refreshList()
		}

	case tea.MouseActionMotion:
		if m.dragSlug != "" {
			m.dragMoved = true
			wx, wy := m.worldAt(msg.X, msg.Y)
			m.control.DragMove(m.dragSlug, wx, wy)
			return m, nil
		}
		if slug, ok := m.nodeAt(msg.X, msg.Y); ok {
			if slug != m.control.Hovered() {
				m.control.PointerEnter(slug)
			}
		} else if hovered := m.control.Hovered(); hovered != "" {
			m.control.PointerLeave(hovered)
		}

	case tea.MouseActionRelease:
		if m.dragSlug != "" {
			slug := m.dragSlug
			m.control.DragEnd(slug)
			if !m.dragMoved {
				m.control.ClickNode(slug)
				m.selectSlug(slug)
			}
			m.dragSlug = ""
			m.dragMoved = false
			m.refreshList()
		}
	}

	return m, nil
}

// selectSlug moves the list cursor to the given contributor.
func (m *Model) selectSlug(slug string) {
	for i := range m.graph.Contributors {
		if m.graph.Contributors[i].Slug == slug {
			m.selected = i
			m.scrollTo(i)
			return
		}
	}
}

// applySearch rescores the roster against the query, then scrolls the best
// match into view.
func (m *Model) applySearch() {
	m.result = search.Apply(m.graph.Contributors, m.searchIn.Value())
	if m.result.Best != "" {
		for i := range m.graph.Contributors {
			if m.graph.Contributors[i].Slug == m.result.Best {
				m.scrollTo(i)
				break
			}
		}
	}
	m.refreshList()
}

func (m *Model) scrollTo(idx int) {
	if idx < 0 {
		return
	}
	top := m.list.YOffset
	bottom := top + m.list.Height - 1
	if idx < top {
		m.list.SetYOffset(idx)
	} else if idx > bottom {
		m.list.SetYOffset(idx - m.list.Height + 1)
	}
}

// refreshList rebuilds the roster panel content.
func (m *Model) refreshList() {
	if !m.ready {
		return
	}

	active := m.control.ActiveEntry()
	var b strings.Builder
	for i := range m.graph.Contributors {
		c := &m.graph.Contributors[i]
		// No year badge for contributors without a graduation year.
		label := c.GraduationYear

		name := c.Name
		maxName := sideWidth - len(label) - 5
		if runes := []rune(name); maxName > 1 && len(runes) > maxName {
			name = string(runes[:maxName-1]) + "…"
		}
		line := "● " + name
		if label != "" {
			line += " " + label
		}

		style := entryStyle
		switch {
		case c.Slug == active:
			style = activeEntryStyle
		case i == m.selected:
			style = cursorEntryStyle
		case m.result.Filtering && !m.result.Matched[c.Slug]:
			style = dimEntryStyle
		case m.result.Filtering && m.result.Matched[c.Slug]:
			style = hitEntryStyle
		}
		b.WriteString(style.Render(line))
		b.WriteRune('\n')
	}
	m.list.SetContent(strings.TrimRight(b.String(), "\n"))
}

// Raster mapping between world coordinates and character cells.

func (m Model) cellFor(x, y float64) (int, int) {
	cx := int(x / m.graph.Width * float64(m.graphW-1))
	cy := int(y / m.graph.Height * float64(m.graphH-1))
	return clamp(cx, 0, m.graphW-1), clamp(cy, 0, m.graphH-1)
}

// worldAt converts a screen cell to layout coordinates.
func (m Model) worldAt(screenX, screenY int) (float64, float64) {
	cx := clamp(screenX, 0, m.graphW-1)
	cy := clamp(screenY-1, 0, m.graphH-1)
	wx := (float64(cx) + 0.5) * m.graph.Width / float64(m.graphW)
	wy := (float64(cy) + 0.5) * m.graph.Height / float64(m.graphH)
	return wx, wy
}

// nodeAt returns the contributor rendered at the given screen cell, if any.
// Later roster entries draw on top, so they win the hit test.
func (m Model) nodeAt(screenX, screenY int) (string, bool) {
	if !m.ready || screenX >= m.graphW || screenY < 1 || screenY > m.graphH {
		return "", false
	}
	cellY := screenY - 1
	for i := len(m.graph.Contributors) - 1; i >= 0; i-- {
		c := &m.graph.Contributors[i]
		cx, cy := m.cellFor(c.X, c.Y)
		if abs(cx-screenX) <= 1 && abs(cy-cellY) <= 0 {
			return c.Slug, true
		}
	}
	return "", false
}

// entryAt returns the roster index rendered at the given screen cell, if any.
func (m Model) entryAt(screenX, screenY int) (int, bool) {
	if screenX <= m.graphW {
		return 0, false
	}
	idx := screenY - 2 + m.list.YOffset
	if idx < 0 || idx >= len(m.graph.Contributors) {
		return 0, false
	}
	if screenY-2 >= m.list.Height {
		return 0, false
	}
	return idx, true
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}

	header := m.renderHeader()
	graphPanel := m.renderGraph()
	sidePanel := m.renderSide()
	body := lipgloss.JoinHorizontal(lipgloss.Top, graphPanel, " ", sidePanel)
	footer := m.renderFooter()

	return header + "\n" + body + "\n" + footer
}

func (m Model) renderHeader() string {
	groups := cohort.Groups(m.graph.Contributors)
	title := titleStyle.Render(m.graph.Name)
	stats := statsStyle.Render(fmt.Sprintf(" %d contributors · %d cohorts · %d connections",
		len(m.graph.Contributors), len(groups), len(m.graph.Edges)))
	return title + stats
}

func (m Model) renderFooter() string {
	tooltip := m.control.Tooltip()
	if tooltip.Visible && !tooltip.Detailed {
		if c, err := m.graph.FindBySlug(tooltip.Slug); err == nil {
			line := " " + c.Name
			if c.GraduationYear != "" {
				line += " · " + c.GraduationYear
			}
			return hoverStyle.Render(line + " ")
		}
	}
	return helpStyle.Render(" /: search  ↑/↓: select  enter: details  esc: dismiss  drag: pin  q: quit")
}

// renderGraph rasters edges and nodes into the character grid.
func (m Model) renderGraph() string {
	type cell struct {
		ch     rune
		color  string
		faint  bool
		marked bool
	}

	grid := make([][]cell, m.graphH)
	for y := range grid {
		grid[y] = make([]cell, m.graphW)
		for x := range grid[y] {
			grid[y][x] = cell{ch: ' '}
		}
	}

	index := make(map[string]*models.Contributor, len(m.graph.Contributors))
	for i := range m.graph.Contributors {
		index[m.graph.Contributors[i].Slug] = &m.graph.Contributors[i]
	}

	// Edges first so nodes draw over them
	for i := range m.graph.Edges {
		e := &m.graph.Edges[i]
		src, dst := index[e.Source], index[e.Target]
		if src == nil || dst == nil {
			continue
		}
		x1, y1 := m.cellFor(src.X, src.Y)
		x2, y2 := m.cellFor(dst.X, dst.Y)
		plotLine(x1, y1, x2, y2, func(x, y int) {
			if grid[y][x].ch == ' ' {
				grid[y][x] = cell{ch: '·', faint: true}
			}
		})
	}

	active := m.control.ActiveNode()
	hovered := m.control.Hovered()
	for i := range m.graph.Contributors {
		c := &m.graph.Contributors[i]
		x, y := m.cellFor(c.X, c.Y)

		glyph := '●'
		if c.Pinned {
			glyph = '◉'
		}
		faint := m.result.Filtering && !m.result.Matched[c.Slug]
		marked := c.Slug == active || c.Slug == hovered
		grid[y][x] = cell{ch: glyph, color: c.Color, faint: faint, marked: marked}
	}

	var b strings.Builder
	for y := 0; y < m.graphH; y++ {
		for x := 0; x < m.graphW; x++ {
			cl := grid[y][x]
			switch {
			case cl.ch == ' ':
				b.WriteRune(' ')
			case cl.marked:
				b.WriteString(markedNodeStyle.Render(string(cl.ch)))
			case cl.color != "":
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(cl.color))
				if cl.faint {
					style = style.Faint(true)
				}
				b.WriteString(style.Render(string(cl.ch)))
			case cl.faint:
				b.WriteString(edgeStyle.Render(string(cl.ch)))
			default:
				b.WriteRune(cl.ch)
			}
		}
		if y < m.graphH-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m Model) renderSide() string {
	var b strings.Builder
	b.WriteString(searchBoxStyle.Render(m.searchIn.View()))
	b.WriteRune('\n')
	b.WriteString(m.list.View())

	tooltip := m.control.Tooltip()
	if tooltip.Visible && tooltip.Detailed {
		if c, err := m.graph.FindBySlug(tooltip.Slug); err == nil {
			b.WriteRune('\n')
			b.WriteString(m.renderDetail(c))
		}
	}
	return b.String()
}

// renderDetail is the detailed tooltip projection: identity plus whichever
// profile links the contributor actually has.
func (m Model) renderDetail(c *models.Contributor) string {
	var lines []string
	lines = append(lines, detailNameStyle.Render(c.Name))
	if c.GraduationYear != "" {
		lines = append(lines, detailLabelStyle.Render(c.GraduationYear))
	}
	links := len(m.graph.Neighbors(c.Slug))
	size := len(m.graph.CohortOf(c.GraduationYear))
	lines = append(lines, fmt.Sprintf("%d linked, cohort of %d", links, size))
	if c.Website != "" {
		lines = append(lines, "web  "+c.Website)
	}
	if c.LinkedIn != "" {
		lines = append(lines, "in   "+c.LinkedIn)
	}
	if c.GitHub != "" {
		lines = append(lines, "gh   "+c.GitHub)
	}
	if c.Email != "" {
		lines = append(lines, "mail "+c.Email)
	}
	return detailBoxStyle.Width(sideWidth - 2).Render(strings.Join(lines, "\n"))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// plotLine walks the cells between two points using Bresenham's algorithm.
func plotLine(x1, y1, x2, y2 int, plot func(x, y int)) {
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
		plot(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			if x1 == x2 {
				return
			}
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			if y1 == y2 {
				return
			}
			err += dx
			y1 += sy
		}
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	hoverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("24"))

	edgeStyle = lipgloss.NewStyle().
			Faint(true)

	markedNodeStyle = lipgloss.NewStyle().
			Bold(true).
			Reverse(true)

	searchBoxStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	entryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	activeEntryStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("24"))

	cursorEntryStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("238"))

	dimEntryStyle = lipgloss.NewStyle().
			Faint(true)

	hitEntryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	detailNameStyle = lipgloss.NewStyle().
			Bold(true)

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)
