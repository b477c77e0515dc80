package physics

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/TFMV/cohortviz/cohort"
	"github.com/TFMV/cohortviz/models"
)

// LayoutAlgorithm defines an interface for layout algorithms
type LayoutAlgorithm interface {
	Initialize(graph *models.Graph)
	Step() bool // true once the layout has settled
	Apply(graph *models.Graph)
	GetName() string
}

// pinner is satisfied by layouts that support drag ownership of node
// positions. Wrapper layouts delegate to their force-directed base.
type pinner interface {
	Pin(slug string, x, y float64)
	MovePin(slug string, x, y float64)
	Release(slug string)
	AtRest() bool
	Reheat()
}

// ForceDirectedLayout implements a Fruchterman-Reingold force-directed layout
// over contributor nodes. Positions are owned by the layout except while a
// node is pinned by a drag, during which Pin/MovePin hold it in place and the
// rest of the graph keeps reacting to it.
type ForceDirectedLayout struct {
	width           float64
	height          float64
	positions       map[string]position
	velocities      map[string]velocity
	forces          map[string]force
	radii           map[string]float64
	pinned          map[string]bool
	order           []string // slugs in sorted order for deterministic passes
	links           []link   // combined edge weight per pair, sorted
	temperature     float64
	k               float64 // ideal pair separation
	iterations      int
	maxIterations   int
	stable          bool
	energyThreshold float64
	mu              sync.Mutex
	linkDistance    float64
	springConstant  float64
	repulsionForce  float64
	gravity         float64
	dampingFactor   float64
	collisionPad    float64
}

// Force vector components
type force struct {
	fx, fy float64
}

// Position coordinates
type position struct {
	x, y float64
}

// Velocity vector components
type velocity struct {
	vx, vy float64
}

// A link is one attraction pair with the combined weight of every edge
// between the two slugs.
type link struct {
	a, b   string
	weight float64
}

// Reheat bounds: a nudge raises the temperature back to reheatTemperature and
// grants at most reheatBudget further iterations, so added energy always
// decays back to rest.
const (
	reheatTemperature = 0.3
	reheatBudget      = 150
)

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout() *ForceDirectedLayout {
	defaults := models.DefaultForces()
	return &ForceDirectedLayout{
		width:           800,
		height:          600,
		positions:       make(map[string]position),
		velocities:      make(map[string]velocity),
		forces:          make(map[string]force),
		radii:           make(map[string]float64),
		pinned:          make(map[string]bool),
		temperature:     1.0,
		maxIterations:   500,
		energyThreshold: 0.0005,
		linkDistance:    defaults.LinkDistance,
		springConstant:  defaults.SpringConstant,
		repulsionForce:  defaults.Repulsion,
		gravity:         defaults.Gravity,
		dampingFactor:   defaults.Damping,
		collisionPad:    defaults.CollisionPad,
	}
}

// GetName returns the name of the layout algorithm
func (fd *ForceDirectedLayout) GetName() string {
	return "Force-Directed Layout"
}

// Initialize sets up the layout algorithm
func (fd *ForceDirectedLayout) Initialize(graph *models.Graph) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	fd.width = graph.Width
	fd.height = graph.Height
	fd.maxIterations = graph.MaxIterations
	fd.energyThreshold = graph.StabilizationThreshold

	params := graph.Forces
	if params == (models.Forces{}) {
		params = models.DefaultForces()
	}
	fd.linkDistance = params.LinkDistance
	fd.springConstant = params.SpringConstant
	fd.repulsionForce = params.Repulsion
	fd.gravity = params.Gravity
	fd.dampingFactor = params.Damping
	fd.collisionPad = params.CollisionPad

	fd.temperature = 1.0
	fd.iterations = 0
	fd.stable = false
	// A rebuilt layout starts with no drags in flight; stale pins from a
	// previous session would leave nodes frozen with nothing to release them.
	fd.pinned = make(map[string]bool)

	// Optimal distance between nodes, based on the display area and node count.
	area := fd.width * fd.height
	nodeCount := math.Max(1, float64(len(graph.Contributors)))
	fd.k = math.Sqrt(area / nodeCount)

	// Seed positions inside the central half of the viewport so the layout
	// starts spread out instead of stacked on one point. Nodes that already
	// carry coordinates keep them.
	fd.positions = make(map[string]position, len(graph.Contributors))
	fd.velocities = make(map[string]velocity, len(graph.Contributors))
	fd.forces = make(map[string]force, len(graph.Contributors))
	fd.radii = make(map[string]float64, len(graph.Contributors))
	fd.order = make([]string, 0, len(graph.Contributors))
	for i := range graph.Contributors {
		node := &graph.Contributors[i]
		if node.X == 0 && node.Y == 0 {
			fd.positions[node.Slug] = position{
				x: fd.width/4 + fastRand()*fd.width/2,
				y: fd.height/4 + fastRand()*fd.height/2,
			}
		} else {
			fd.positions[node.Slug] = position{x: node.X, y: node.Y}
		}

		fd.velocities[node.Slug] = velocity{}
		fd.forces[node.Slug] = force{}
		fd.radii[node.Slug] = node.Size
		fd.order = append(fd.order, node.Slug)
	}
	sort.Strings(fd.order)

	// Cache combined edge weight per pair for the attraction pass. Parallel
	// edges between the same pair simply add up, and the flattened list is
	// sorted so force accumulation order never varies between runs.
	weights := make(map[[2]string]float64)
	for i := range graph.Edges {
		edge := &graph.Edges[i]
		a, b := edge.Source, edge.Target
		if a > b {
			a, b = b, a
		}
		if _, ok := fd.positions[a]; !ok {
			continue
		}
		if _, ok := fd.positions[b]; !ok {
			continue
		}
		weights[[2]string{a, b}] += edge.Weight
	}
	fd.links = make([]link, 0, len(weights))
	for pair, weight := range weights {
		fd.links = append(fd.links, link{a: pair[0], b: pair[1], weight: weight})
	}
	sort.Slice(fd.links, func(i, j int) bool {
		if fd.links[i].a != fd.links[j].a {
			return fd.links[i].a < fd.links[j].a
		}
		return fd.links[i].b < fd.links[j].b
	})
}

// Step performs one iteration of the layout algorithm
func (fd *ForceDirectedLayout) Step() bool {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.iterations >= fd.maxIterations || fd.stable {
		return true
	}
	if len(fd.positions) == 0 {
		fd.stable = true
		return true
	}

	// Reset forces
	for slug := range fd.forces {
		fd.forces[slug] = force{}
	}

	// Repulsion between every pair, plus gravity toward the viewport center.
	slugs := fd.order
	centerX := fd.width / 2
	centerY := fd.height / 2
	for i, slug1 := range slugs {
		pos1 := fd.positions[slug1]

		dx := centerX - pos1.x
		dy := centerY - pos1.y
		distance := math.Max(0.1, math.Sqrt(dx*dx+dy*dy))

		// Gravity strengthens with distance so strays drift back
		gravityFactor := fd.gravity * (distance / math.Min(fd.width, fd.height))

		fd.forces[slug1] = force{
			fx: fd.forces[slug1].fx + dx*gravityFactor,
			fy: fd.forces[slug1].fy + dy*gravityFactor,
		}

		for j := i + 1; j < len(slugs); j++ {
			slug2 := slugs[j]
			pos2 := fd.positions[slug2]

			dx := pos1.x - pos2.x
			dy := pos1.y - pos2.y
			distance := math.Max(0.1, math.Sqrt(dx*dx+dy*dy))

			// F = k^2 / distance
			repulsiveForce := (fd.k * fd.k / distance) * fd.repulsionForce / 100.0

			dx /= distance
			dy /= distance

			fd.forces[slug1] = force{
				fx: fd.forces[slug1].fx + dx*repulsiveForce,
				fy: fd.forces[slug1].fy + dy*repulsiveForce,
			}
			fd.forces[slug2] = force{
				fx: fd.forces[slug2].fx - dx*repulsiveForce,
				fy: fd.forces[slug2].fy - dy*repulsiveForce,
			}

			// Collision: overlapping nodes get an extra separating shove
			// proportional to the overlap.
			minDist := fd.radii[slug1] + fd.radii[slug2] + fd.collisionPad
			if distance < minDist {
				push := (minDist - distance) / 2
				fd.forces[slug1] = force{
					fx: fd.forces[slug1].fx + dx*push,
					fy: fd.forces[slug1].fy + dy*push,
				}
				fd.forces[slug2] = force{
					fx: fd.forces[slug2].fx - dx*push,
					fy: fd.forces[slug2].fy - dy*push,
				}
			}
		}
	}

	// Attraction along edges: connected nodes pull toward the configured
	// link distance, weighted edges pulling harder.
	for _, l := range fd.links {
		pos1 := fd.positions[l.a]
		pos2 := fd.positions[l.b]

		dx := pos2.x - pos1.x
		dy := pos2.y - pos1.y
		distance := math.Max(0.1, math.Sqrt(dx*dx+dy*dy))

		// F = distance^2 / linkDistance
		attractiveForce := distance * distance / fd.linkDistance * fd.springConstant
		attractiveForce *= (1.0 + l.weight)

		dx /= distance
		dy /= distance

		fd.forces[l.a] = force{
			fx: fd.forces[l.a].fx + dx*attractiveForce,
			fy: fd.forces[l.a].fy + dy*attractiveForce,
		}
		fd.forces[l.b] = force{
			fx: fd.forces[l.b].fx - dx*attractiveForce,
			fy: fd.forces[l.b].fy - dy*attractiveForce,
		}
	}

	// Integrate with temperature limiting (simulated annealing). Pinned
	// nodes exert forces above but do not move, and their residual force is
	// excluded from the convergence energy.
	totalEnergy := 0.0
	moving := 0
	for _, slug := range slugs {
		if fd.pinned[slug] {
			fd.velocities[slug] = velocity{}
			continue
		}

		f := fd.forces[slug]
		magnitude := math.Sqrt(f.fx*f.fx + f.fy*f.fy)
		if magnitude > 0 {
			scale := math.Min(magnitude, fd.temperature) / magnitude
			f.fx *= scale
			f.fy *= scale
		}

		v := fd.velocities[slug]
		v.vx = (v.vx + f.fx) * fd.dampingFactor
		v.vy = (v.vy + f.fy) * fd.dampingFactor
		fd.velocities[slug] = v

		pos := fd.positions[slug]
		pos.x += v.vx
		pos.y += v.vy

		// Keep nodes inside the frame
		padding := fd.k * 0.5
		pos.x = math.Max(padding, math.Min(fd.width-padding, pos.x))
		pos.y = math.Max(padding, math.Min(fd.height-padding, pos.y))
		fd.positions[slug] = pos

		totalEnergy += magnitude
		moving++
	}

	fd.temperature *= 0.95

	if moving == 0 {
		fd.stable = true
	} else {
		avgEnergy := totalEnergy / float64(moving)
		fd.stable = avgEnergy < fd.energyThreshold
	}

	fd.iterations++
	return fd.stable
}

// Apply updates node positions in the graph
func (fd *ForceDirectedLayout) Apply(graph *models.Graph) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	for i := range graph.Contributors {
		node := &graph.Contributors[i]
		if pos, ok := fd.positions[node.Slug]; ok {
			node.X = pos.x
			node.Y = pos.y
		}
		node.Pinned = fd.pinned[node.Slug]
	}
}

// Pin takes ownership of a node's position for the duration of a drag. The
// node stops integrating but keeps repelling and attracting its neighbors.
func (fd *ForceDirectedLayout) Pin(slug string, x, y float64) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if _, ok := fd.positions[slug]; !ok {
		return
	}
	fd.positions[slug] = position{x: x, y: y}
	fd.velocities[slug] = velocity{}
	fd.pinned[slug] = true
}

// MovePin drags a pinned node to follow the pointer. Unpinned nodes are left
// alone.
func (fd *ForceDirectedLayout) MovePin(slug string, x, y float64) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if !fd.pinned[slug] {
		return
	}
	fd.positions[slug] = position{x: x, y: y}
	fd.wake()
}

// Release returns a pinned node to simulation control. The layout wakes so
// the freed node can relax, without any added energy.
func (fd *ForceDirectedLayout) Release(slug string) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if !fd.pinned[slug] {
		return
	}
	delete(fd.pinned, slug)
	fd.wake()
}

// AtRest reports whether the simulation has settled, either by dropping below
// the energy threshold or by exhausting its iteration budget.
func (fd *ForceDirectedLayout) AtRest() bool {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return fd.stable || fd.iterations >= fd.maxIterations
}

// wake clears the rest state and keeps at least reheatBudget iterations of
// runway from the current point, so position changes made after the original
// budget ran out are still integrated and surfaced. Callers hold fd.mu.
func (fd *ForceDirectedLayout) wake() {
	fd.stable = false
	if fd.iterations+reheatBudget > fd.maxIterations {
		fd.maxIterations = fd.iterations + reheatBudget
	}
}

// Reheat nudges a settled simulation back into motion with bounded energy:
// the temperature rises to at most reheatTemperature and the iteration budget
// grows by at most reheatBudget, so the layout always decays back to rest.
func (fd *ForceDirectedLayout) Reheat() {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	fd.temperature = math.Max(fd.temperature, reheatTemperature)
	fd.wake()
}

// CohortClusterLayout pulls each cohort toward its own center on top of the
// force-directed base, so graduation classes read as visual islands.
type CohortClusterLayout struct {
	forceLayout     *ForceDirectedLayout
	noiseGenerator  opensimplex.Noise
	width           float64
	height          float64
	iterations      int
	maxIterations   int
	timeStep        float64
	groupAttraction float64
	clusters        map[string]string // slug -> cohort label
	centers         map[string]position
	mu              sync.Mutex
}

// NewCohortClusterLayout creates a new cohort cluster layout
func NewCohortClusterLayout() *CohortClusterLayout {
	return &CohortClusterLayout{
		forceLayout:     NewForceDirectedLayout(),
		noiseGenerator:  opensimplex.New(time.Now().UnixNano()),
		maxIterations:   500,
		groupAttraction: 0.3,
		clusters:        make(map[string]string),
		centers:         make(map[string]position),
	}
}

// GetName returns the name of the layout algorithm
func (cl *CohortClusterLayout) GetName() string {
	return "Cohort Cluster Layout"
}

// Initialize sets up the cluster layout
func (cl *CohortClusterLayout) Initialize(graph *models.Graph) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.width = graph.Width
	cl.height = graph.Height
	cl.maxIterations = graph.MaxIterations

	cl.forceLayout.Initialize(graph)

	// Assign each node to its cohort, keeping first-appearance order so the
	// center arrangement is deterministic.
	cl.clusters = make(map[string]string, len(graph.Contributors))
	labels := make([]string, 0)
	seen := make(map[string]bool)
	for i := range graph.Contributors {
		node := &graph.Contributors[i]
		label := cohort.Key(node.GraduationYear)
		cl.clusters[node.Slug] = label
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}

	// Arrange cohort centers in a circle around the viewport middle.
	cl.centers = make(map[string]position, len(labels))
	radius := math.Min(cl.width, cl.height) * 0.35
	centerX := cl.width / 2
	centerY := cl.height / 2
	for i, label := range labels {
		angle := (2 * math.Pi * float64(i)) / float64(len(labels))
		cl.centers[label] = position{
			x: centerX + radius*math.Cos(angle),
			y: centerY + radius*math.Sin(angle),
		}
	}
}

// Step performs one iteration of the layout algorithm
func (cl *CohortClusterLayout) Step() bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	forceStable := cl.forceLayout.Step()

	if cl.iterations >= cl.maxIterations {
		return true
	}
	cl.iterations++

	return forceStable && cl.iterations >= cl.maxIterations/2
}

// Apply updates node positions in the graph
func (cl *CohortClusterLayout) Apply(graph *models.Graph) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.forceLayout.Apply(graph)

	for i := range graph.Contributors {
		node := &graph.Contributors[i]

		// Pinned nodes track the pointer exactly.
		if node.Pinned {
			continue
		}

		if label, ok := cl.clusters[node.Slug]; ok {
			if center, ok := cl.centers[label]; ok {
				dx := center.x - node.X
				dy := center.y - node.Y
				node.X += dx * cl.groupAttraction
				node.Y += dy * cl.groupAttraction
			}
		}

		// A whisper of noise keeps clusters from collapsing into grids.
		noise := cl.noiseGenerator.Eval3(node.X*0.01, node.Y*0.01, cl.timeStep)
		node.X += noise * 3.0
		node.Y += noise * 3.0
	}

	cl.timeStep += 0.05
}

// Pin delegates drag ownership to the force-directed base.
func (cl *CohortClusterLayout) Pin(slug string, x, y float64) {
	cl.forceLayout.Pin(slug, x, y)
}

// MovePin delegates to the force-directed base.
func (cl *CohortClusterLayout) MovePin(slug string, x, y float64) {
	cl.forceLayout.MovePin(slug, x, y)
}

// Release delegates to the force-directed base.
func (cl *CohortClusterLayout) Release(slug string) {
	cl.forceLayout.Release(slug)
}

// AtRest reports whether the force-directed base has settled.
func (cl *CohortClusterLayout) AtRest() bool {
	return cl.forceLayout.AtRest()
}

// Reheat delegates to the force-directed base.
func (cl *CohortClusterLayout) Reheat() {
	cl.forceLayout.Reheat()
}

// DriftLayout overlays slow simplex-noise motion on a base layout, used for
// ambient animated renderings where a fully settled graph would look frozen.
type DriftLayout struct {
	baseLayout     LayoutAlgorithm
	noiseGenerator opensimplex.Noise
	noiseScale     float64
	timeStep       float64
	amplitude      float64
	pulseFactor    float64
}

// NewDriftLayout creates a drift layout over the given base layout
func NewDriftLayout(base LayoutAlgorithm) *DriftLayout {
	return &DriftLayout{
		baseLayout:     base,
		noiseGenerator: opensimplex.New(time.Now().UnixNano()),
		noiseScale:     0.03,
		amplitude:      12.0,
		pulseFactor:    0.1,
	}
}

// GetName returns the name of the layout algorithm
func (dl *DriftLayout) GetName() string {
	return "Drift Layout"
}

// Initialize initializes the drift layout
func (dl *DriftLayout) Initialize(graph *models.Graph) {
	dl.baseLayout.Initialize(graph)
}

// Step performs one iteration of the layout algorithm
func (dl *DriftLayout) Step() bool {
	return dl.baseLayout.Step()
}

// Apply applies the base layout and then the drift offsets
func (dl *DriftLayout) Apply(graph *models.Graph) {
	dl.baseLayout.Apply(graph)

	for i := range graph.Contributors {
		node := &graph.Contributors[i]

		// Pinned nodes track the pointer exactly.
		if node.Pinned {
			continue
		}

		// Each node gets its own phase so the field does not breathe in
		// unison.
		phase := float64(node.Ordinal) * 0.1
		noise1 := dl.noiseGenerator.Eval3(node.X*dl.noiseScale, node.Y*dl.noiseScale, dl.timeStep)
		noise2 := dl.noiseGenerator.Eval3(node.X*dl.noiseScale+100, node.Y*dl.noiseScale+100, dl.timeStep)

		pulse := 1.0 + math.Sin(dl.timeStep*2+phase)*dl.pulseFactor
		node.X += noise1 * dl.amplitude * pulse
		node.Y += noise2 * dl.amplitude * pulse
	}

	dl.timeStep += 0.01
}

// Pin delegates drag ownership to the base layout when it supports pinning.
func (dl *DriftLayout) Pin(slug string, x, y float64) {
	if p, ok := dl.baseLayout.(pinner); ok {
		p.Pin(slug, x, y)
	}
}

// MovePin delegates to the base layout when it supports pinning.
func (dl *DriftLayout) MovePin(slug string, x, y float64) {
	if p, ok := dl.baseLayout.(pinner); ok {
		p.MovePin(slug, x, y)
	}
}

// Release delegates to the base layout when it supports pinning.
func (dl *DriftLayout) Release(slug string) {
	if p, ok := dl.baseLayout.(pinner); ok {
		p.Release(slug)
	}
}

// AtRest always reports false. The noise overlay keeps moving after the base
// layout converges, so every frame still differs from the last.
func (dl *DriftLayout) AtRest() bool {
	return false
}

// Reheat delegates to the base layout when it supports pinning.
func (dl *DriftLayout) Reheat() {
	if p, ok := dl.baseLayout.(pinner); ok {
		p.Reheat()
	}
}

// Helper functions

// Fast pseudo-random number generator (0-1 range)
var randState uint32 = 1234567890

func fastRand() float64 {
	// Xorshift algorithm
	randState ^= randState << 13
	randState ^= randState >> 17
	randState ^= randState << 5
	return float64(randState) / float64(4294967295) // map to [0,1)
}

// GetLayoutAlgorithm returns a layout algorithm by name
func GetLayoutAlgorithm(name string) (LayoutAlgorithm, error) {
	switch name {
	case "force", "":
		return NewForceDirectedLayout(), nil
	case "cluster":
		return NewCohortClusterLayout(), nil
	case "drift":
		return NewDriftLayout(NewForceDirectedLayout()), nil
	default:
		return nil, fmt.Errorf("unknown layout algorithm: %s", name)
	}
}
