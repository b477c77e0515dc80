package physics

import (
	"math"
	"testing"

	"github.com/TFMV/cohortviz/models"
)

// ringGraph builds a three-node cohort ring with preset positions so tests do
// not consume the shared random state.
func ringGraph(t *testing.T) *models.Graph {
	t.Helper()

	g := models.NewGraph("test")
	coords := [][2]float64{{300, 250}, {400, 350}, {500, 250}}
	for i, slug := range []string{"alice", "bob", "cara"} {
		c := models.NewContributor(slug, slug, i)
		c.GraduationYear = "2020"
		c.SetPosition(coords[i][0], coords[i][1])
		g.AddContributor(c)
	}
	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "cara"}, {"cara", "alice"}} {
		if err := g.AddEdge(models.NewEdge(pair[0], pair[1], "2020", 1.0)); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return g
}

func settle(t *testing.T, layout LayoutAlgorithm, budget int) int {
	t.Helper()
	for i := 0; i < budget; i++ {
		if layout.Step() {
			return i + 1
		}
	}
	t.Fatalf("layout did not settle within %d steps", budget)
	return budget
}

func TestForceLayoutKeepsNodesInBounds(t *testing.T) {
	g := ringGraph(t)
	layout := NewForceDirectedLayout()
	layout.Initialize(g)

	for i := 0; i < 100; i++ {
		layout.Step()
	}
	layout.Apply(g)

	for i := range g.Contributors {
		c := &g.Contributors[i]
		if c.X < 0 || c.X > g.Width || c.Y < 0 || c.Y > g.Height {
			t.Errorf("%s escaped the viewport: (%g, %g)", c.Slug, c.X, c.Y)
		}
		if math.IsNaN(c.X) || math.IsNaN(c.Y) {
			t.Errorf("%s has NaN coordinates", c.Slug)
		}
	}
}

func TestForceLayoutReachesRest(t *testing.T) {
	g := ringGraph(t)
	layout := NewForceDirectedLayout()
	layout.Initialize(g)

	settle(t, layout, g.MaxIterations+10)
	if !layout.AtRest() {
		t.Error("layout settled but AtRest reports motion")
	}

	// Once settled, further steps are no-ops.
	if !layout.Step() {
		t.Error("Step returned false after reaching rest")
	}
}

func TestPinnedNodeDoesNotMove(t *testing.T) {
	g := ringGraph(t)
	layout := NewForceDirectedLayout()
	layout.Initialize(g)

	layout.Pin("alice", 120, 140)
	for i := 0; i < 50; i++ {
		layout.Step()
	}
	layout.Apply(g)

	alice, err := g.FindBySlug("alice")
	if err != nil {
		t.Fatal(err)
	}
	if alice.X != 120 || alice.Y != 140 {
		t.Errorf("pinned node drifted to (%g, %g)", alice.X, alice.Y)
	}
	if !alice.Pinned {
		t.Error("pinned flag not reflected in the graph")
	}
}

func TestMovePinFollowsPointer(t *testing.T) {
	g := ringGraph(t)
	layout := NewForceDirectedLayout()
	layout.Initialize(g)

	layout.Pin("alice", 120, 140)
	layout.MovePin("alice", 210, 180)
	layout.Step()
	layout.Apply(g)

	alice, err := g.FindBySlug("alice")
	if err != nil {
		t.Fatal(err)
	}
	if alice.X != 210 || alice.Y != 180 {
		t.Errorf("pin did not follow pointer: (%g, %g)", alice.X, alice.Y)
	}

	// Moving an unpinned node is a no-op.
	layout.MovePin("bob", 5, 5)
	layout.Apply(g)
	bob, err := g.FindBySlug("bob")
	if err != nil {
		t.Fatal(err)
	}
	if bob.X == 5 && bob.Y == 5 {
		t.Error("MovePin displaced an unpinned node")
	}
}

func TestReleaseReturnsOwnership(t *testing.T) {
	g := ringGraph(t)
	layout := NewForceDirectedLayout()
	layout.Initialize(g)

	layout.Pin("alice", 50, 50)
	layout.Step()
	layout.Release("alice")
	for i := 0; i < 10; i++ {
		layout.Step()
	}
	layout.Apply(g)

	alice, err := g.FindBySlug("alice")
	if err != nil {
		t.Fatal(err)
	}
	if alice.X == 50 && alice.Y == 50 {
		t.Error("released node never moved back under simulation control")
	}
	if alice.Pinned {
		t.Error("pinned flag survived release")
	}
}

func TestMovePinWakesSettledLayout(t *testing.T) {
	g := ringGraph(t)
	layout := NewForceDirectedLayout()
	layout.Initialize(g)

	layout.Pin("alice", 120, 140)

	// Burn through the whole iteration budget while the drag is held.
	for i := 0; i < g.MaxIterations+reheatBudget; i++ {
		layout.Step()
	}
	if !layout.AtRest() {
		t.Fatal("layout should have settled")
	}

	// A drag that outlives the budget keeps producing motion: each pointer
	// move grants more runway.
	layout.MovePin("alice", 130, 150)
	if layout.AtRest() {
		t.Error("MovePin left the layout at rest while a drag is in flight")
	}
	layout.Step()
	layout.Apply(g)
	alice, err := g.FindBySlug("alice")
	if err != nil {
		t.Fatal(err)
	}
	if alice.X != 130 || alice.Y != 150 {
		t.Errorf("moved pin not applied: (%g, %g)", alice.X, alice.Y)
	}

	// Release after exhaustion also wakes the layout so the freed node can
	// relax back under simulation control.
	layout.Release("alice")
	if layout.AtRest() {
		t.Error("Release left an exhausted layout at rest")
	}
}

func TestInitializeClearsStalePins(t *testing.T) {
	g := ringGraph(t)
	layout := NewForceDirectedLayout()
	layout.Initialize(g)
	layout.Pin("alice", 300, 250)

	// A session rebuild re-initializes the same layout; no drag survives it.
	layout.Initialize(g)
	for i := 0; i < 20; i++ {
		layout.Step()
	}
	layout.Apply(g)

	alice, err := g.FindBySlug("alice")
	if err != nil {
		t.Fatal(err)
	}
	if alice.Pinned {
		t.Error("pin survived re-initialization")
	}
	if alice.X == 300 && alice.Y == 250 {
		t.Error("stale pin still holds the node in place")
	}
}

func TestReheatIsBounded(t *testing.T) {
	g := ringGraph(t)
	layout := NewForceDirectedLayout()
	layout.Initialize(g)

	settle(t, layout, g.MaxIterations+10)

	layout.Reheat()
	if layout.AtRest() {
		t.Fatal("reheat did not wake the simulation")
	}

	// The nudge grants a bounded budget; the layout must settle again.
	steps := settle(t, layout, reheatBudget+10)
	if steps > reheatBudget+1 {
		t.Errorf("reheated layout ran %d steps, budget is %d", steps, reheatBudget)
	}
	if !layout.AtRest() {
		t.Error("layout not at rest after reheat decay")
	}
}

func TestStepDeterministicForPresetPositions(t *testing.T) {
	run := func() map[string][2]float64 {
		g := ringGraph(t)
		layout := NewForceDirectedLayout()
		layout.Initialize(g)
		for i := 0; i < 25; i++ {
			layout.Step()
		}
		layout.Apply(g)

		out := make(map[string][2]float64, len(g.Contributors))
		for i := range g.Contributors {
			out[g.Contributors[i].Slug] = [2]float64{g.Contributors[i].X, g.Contributors[i].Y}
		}
		return out
	}

	first := run()
	second := run()
	for slug, pos := range first {
		if second[slug] != pos {
			t.Errorf("%s diverged between identical runs: %v vs %v", slug, pos, second[slug])
		}
	}
}

func TestCohortClusterLayoutSeparatesCohorts(t *testing.T) {
	g := models.NewGraph("clusters")
	coords := [][2]float64{{390, 290}, {410, 290}, {390, 310}, {410, 310}}
	slugs := []string{"a1", "a2", "b1", "b2"}
	years := []string{"2019", "2019", "2020", "2020"}
	for i, slug := range slugs {
		c := models.NewContributor(slug, slug, i)
		c.GraduationYear = years[i]
		c.SetPosition(coords[i][0], coords[i][1])
		g.AddContributor(c)
	}

	layout := NewCohortClusterLayout()
	layout.Initialize(g)
	for i := 0; i < 20; i++ {
		layout.Step()
		layout.Apply(g)
	}

	// Repeated center pulls must drag the cohorts apart.
	a1, _ := g.FindBySlug("a1")
	b1, _ := g.FindBySlug("b1")
	dx := a1.X - b1.X
	dy := a1.Y - b1.Y
	if math.Sqrt(dx*dx+dy*dy) < 50 {
		t.Errorf("cohorts still overlap after clustering: a1=(%g,%g) b1=(%g,%g)", a1.X, a1.Y, b1.X, b1.Y)
	}
}

func TestOverlayLayoutsKeepPinsExact(t *testing.T) {
	overlays := map[string]LayoutAlgorithm{
		"cluster": NewCohortClusterLayout(),
		"drift":   NewDriftLayout(NewForceDirectedLayout()),
	}
	for name, layout := range overlays {
		g := ringGraph(t)
		layout.Initialize(g)
		layout.(pinner).Pin("alice", 120, 140)
		for i := 0; i < 10; i++ {
			layout.Step()
			layout.Apply(g)
		}

		alice, err := g.FindBySlug("alice")
		if err != nil {
			t.Fatal(err)
		}
		if alice.X != 120 || alice.Y != 140 {
			t.Errorf("%s layout displaced a pinned node to (%g, %g)", name, alice.X, alice.Y)
		}
	}
}

func TestDriftLayoutNeverRests(t *testing.T) {
	g := ringGraph(t)
	layout := NewDriftLayout(NewForceDirectedLayout())
	layout.Initialize(g)

	settle(t, layout, g.MaxIterations+10)
	if layout.AtRest() {
		t.Error("drift overlay reported rest while its noise is still moving")
	}
}

func TestGetLayoutAlgorithm(t *testing.T) {
	for name, want := range map[string]string{
		"force":   "Force-Directed Layout",
		"":        "Force-Directed Layout",
		"cluster": "Cohort Cluster Layout",
		"drift":   "Drift Layout",
	} {
		layout, err := GetLayoutAlgorithm(name)
		if err != nil {
			t.Fatalf("GetLayoutAlgorithm(%q): %v", name, err)
		}
		if layout.GetName() != want {
			t.Errorf("GetLayoutAlgorithm(%q) = %s, want %s", name, layout.GetName(), want)
		}
	}

	if _, err := GetLayoutAlgorithm("spiral"); err == nil {
		t.Error("expected an error for an unknown layout name")
	}
}
