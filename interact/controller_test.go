package interact

import "testing"

// fakePinner records the calls the controller makes into the layout engine.
type fakePinner struct {
	resting  bool
	reheats  int
	pinned   map[string][2]float64
	released []string
}

func newFakePinner(resting bool) *fakePinner {
	return &fakePinner{resting: resting, pinned: make(map[string][2]float64)}
}

func (f *fakePinner) Pin(slug string, x, y float64)     { f.pinned[slug] = [2]float64{x, y} }
func (f *fakePinner) MovePin(slug string, x, y float64) { f.pinned[slug] = [2]float64{x, y} }
func (f *fakePinner) Release(slug string) {
	delete(f.pinned, slug)
	f.released = append(f.released, slug)
}
func (f *fakePinner) AtRest() bool { return f.resting }
func (f *fakePinner) Reheat()      { f.reheats++; f.resting = false }

func TestHoverTransitions(t *testing.T) {
	c := NewController(newFakePinner(false))

	if c.State() != Idle {
		t.Fatalf("initial state = %v, want idle", c.State())
	}

	c.PointerEnter("alice")
	if c.State() != HoverPreview || c.Hovered() != "alice" {
		t.Errorf("after enter: state = %v, hovered = %q", c.State(), c.Hovered())
	}
	tip := c.Tooltip()
	if !tip.Visible || tip.Detailed || tip.Slug != "alice" {
		t.Errorf("hover tooltip = %+v", tip)
	}

	c.PointerLeave("alice")
	if c.State() != Idle || c.Hovered() != "" {
		t.Errorf("after leave: state = %v, hovered = %q", c.State(), c.Hovered())
	}
	if c.Tooltip().Visible {
		t.Error("tooltip should hide on pointer leave")
	}
}

func TestHoverSuppressedWhileDetailed(t *testing.T) {
	c := NewController(newFakePinner(false))

	c.ClickNode("alice")
	c.PointerEnter("bob")
	if c.State() != Detailed {
		t.Errorf("hover broke out of detailed state: %v", c.State())
	}
	if tip := c.Tooltip(); tip.Slug != "alice" || !tip.Detailed {
		t.Errorf("tooltip switched away from activated node: %+v", tip)
	}

	c.PointerLeave("bob")
	if c.State() != Detailed {
		t.Errorf("pointer leave dismissed detailed state: %v", c.State())
	}
}

func TestActivationKeepsNodeAndEntryPaired(t *testing.T) {
	c := NewController(newFakePinner(false))

	c.ClickNode("alice")
	if c.ActiveNode() != "alice" || c.ActiveEntry() != "alice" {
		t.Errorf("node click: active node %q, entry %q", c.ActiveNode(), c.ActiveEntry())
	}

	c.ClickEntry("bob")
	if c.ActiveNode() != "bob" || c.ActiveEntry() != "bob" {
		t.Errorf("entry click: active node %q, entry %q", c.ActiveNode(), c.ActiveEntry())
	}
	if c.ActiveNode() != c.ActiveEntry() {
		t.Error("active node and entry desynchronized")
	}

	tip := c.Tooltip()
	if !tip.Visible || !tip.Detailed || tip.Slug != "bob" {
		t.Errorf("detailed tooltip = %+v", tip)
	}
}

func TestOutsideClickClearsEverything(t *testing.T) {
	c := NewController(newFakePinner(false))

	c.ClickNode("alice")
	c.OutsideClick()

	if c.State() != Idle {
		t.Errorf("state = %v, want idle", c.State())
	}
	if c.ActiveNode() != "" || c.ActiveEntry() != "" {
		t.Errorf("activation survived outside click: %q / %q", c.ActiveNode(), c.ActiveEntry())
	}
	if c.Tooltip().Visible {
		t.Error("tooltip survived outside click")
	}
}

func TestDragPinsAndReleases(t *testing.T) {
	layout := newFakePinner(false)
	c := NewController(layout)

	c.DragStart("alice", 100, 200)
	if !c.Dragging("alice") {
		t.Fatal("drag not registered")
	}
	if got := layout.pinned["alice"]; got != [2]float64{100, 200} {
		t.Errorf("pinned at %v, want [100 200]", got)
	}
	if layout.reheats != 0 {
		t.Errorf("reheated a moving simulation %d times", layout.reheats)
	}

	c.DragMove("alice", 150, 250)
	if got := layout.pinned["alice"]; got != [2]float64{150, 250} {
		t.Errorf("pin moved to %v, want [150 250]", got)
	}

	c.DragEnd("alice")
	if c.Dragging("alice") {
		t.Error("drag still registered after end")
	}
	if len(layout.released) != 1 || layout.released[0] != "alice" {
		t.Errorf("released = %v, want [alice]", layout.released)
	}
}

func TestDragStartReheatsRestingSimulation(t *testing.T) {
	layout := newFakePinner(true)
	c := NewController(layout)

	c.DragStart("alice", 10, 10)
	if layout.reheats != 1 {
		t.Errorf("reheats = %d, want 1", layout.reheats)
	}

	// A second drag while already moving must not add energy again.
	c.DragStart("bob", 20, 20)
	if layout.reheats != 1 {
		t.Errorf("reheats = %d after second drag, want 1", layout.reheats)
	}
}

func TestSimultaneousDragsAreIndependent(t *testing.T) {
	layout := newFakePinner(false)
	c := NewController(layout)

	c.DragStart("alice", 1, 1)
	c.DragStart("bob", 2, 2)
	if c.DragCount() != 2 {
		t.Fatalf("DragCount = %d, want 2", c.DragCount())
	}

	c.DragEnd("alice")
	if c.Dragging("alice") || !c.Dragging("bob") {
		t.Errorf("ending alice's drag disturbed bob's: alice=%v bob=%v",
			c.Dragging("alice"), c.Dragging("bob"))
	}

	// Moves for a released node are dropped.
	c.DragMove("alice", 9, 9)
	if _, ok := layout.pinned["alice"]; ok {
		t.Error("move re-pinned a released node")
	}
}

func TestDragStartNotReentrantPerNode(t *testing.T) {
	layout := newFakePinner(true)
	c := NewController(layout)

	c.DragStart("alice", 1, 1)
	c.DragStart("alice", 50, 50)

	if got := layout.pinned["alice"]; got != [2]float64{1, 1} {
		t.Errorf("reentrant start moved the pin to %v", got)
	}
	if c.DragCount() != 1 {
		t.Errorf("DragCount = %d, want 1", c.DragCount())
	}
}
