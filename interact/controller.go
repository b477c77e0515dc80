package interact

// State names the controller's current interaction mode.
type State int

const (
	// Idle means no node is hovered or activated.
	Idle State = iota
	// HoverPreview means the pointer rests over a node and a summary
	// tooltip is showing. It never coexists with Detailed.
	HoverPreview
	// Detailed means a node or list entry was clicked and its detail
	// tooltip stays open until an outside click dismisses it.
	Detailed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case HoverPreview:
		return "hover"
	case Detailed:
		return "detailed"
	default:
		return "unknown"
	}
}

// Pinner is the slice of the layout engine the controller drives during a
// drag. While a node is pinned the controller owns its position; the layout
// engine resumes ownership on Release.
type Pinner interface {
	Pin(slug string, x, y float64)
	MovePin(slug string, x, y float64)
	Release(slug string)
	AtRest() bool
	Reheat()
}

// Tooltip is the current tooltip state as the view should render it.
type Tooltip struct {
	Visible bool
	// Detailed distinguishes a click-opened panel, which survives
	// mouse-out, from a transient hover summary.
	Detailed bool
	// Slug identifies the contributor whose details to show.
	Slug string
}

// Controller is the single owner of selection, hover, and drag state. One
// controller serves both the graph surface and the mirrored list view, which
// is what keeps them in lockstep: both project the same active slug.
type Controller struct {
	layout  Pinner
	state   State
	active  string
	hovered string
	drags   map[string]bool
}

// NewController returns a controller in the Idle state, driving layout for
// drag gestures.
func NewController(layout Pinner) *Controller {
	return &Controller{
		layout: layout,
		drags:  make(map[string]bool),
	}
}

// State returns the current interaction mode.
func (c *Controller) State() State { return c.state }

// ActiveNode returns the slug of the activated graph node, or "".
func (c *Controller) ActiveNode() string { return c.active }

// ActiveEntry returns the slug of the activated list entry, or "". It is
// always equal to ActiveNode: the pairing cannot desynchronize because both
// read the same field.
func (c *Controller) ActiveEntry() string { return c.active }

// Hovered returns the slug under the pointer while in HoverPreview, or "".
func (c *Controller) Hovered() string { return c.hovered }

// Tooltip returns what the view should display right now.
func (c *Controller) Tooltip() Tooltip {
	switch c.state {
	case HoverPreview:
		return Tooltip{Visible: true, Slug: c.hovered}
	case Detailed:
		return Tooltip{Visible: true, Detailed: true, Slug: c.active}
	default:
		return Tooltip{}
	}
}

// PointerEnter handles the pointer moving onto a node. Ignored while a
// detailed tooltip is open.
func (c *Controller) PointerEnter(slug string) {
	if c.state == Detailed {
		return
	}
	c.state = HoverPreview
	c.hovered = slug
}

// PointerLeave handles the pointer moving off a node. Ignored while a
// detailed tooltip is open.
func (c *Controller) PointerLeave(slug string) {
	if c.state == Detailed {
		return
	}
	if c.hovered == slug {
		c.state = Idle
		c.hovered = ""
	}
}

// ClickNode activates the clicked graph node and its paired list entry,
// replacing any previous activation.
func (c *Controller) ClickNode(slug string) {
	c.activate(slug)
}

// ClickEntry activates the clicked list entry and its paired graph node,
// replacing any previous activation.
func (c *Controller) ClickEntry(slug string) {
	c.activate(slug)
}

func (c *Controller) activate(slug string) {
	c.state = Detailed
	c.active = slug
	c.hovered = ""
}

// OutsideClick handles a click that landed on neither a node nor a list
// entry: the activation and any tooltip are cleared.
func (c *Controller) OutsideClick() {
	c.state = Idle
	c.active = ""
	c.hovered = ""
}

// DragStart pins slug at its current coordinates and takes ownership of its
// position. If the simulation had settled, it is nudged back into motion so
// neighbors react to the drag. Reentrant starts on the same node are ignored.
func (c *Controller) DragStart(slug string, x, y float64) {
	if c.drags[slug] {
		return
	}
	wasResting := c.layout.AtRest()
	c.layout.Pin(slug, x, y)
	c.drags[slug] = true
	if wasResting {
		c.layout.Reheat()
	}
}

// DragMove follows the pointer, updating the pinned position. Ignored for
// nodes without an active drag.
func (c *Controller) DragMove(slug string, x, y float64) {
	if !c.drags[slug] {
		return
	}
	c.layout.MovePin(slug, x, y)
}

// DragEnd releases the pin, returning position ownership to the layout
// engine. With no drags left the simulation simply decays back to rest.
func (c *Controller) DragEnd(slug string) {
	if !c.drags[slug] {
		return
	}
	c.layout.Release(slug)
	delete(c.drags, slug)
}

// Dragging reports whether slug has an active drag.
func (c *Controller) Dragging(slug string) bool { return c.drags[slug] }

// DragCount returns the number of simultaneous drags in flight.
func (c *Controller) DragCount() int { return len(c.drags) }
