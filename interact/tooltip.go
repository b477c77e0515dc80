// Package interact owns the pointer-driven UI state for a contributor graph:
// hover and selection tracking, drag-to-pin handoff to the layout engine, and
// tooltip placement. Everything here is pure state manipulation; rendering is
// left to the caller.
package interact

// Placement constants shared by every tooltip computation.
const (
	// EdgePadding is the minimum distance kept between a tooltip and any
	// viewport edge.
	EdgePadding = 8.0
	// AnchorGap is the distance between a node's rim and the tooltip.
	AnchorGap = 10.0
)

// Fallback dimensions used when the rendered tooltip size is not yet known.
var (
	hoverFallback  = Size{Width: 180, Height: 48}
	detailFallback = Size{Width: 300, Height: 160}
)

// Size is a tooltip's rendered or estimated dimensions.
type Size struct {
	Width  float64
	Height float64
}

// Viewport bounds the drawable area tooltips must stay inside.
type Viewport struct {
	Width  float64
	Height float64
}

// Point is a computed top-left placement.
type Point struct {
	Left float64
	Top  float64
}

// FallbackSize returns the estimated dimensions for a tooltip whose rendered
// size is unavailable. Detailed panels are larger than hover summaries.
func FallbackSize(detailed bool) Size {
	if detailed {
		return detailFallback
	}
	return hoverFallback
}

// PlaceTooltip computes where a tooltip of the given size goes relative to an
// anchor point. Pass a zero Size to fall back to the estimate for the tooltip
// kind. The cascade tries above the anchor first, then below, then beside it,
// and the result is always clamped inside the viewport minus EdgePadding.
func PlaceTooltip(anchorX, anchorY float64, detailed bool, nodeRadius float64, size Size, vp Viewport) Point {
	if size.Width <= 0 || size.Height <= 0 {
		size = FallbackSize(detailed)
	}

	offset := nodeRadius + AnchorGap

	// Above the anchor, centered horizontally.
	left := anchorX - size.Width/2
	top := anchorY - offset - size.Height
	left = min(max(left, EdgePadding), vp.Width-size.Width-EdgePadding)

	if top < EdgePadding {
		// Not enough headroom: drop below the anchor instead.
		top = anchorY + offset
		if top+size.Height > vp.Height-EdgePadding {
			// No room below either: center vertically and sit beside
			// the anchor, preferring the right.
			top = anchorY - size.Height/2
			left = anchorX + offset
			if left+size.Width > vp.Width-EdgePadding {
				left = anchorX - offset - size.Width
			}
		}
	}

	left = min(max(left, EdgePadding), vp.Width-size.Width-EdgePadding)
	top = min(max(top, EdgePadding), vp.Height-size.Height-EdgePadding)
	return Point{Left: left, Top: top}
}
