package interact

import "testing"

func inBounds(t *testing.T, p Point, size Size, vp Viewport) {
	t.Helper()
	if p.Left < EdgePadding || p.Top < EdgePadding {
		t.Errorf("placement %+v breaches the padding floor", p)
	}
	if p.Left+size.Width > vp.Width-EdgePadding {
		t.Errorf("placement %+v overflows the right edge (width %g)", p, size.Width)
	}
	if p.Top+size.Height > vp.Height-EdgePadding {
		t.Errorf("placement %+v overflows the bottom edge (height %g)", p, size.Height)
	}
}

func TestPlaceTooltipAboveWhenRoomy(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	size := Size{Width: 200, Height: 60}

	p := PlaceTooltip(400, 300, false, 12, size, vp)
	wantTop := 300 - 12 - AnchorGap - size.Height
	if p.Top != wantTop {
		t.Errorf("Top = %g, want %g", p.Top, wantTop)
	}
	if p.Left != 400-size.Width/2 {
		t.Errorf("Left = %g, want %g", p.Left, 400-size.Width/2)
	}
	inBounds(t, p, size, vp)
}

func TestPlaceTooltipFallsBelowNearTopEdge(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	size := Size{Width: 200, Height: 60}

	p := PlaceTooltip(400, 20, false, 12, size, vp)
	if p.Top < EdgePadding {
		t.Errorf("Top = %g, breaches the padding floor", p.Top)
	}
	wantTop := 20 + 12 + AnchorGap
	if p.Top != wantTop {
		t.Errorf("Top = %g, want below-anchor placement %g", p.Top, wantTop)
	}
	inBounds(t, p, size, vp)
}

func TestPlaceTooltipSidesWhenPinnedVertically(t *testing.T) {
	// Anchor near the top of a short viewport: neither above nor below
	// fits, so the tooltip sits beside the anchor.
	vp := Viewport{Width: 800, Height: 140}
	size := Size{Width: 200, Height: 100}

	p := PlaceTooltip(100, 30, false, 12, size, vp)
	wantLeft := 100 + 12 + AnchorGap
	if p.Left != wantLeft {
		t.Errorf("Left = %g, want right-of-anchor placement %g", p.Left, wantLeft)
	}
	inBounds(t, p, size, vp)

	// Same squeeze near the right edge flips to the left side.
	p = PlaceTooltip(750, 30, false, 12, size, vp)
	if p.Left+size.Width > 750 {
		t.Errorf("Left = %g, expected left-of-anchor placement", p.Left)
	}
	inBounds(t, p, size, vp)
}

func TestPlaceTooltipClampsHorizontally(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	size := Size{Width: 200, Height: 60}

	p := PlaceTooltip(10, 300, false, 12, size, vp)
	if p.Left != EdgePadding {
		t.Errorf("Left = %g, want clamp to %g", p.Left, EdgePadding)
	}

	p = PlaceTooltip(795, 300, false, 12, size, vp)
	if want := vp.Width - size.Width - EdgePadding; p.Left != want {
		t.Errorf("Left = %g, want clamp to %g", p.Left, want)
	}
}

func TestPlaceTooltipFallbackSizes(t *testing.T) {
	if FallbackSize(false) == FallbackSize(true) {
		t.Fatal("hover and detail fallbacks must differ")
	}
	d := FallbackSize(true)
	h := FallbackSize(false)
	if d.Width <= h.Width || d.Height <= h.Height {
		t.Errorf("detail fallback %+v should exceed hover fallback %+v", d, h)
	}

	// Zero size selects the fallback for the tooltip kind.
	vp := Viewport{Width: 800, Height: 600}
	p := PlaceTooltip(400, 300, true, 12, Size{}, vp)
	inBounds(t, p, d, vp)
}

func TestPlaceTooltipStaysInsideEverywhere(t *testing.T) {
	// Sweep anchors across a viewport at least twice the fallback size in
	// both axes; no placement may escape the padded bounds.
	vp := Viewport{Width: 640, Height: 400}
	size := FallbackSize(true)

	for x := 0.0; x <= vp.Width; x += 40 {
		for y := 0.0; y <= vp.Height; y += 40 {
			p := PlaceTooltip(x, y, true, 12, size, vp)
			inBounds(t, p, size, vp)
		}
	}
}
