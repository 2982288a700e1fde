package playback

import (
	"fmt"

	"interdeck/core"
)

// ResolveRect returns the fixed rectangle authored for the given breakpoint.
// The result is the stored rectangle exactly as authored; there is no
// interpolation between breakpoints and no fallback synthesis. A missing
// rectangle means the deck slipped past validation and is reported as an
// error, not defaulted.
func ResolveRect(pos core.ResponsivePosition, bp core.Breakpoint) (core.Rect, error) {
	if !bp.Valid() {
		return core.Rect{}, fmt.Errorf("unknown breakpoint %q", bp)
	}
	rect, ok := pos.Rect(bp)
	if !ok {
		return core.Rect{}, fmt.Errorf("no rectangle authored for breakpoint %q", bp)
	}
	return *rect, nil
}

// Placement is the absolute, container-relative render instruction for one
// element: left/top/width/height taken directly from the resolved rectangle.
// No percentage conversion and no transform-based scaling happen here. The
// fixed-pixel model anchors elements and effect targets to the same
// coordinate space as the slide's declared container dimensions.
type Placement struct {
	ElementID string           `json:"elementId"`
	Kind      core.ElementKind `json:"kind"`
	Left      float64          `json:"left"`
	Top       float64          `json:"top"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
}

// SlideFrame resolves placements for every visible element of a slide at the
// given breakpoint, preserving element order.
func SlideFrame(slide *core.Slide, bp core.Breakpoint) ([]Placement, error) {
	placements := make([]Placement, 0, len(slide.Elements))
	for _, el := range slide.Elements {
		if el.Hidden {
			continue
		}
		rect, err := ResolveRect(el.Position, bp)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", el.ID, err)
		}
		placements = append(placements, Placement{
			ElementID: el.ID,
			Kind:      el.Kind,
			Left:      rect.X,
			Top:       rect.Y,
			Width:     rect.Width,
			Height:    rect.Height,
		})
	}
	return placements, nil
}
