package playback

import "interdeck/core"

// SpotlightOverlay is the render instruction for a spotlight effect: a dim
// layer over the whole container with a cut-out at the effect's declared
// rectangle. The cut-out uses the effect's own absolute target, not the
// rectangle of the element that was clicked.
type SpotlightOverlay struct {
	Alpha     float64             `json:"alpha"`
	Shape     core.SpotlightShape `json:"shape"`
	Cutout    core.Rect           `json:"cutout"`
	Radius    float64             `json:"radius,omitempty"`
	FadeEdges bool                `json:"fadeEdges,omitempty"`
}

// TextOverlay is the render instruction for a text effect.
type TextOverlay struct {
	Position   core.Rect `json:"position"`
	Content    string    `json:"content"`
	FontSize   int       `json:"fontSize,omitempty"`
	Color      string    `json:"color,omitempty"`
	Background string    `json:"background,omitempty"`
}

// BuildSpotlight maps spotlight parameters to a concrete overlay. Intensity
// 0-100 becomes alpha 0.0-1.0, inverted: higher intensity means a darker
// surround. Circle cut-outs use a radius of half the smaller cut-out side.
// Fade edges soften the cut-out boundary only, never the center.
func BuildSpotlight(p core.SpotlightParams) SpotlightOverlay {
	overlay := SpotlightOverlay{
		Alpha:     clamp(p.Intensity, 0, 100) / 100,
		Shape:     p.Shape,
		Cutout:    p.Position,
		FadeEdges: p.FadeEdges,
	}
	if p.Shape == core.ShapeCircle {
		overlay.Radius = min(p.Position.Width, p.Position.Height) / 2
	}
	return overlay
}

// BuildText maps text parameters to a concrete overlay.
func BuildText(p core.TextParams) TextOverlay {
	return TextOverlay{
		Position:   p.Position,
		Content:    p.Content,
		FontSize:   p.FontSize,
		Color:      p.Color,
		Background: p.Background,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
