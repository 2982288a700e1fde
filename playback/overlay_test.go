package playback

import (
	"testing"

	"interdeck/core"
)

func TestBuildSpotlight_IntensityToAlpha(t *testing.T) {
	cases := []struct {
		intensity float64
		want      float64
	}{
		{0, 0},
		{100, 1},
		{70, 0.7},
		{50, 0.5},
		{150, 1}, // clamped
		{-10, 0}, // clamped
	}

	for _, tc := range cases {
		overlay := BuildSpotlight(core.SpotlightParams{
			Position:  core.Rect{X: 0, Y: 0, Width: 100, Height: 100},
			Shape:     core.ShapeRectangle,
			Intensity: tc.intensity,
		})
		if overlay.Alpha != tc.want {
			t.Errorf("intensity %v: alpha = %v, want %v", tc.intensity, overlay.Alpha, tc.want)
		}
	}
}

func TestBuildSpotlight_CircleRadius(t *testing.T) {
	overlay := BuildSpotlight(core.SpotlightParams{
		Position:  core.Rect{X: 10, Y: 20, Width: 200, Height: 120},
		Shape:     core.ShapeCircle,
		Intensity: 80,
	})

	// Radius is half the smaller cut-out side.
	if overlay.Radius != 60 {
		t.Errorf("Radius = %v, want 60", overlay.Radius)
	}
	if overlay.Shape != core.ShapeCircle {
		t.Errorf("Shape = %v, want circle", overlay.Shape)
	}
}

func TestBuildSpotlight_RectangleHasNoRadius(t *testing.T) {
	overlay := BuildSpotlight(core.SpotlightParams{
		Position:  core.Rect{X: 10, Y: 20, Width: 200, Height: 120},
		Shape:     core.ShapeRectangle,
		Intensity: 80,
		FadeEdges: true,
	})

	if overlay.Radius != 0 {
		t.Errorf("Radius = %v, want 0 for rectangle shape", overlay.Radius)
	}
	if !overlay.FadeEdges {
		t.Error("FadeEdges not carried through")
	}
}

func TestBuildSpotlight_CutoutIsEffectTarget(t *testing.T) {
	target := core.Rect{X: 300, Y: 150, Width: 80, Height: 40}
	overlay := BuildSpotlight(core.SpotlightParams{
		Position:  target,
		Shape:     core.ShapeRectangle,
		Intensity: 50,
	})

	if overlay.Cutout != target {
		t.Errorf("Cutout = %+v, want %+v", overlay.Cutout, target)
	}
}

func TestBuildText(t *testing.T) {
	overlay := BuildText(core.TextParams{
		Position: core.Rect{X: 5, Y: 5, Width: 300, Height: 60},
		Content:  "hello",
		FontSize: 18,
		Color:    "#fff",
	})

	if overlay.Content != "hello" {
		t.Errorf("Content = %q, want %q", overlay.Content, "hello")
	}
	if overlay.FontSize != 18 {
		t.Errorf("FontSize = %d, want 18", overlay.FontSize)
	}
	if overlay.Position.Width != 300 {
		t.Errorf("Position.Width = %v, want 300", overlay.Position.Width)
	}
}
