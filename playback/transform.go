package playback

import "interdeck/core"

// Size is the current pixel bounds of a slide's container.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Transform is the active (scale, translate) applied to a slide's viewport.
// It is a shared resource: at most one effect owns it at a time, and every
// completion or teardown path restores the identity baseline.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
}

// IdentityTransform is the baseline: zoom 1.0 at the origin.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// Apply projects a container-space point through the transform.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.Scale + t.TranslateX, y*t.Scale + t.TranslateY
}

// PanZoomTransform computes the transform that scales the viewport by zoom
// and translates it so the target rectangle's midpoint lands exactly on the
// container's midpoint:
//
//	translateX = containerWidth/2 - targetCenterX*zoom
//
// The invariant holds for any container size, target rectangle, and zoom
// level, which is the guarantee the fixed-pixel rewrite exists to enforce.
func PanZoomTransform(container Size, target core.Rect, zoom float64) Transform {
	return Transform{
		Scale:      zoom,
		TranslateX: container.Width/2 - target.CenterX()*zoom,
		TranslateY: container.Height/2 - target.CenterY()*zoom,
	}
}
