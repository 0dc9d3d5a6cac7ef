// Package viewport maps between world space, where nodes live, and screen
// space, where pointer events arrive.
//
// A [Viewport] is an affine transform: screen = world*scale + offset. The
// scale is always kept in [MinScale, MaxScale]; every mutator clamps.
// Zooming is anchored: the world point under the pointer stays under the
// pointer.
package viewport

import (
	"math"

	"github.com/matzehuels/nodegraph/pkg/geom"
)

// Scale limits and the zoom step used by [Viewport.Zoom].
const (
	MinScale     = 0.5
	MaxScale     = 3.0
	DefaultScale = 1.0
	ZoomStep     = 0.1
)

// State is the persisted form of a viewport.
type State struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Scale   float64 `json:"scale"`
}

// Viewport is the pan/zoom transform of one editor.
//
// The zero value is not usable - use New.
type Viewport struct {
	offset geom.Point
	scale  float64
	step   float64
}

// New returns a viewport at offset (0,0) and scale 1.
func New() *Viewport {
	return &Viewport{scale: DefaultScale, step: ZoomStep}
}

// SetZoomStep changes the per-step zoom increment. Non-positive values are ignored.
func (v *Viewport) SetZoomStep(step float64) {
	if step > 0 {
		v.step = step
	}
}

// Offset returns the pan offset in screen units.
func (v *Viewport) Offset() geom.Point { return v.offset }

// Scale returns the zoom scale.
func (v *Viewport) Scale() float64 { return v.scale }

// Clamp limits s to [MinScale, MaxScale]. NaN and non-positive values map to
// MinScale.
func Clamp(s float64) float64 {
	if math.IsNaN(s) || s < MinScale {
		return MinScale
	}
	return math.Min(s, MaxScale)
}

// WorldToScreen converts a world point to screen space.
func (v *Viewport) WorldToScreen(p geom.Point) geom.Point {
	return p.Mul(v.scale).Add(v.offset)
}

// ScreenToWorld converts a screen point to world space.
func (v *Viewport) ScreenToWorld(p geom.Point) geom.Point {
	return p.Sub(v.offset).Div(v.scale)
}

// Pan moves the offset by a screen-space delta.
func (v *Viewport) Pan(delta geom.Point) {
	v.offset = v.offset.Add(delta)
}

// SetOffset sets the pan offset.
func (v *Viewport) SetOffset(p geom.Point) { v.offset = p }

// ZoomAt multiplies the scale by factor, clamped, keeping the world point
// under pointer fixed on screen. It reports whether the transform changed.
func (v *Viewport) ZoomAt(factor float64, pointer geom.Point) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}
	return v.SetScaleAt(v.scale*factor, pointer)
}

// Zoom applies steps wheel notches at pointer. Each notch scales by
// 1 + step*steps, so one notch in is 1.1 and one notch out is 0.9.
func (v *Viewport) Zoom(steps float64, pointer geom.Point) bool {
	factor := 1 + v.step*steps
	if factor < v.step {
		factor = v.step
	}
	return v.ZoomAt(factor, pointer)
}

// SetScaleAt sets the scale, clamped, anchored at pointer.
func (v *Viewport) SetScaleAt(scale float64, pointer geom.Point) bool {
	scale = Clamp(scale)
	if scale == v.scale {
		return false
	}
	world := v.ScreenToWorld(pointer)
	v.scale = scale
	v.offset = pointer.Sub(world.Mul(scale))
	return true
}

// SetScale sets the scale, clamped, anchored at the screen origin.
func (v *Viewport) SetScale(scale float64) bool {
	return v.SetScaleAt(scale, geom.Point{})
}

// Reset restores offset (0,0) and scale 1.
func (v *Viewport) Reset() {
	v.offset = geom.Point{}
	v.scale = DefaultScale
}

// State returns the persisted form.
func (v *Viewport) State() State {
	return State{OffsetX: v.offset.X, OffsetY: v.offset.Y, Scale: v.scale}
}

// Restore applies a persisted state. The scale is clamped; a zero scale, as
// left by an absent field, restores the default.
func (v *Viewport) Restore(s State) {
	v.offset = geom.Pt(s.OffsetX, s.OffsetY)
	if s.Scale == 0 {
		v.scale = DefaultScale
		return
	}
	v.scale = Clamp(s.Scale)
}

// FitBounds scales and pans so the world rectangle fills screen minus
// padding on every side. An empty rectangle only centers on its origin.
func (v *Viewport) FitBounds(world geom.Rect, screen geom.Size, padding float64) {
	if world.Empty() {
		v.FocusOn(world.Min, screen)
		return
	}
	sx := (screen.W - 2*padding) / world.Width()
	sy := (screen.H - 2*padding) / world.Height()
	s := math.Min(sx, sy)
	if s <= 0 {
		s = DefaultScale
	}
	v.scale = Clamp(s)
	v.FocusOn(world.Center(), screen)
}

// FocusOn pans so the world point p sits at the center of the screen,
// keeping the current scale.
func (v *Viewport) FocusOn(p geom.Point, screen geom.Size) {
	center := geom.Pt(screen.W/2, screen.H/2)
	v.offset = center.Sub(p.Mul(v.scale))
}

// ScreenRect converts a world rectangle to screen space.
func (v *Viewport) ScreenRect(world geom.Rect) geom.Rect {
	return geom.Rect{Min: v.WorldToScreen(world.Min), Max: v.WorldToScreen(world.Max)}
}

// Visible reports whether the world rectangle overlaps the screen, grown by
// padding screen units on every side.
func (v *Viewport) Visible(world geom.Rect, screen geom.Size, padding float64) bool {
	view := geom.Rect{Max: geom.Pt(screen.W, screen.H)}.Grow(padding)
	return v.ScreenRect(world).Overlaps(view)
}
