package geom

import (
	"fmt"
	"math"
)

// MinHandle is the smallest horizontal control-point offset of an edge curve,
// in screen pixels.
const MinHandle = 50.0

// Curve is a cubic Bézier from P1 to P4 with control points P2 and P3.
type Curve struct {
	P1, P2, P3, P4 Point
}

// EdgeCurve computes the curve of an edge leaving an output at p1 and
// entering an input at p4, both in screen space.
//
// The handle length is max(MinHandle, |p4.x-p1.x|/3). The handles point toward
// each other, so when p1 lies right of p4 they flip; the tangent stays
// horizontal at both ends either way.
func EdgeCurve(p1, p4 Point) Curve {
	dx := math.Max(MinHandle, math.Abs(p4.X-p1.X)/3)
	if p1.X > p4.X {
		dx = -dx
	}
	return Curve{
		P1: p1,
		P2: Point{p1.X + dx, p1.Y},
		P3: Point{p4.X - dx, p4.Y},
		P4: p4,
	}
}

// At evaluates the curve at t in [0, 1].
func (c Curve) At(t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	d := 3 * u * t * t
	e := t * t * t
	return Point{
		X: a*c.P1.X + b*c.P2.X + d*c.P3.X + e*c.P4.X,
		Y: a*c.P1.Y + b*c.P2.Y + d*c.P3.Y + e*c.P4.Y,
	}
}

// Path returns the curve as an SVG path description.
func (c Curve) Path() string {
	return fmt.Sprintf("M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f",
		c.P1.X, c.P1.Y, c.P2.X, c.P2.Y, c.P3.X, c.P3.Y, c.P4.X, c.P4.Y)
}

// Bounds returns the bounding box of the control polygon, which contains the curve.
func (c Curve) Bounds() Rect {
	minX := math.Min(math.Min(c.P1.X, c.P2.X), math.Min(c.P3.X, c.P4.X))
	minY := math.Min(math.Min(c.P1.Y, c.P2.Y), math.Min(c.P3.Y, c.P4.Y))
	maxX := math.Max(math.Max(c.P1.X, c.P2.X), math.Max(c.P3.X, c.P4.X))
	maxY := math.Max(math.Max(c.P1.Y, c.P2.Y), math.Max(c.P3.Y, c.P4.Y))
	return Rect{Min: Point{minX, minY}, Max: Point{maxX, maxY}}
}

// DistanceTo approximates the shortest distance from p to the curve by
// sampling it in n segments.
func (c Curve) DistanceTo(p Point, n int) float64 {
	if n < 1 {
		n = 16
	}
	best := math.Inf(1)
	prev := c.P1
	for i := 1; i <= n; i++ {
		cur := c.At(float64(i) / float64(n))
		if d := segmentDistance(p, prev, cur); d < best {
			best = d
		}
		prev = cur
	}
	return best
}

func segmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	proj := a.Add(ab.Mul(t))
	return math.Hypot(p.X-proj.X, p.Y-proj.Y)
}
