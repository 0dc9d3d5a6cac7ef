package geom

import (
	"math"
	"strings"
	"testing"
)

func TestEdgeCurve(t *testing.T) {
	tests := []struct {
		name   string
		p1, p4 Point
		p2, p3 Point
	}{
		{
			name: "ShortSpanUsesMinHandle",
			p1:   Pt(0, 0), p4: Pt(90, 40),
			p2: Pt(50, 0), p3: Pt(40, 40),
		},
		{
			name: "LongSpanUsesThird",
			p1:   Pt(0, 0), p4: Pt(600, 0),
			p2: Pt(200, 0), p3: Pt(400, 0),
		},
		{
			name: "OutputRightOfInputFlips",
			p1:   Pt(600, 10), p4: Pt(0, 10),
			p2: Pt(400, 10), p3: Pt(200, 10),
		},
		{
			name: "VerticallyAligned",
			p1:   Pt(100, 0), p4: Pt(100, 300),
			p2: Pt(150, 0), p3: Pt(50, 300),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := EdgeCurve(tt.p1, tt.p4)
			if !c.P2.Near(tt.p2, 1e-9) {
				t.Errorf("P2 = %v, want %v", c.P2, tt.p2)
			}
			if !c.P3.Near(tt.p3, 1e-9) {
				t.Errorf("P3 = %v, want %v", c.P3, tt.p3)
			}
			// Tangents stay horizontal at both ends.
			if c.P2.Y != c.P1.Y || c.P3.Y != c.P4.Y {
				t.Errorf("handles not horizontal: %+v", c)
			}
		})
	}
}

func TestCurveEndpoints(t *testing.T) {
	c := EdgeCurve(Pt(10, 20), Pt(300, 150))
	if !c.At(0).Near(c.P1, 1e-9) || !c.At(1).Near(c.P4, 1e-9) {
		t.Errorf("At(0)=%v At(1)=%v, want %v %v", c.At(0), c.At(1), c.P1, c.P4)
	}
}

func TestCurvePath(t *testing.T) {
	p := EdgeCurve(Pt(0, 0), Pt(300, 0)).Path()
	if !strings.HasPrefix(p, "M 0.00 0.00 C 100.00 0.00") {
		t.Errorf("Path() = %q", p)
	}
}

func TestCurveDistance(t *testing.T) {
	c := EdgeCurve(Pt(0, 0), Pt(300, 0))
	if d := c.DistanceTo(Pt(150, 0), 32); d > 1e-6 {
		t.Errorf("point on curve distance = %v", d)
	}
	if d := c.DistanceTo(Pt(150, 10), 32); math.Abs(d-10) > 0.5 {
		t.Errorf("distance = %v, want about 10", d)
	}
}

func TestRectUnion(t *testing.T) {
	a := RectAt(Pt(0, 0), Size{10, 10})
	b := RectAt(Pt(20, -5), Size{5, 5})
	u := a.Union(b)
	if u.Min != Pt(0, -5) || u.Max != Pt(25, 10) {
		t.Errorf("Union = %+v", u)
	}
	if (Rect{}).Union(a) != a {
		t.Error("empty rect should be ignored by Union")
	}
}
