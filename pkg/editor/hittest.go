package editor

import (
	"github.com/matzehuels/nodegraph/pkg/geom"
)

// Hit-test tolerances in screen pixels.
const (
	SocketRadius  = 6.0
	EdgeTolerance = 5.0
)

// HitTest classifies a screen position for presentation layers that do not
// resolve targets themselves. Sockets win over headers, headers over edges.
// Later nodes are on top.
func (e *Editor) HitTest(pos geom.Point) Hit {
	nodes := e.graph.Nodes()
	r := SocketRadius * max(1, e.vp.Scale())
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Collapsed {
			continue
		}
		for _, s := range n.Sockets {
			a := e.vp.WorldToScreen(e.layout.Anchor(n, s))
			if a.Near(pos, r) {
				return SocketHit(s.Key)
			}
		}
	}

	world := e.vp.ScreenToWorld(pos)
	for i := len(nodes) - 1; i >= 0; i-- {
		if e.layout.HeaderBounds(nodes[i]).Contains(world) {
			return HeaderHit(nodes[i].ID)
		}
	}

	for _, ed := range e.graph.Edges() {
		c, ok := e.curve(ed)
		if !ok || !c.Bounds().Grow(EdgeTolerance).Contains(pos) {
			continue
		}
		if c.DistanceTo(pos, 32) <= EdgeTolerance {
			return EdgeHit(ed.ID)
		}
	}
	return Canvas
}
