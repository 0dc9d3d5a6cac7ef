package graph

import "github.com/matzehuels/nodegraph/pkg/geom"

// Default layout metrics in world units.
const (
	DefaultHeaderHeight = 25.0
	DefaultRowHeight    = 20.0
	DefaultMinWidth     = 150.0
	DefaultCharWidth    = 7.0
	DefaultPadding      = 20.0
)

// Layout holds the metrics that place sockets on a node.
type Layout struct {
	HeaderHeight float64
	RowHeight    float64
	MinWidth     float64
	// CharWidth approximates title glyph width for sizing wide titles.
	CharWidth float64
	Padding   float64
}

// DefaultLayout returns the stock metrics.
func DefaultLayout() Layout {
	return Layout{
		HeaderHeight: DefaultHeaderHeight,
		RowHeight:    DefaultRowHeight,
		MinWidth:     DefaultMinWidth,
		CharWidth:    DefaultCharWidth,
		Padding:      DefaultPadding,
	}
}

// Width returns the body width of n.
func (l Layout) Width(n *Node) float64 {
	title := float64(len([]rune(n.Preset)))*l.CharWidth + l.Padding
	return max(l.MinWidth, n.Width, title)
}

// Height returns the height of n. Collapsed nodes are header only.
func (l Layout) Height(n *Node) float64 {
	if n.Collapsed {
		return l.HeaderHeight
	}
	return l.HeaderHeight + float64(n.Rows+n.BottomRows)*l.RowHeight
}

// Bounds returns the world-space rectangle covered by n.
func (l Layout) Bounds(n *Node) geom.Rect {
	return geom.RectAt(n.Position, geom.Size{W: l.Width(n), H: l.Height(n)})
}

// HeaderBounds returns the rectangle of n's header, the node drag handle.
func (l Layout) HeaderBounds(n *Node) geom.Rect {
	return geom.RectAt(n.Position, geom.Size{W: l.Width(n), H: l.HeaderHeight})
}

// Anchor returns the world-space point where edges attach to s on n.
// Inputs attach on the left edge, outputs on the right. Collapsed nodes
// attach every socket at the header's vertical center.
func (l Layout) Anchor(n *Node, s *Socket) geom.Point {
	x := n.Position.X
	if s.IsOutput() {
		x += l.Width(n)
	}
	if n.Collapsed {
		return geom.Pt(x, n.Position.Y+l.HeaderHeight/2)
	}
	row := float64(s.Slot)
	if s.IsBottom() {
		row += float64(n.Rows)
	}
	return geom.Pt(x, n.Position.Y+l.HeaderHeight+(row+0.5)*l.RowHeight)
}

// AnchorOf resolves key in g and returns its anchor.
func (l Layout) AnchorOf(g *Graph, key SocketKey) (geom.Point, bool) {
	s, ok := g.Resolve(key)
	if !ok {
		return geom.Point{}, false
	}
	n, ok := g.Node(s.NodeID())
	if !ok {
		return geom.Point{}, false
	}
	return l.Anchor(n, s), true
}
