package editor

import (
	"github.com/matzehuels/nodegraph/pkg/geom"
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/viewport"
)

// Renderer receives geometry updates. Implementations draw; the editor
// never does.
type Renderer interface {
	// NodeChanged reports a node that appeared or whose appearance changed.
	NodeChanged(v NodeView)
	// NodePositionChanged reports a node's new world position.
	NodePositionChanged(id string, pos geom.Point)
	NodeRemoved(id string)
	// EdgePathChanged reports an edge's screen-space path.
	EdgePathChanged(id, path string)
	EdgeRemoved(id string)
	// PreviewChanged reports the pending connection's path. visible is
	// false once the preview is gone.
	PreviewChanged(path string, visible bool)
	ViewportChanged(s viewport.State)
}

// NopRenderer ignores every update.
type NopRenderer struct{}

func (NopRenderer) NodeChanged(NodeView)                   {}
func (NopRenderer) NodePositionChanged(string, geom.Point) {}
func (NopRenderer) NodeRemoved(string)                     {}
func (NopRenderer) EdgePathChanged(string, string)         {}
func (NopRenderer) EdgeRemoved(string)                     {}
func (NopRenderer) PreviewChanged(string, bool)            {}
func (NopRenderer) ViewportChanged(viewport.State)         {}

// NodeView is what a presentation layer needs to draw a node.
type NodeView struct {
	ID        string       `json:"id"`
	Preset    string       `json:"preset"`
	Color     string       `json:"color,omitempty"`
	Position  geom.Point   `json:"position"`
	Size      geom.Size    `json:"size"`
	Collapsed bool         `json:"collapsed"`
	Sockets   []SocketView `json:"sockets"`
}

// SocketView is one socket of a NodeView. Anchor is in world space.
type SocketView struct {
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Direction string     `json:"direction"`
	Bottom    bool       `json:"bottom,omitempty"`
	Anchor    geom.Point `json:"anchor"`
}

// View returns the NodeView of node id.
func (e *Editor) View(id string) (NodeView, bool) {
	n, ok := e.graph.Node(id)
	if !ok {
		return NodeView{}, false
	}
	return e.view(n), true
}

func (e *Editor) view(n *graph.Node) NodeView {
	v := NodeView{
		ID:        n.ID,
		Preset:    n.Preset,
		Color:     n.Color,
		Position:  n.Position,
		Size:      geom.Size{W: e.layout.Width(n), H: e.layout.Height(n)},
		Collapsed: n.Collapsed,
		Sockets:   make([]SocketView, len(n.Sockets)),
	}
	for i, s := range n.Sockets {
		v.Sockets[i] = SocketView{
			Key:       s.Key.String(),
			Name:      s.Name(),
			Type:      string(s.Type),
			Direction: string(s.Direction()),
			Bottom:    s.IsBottom(),
			Anchor:    e.layout.Anchor(n, s),
		}
	}
	return v
}

// EdgeCurve returns the screen-space curve of an edge.
func (e *Editor) EdgeCurve(id string) (geom.Curve, bool) {
	ed, ok := e.graph.Edge(id)
	if !ok {
		return geom.Curve{}, false
	}
	return e.curve(ed)
}

func (e *Editor) curve(ed *graph.Edge) (geom.Curve, bool) {
	from, ok := e.layout.AnchorOf(e.graph, ed.From)
	if !ok {
		return geom.Curve{}, false
	}
	to, ok := e.layout.AnchorOf(e.graph, ed.To)
	if !ok {
		return geom.Curve{}, false
	}
	return geom.EdgeCurve(e.vp.WorldToScreen(from), e.vp.WorldToScreen(to)), true
}

// PreviewCurve returns the curve of the pending connection, if any.
// The curve always runs from the output end to the input end: an input
// origin is drawn from the pointer to the socket.
func (e *Editor) PreviewCurve() (geom.Curve, bool) {
	pv, ok := e.proto.Preview()
	if !ok {
		return geom.Curve{}, false
	}
	anchor, ok := e.layout.AnchorOf(e.graph, pv.Origin)
	if !ok {
		return geom.Curve{}, false
	}
	a := e.vp.WorldToScreen(anchor)
	if pv.Origin.Direction == preset.Output {
		return geom.EdgeCurve(a, pv.Pointer), true
	}
	return geom.EdgeCurve(pv.Pointer, a), true
}

func (e *Editor) drawEdges(edges []*graph.Edge) {
	for _, ed := range edges {
		if c, ok := e.curve(ed); ok {
			e.renderer.EdgePathChanged(ed.ID, c.Path())
		}
	}
}

func (e *Editor) drawPreview() {
	if c, ok := e.PreviewCurve(); ok {
		e.renderer.PreviewChanged(c.Path(), true)
		return
	}
	e.renderer.PreviewChanged("", false)
}

func (e *Editor) viewportChanged() {
	e.renderer.ViewportChanged(e.vp.State())
	e.drawEdges(e.graph.Edges())
	if _, ok := e.proto.Preview(); ok {
		e.drawPreview()
	}
}

// Redraw replays the complete state to the renderer: viewport, every node,
// every edge and the preview.
func (e *Editor) Redraw() {
	e.renderer.ViewportChanged(e.vp.State())
	for _, n := range e.graph.Nodes() {
		e.renderer.NodeChanged(e.view(n))
	}
	e.drawEdges(e.graph.Edges())
	e.drawPreview()
}

// listener forwards graph mutations to the renderer and the hooks.
type listener struct{ e *Editor }

func (l listener) NodeAdded(n *graph.Node) {
	l.e.renderer.NodeChanged(l.e.view(n))
	l.e.hooks().OnNodeCreated(n.Preset)
}

func (l listener) NodeRemoved(n *graph.Node) {
	l.e.renderer.NodeRemoved(n.ID)
	l.e.hooks().OnNodeDeleted(n.Preset)
}

func (l listener) NodeMoved(n *graph.Node) {
	l.e.renderer.NodePositionChanged(n.ID, n.Position)
	l.e.nodeGeometryChanged(n)
}

func (l listener) NodeChanged(n *graph.Node) {
	l.e.renderer.NodeChanged(l.e.view(n))
	l.e.nodeGeometryChanged(n)
}

func (l listener) EdgeAdded(ed *graph.Edge) {
	l.e.drawEdges([]*graph.Edge{ed})
	var outType, inType string
	if s, ok := l.e.graph.Resolve(ed.From); ok {
		outType = string(s.Type)
	}
	if s, ok := l.e.graph.Resolve(ed.To); ok {
		inType = string(s.Type)
	}
	l.e.hooks().OnConnect(outType, inType)
}

func (l listener) EdgeRemoved(ed *graph.Edge) {
	l.e.renderer.EdgeRemoved(ed.ID)
	l.e.hooks().OnDisconnect()
}

// nodeGeometryChanged redraws what depends on n's anchors.
func (e *Editor) nodeGeometryChanged(n *graph.Node) {
	e.drawEdges(e.graph.EdgesTouching(n.ID))
	if pv, ok := e.proto.Preview(); ok && pv.Origin.NodeID == n.ID {
		e.drawPreview()
	}
}
