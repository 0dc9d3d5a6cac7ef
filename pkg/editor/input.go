package editor

import (
	"fmt"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/geom"
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/protocol"
)

// HitKind classifies what lies under the pointer.
type HitKind int

const (
	HitCanvas HitKind = iota
	HitSocket
	HitHeader
	HitEdge
)

func (k HitKind) String() string {
	switch k {
	case HitCanvas:
		return "canvas"
	case HitSocket:
		return "socket"
	case HitHeader:
		return "header"
	case HitEdge:
		return "edge"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k HitKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Empty text is a
// canvas hit.
func (k *HitKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "canvas":
		*k = HitCanvas
	case "socket":
		*k = HitSocket
	case "header":
		*k = HitHeader
	case "edge":
		*k = HitEdge
	default:
		return fmt.Errorf("unknown hit kind %q", b)
	}
	return nil
}

// Hit is a classified pointer target. Node is set for socket and header
// hits, Socket and Direction for socket hits, Edge for edge hits.
type Hit struct {
	Kind      HitKind `json:"kind"`
	Node      string  `json:"node,omitempty"`
	Socket    string  `json:"socket,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Edge      string  `json:"edge,omitempty"`
}

// Canvas is the empty-canvas hit.
var Canvas = Hit{Kind: HitCanvas}

// SocketHit returns the hit for a socket key.
func SocketHit(k graph.SocketKey) Hit {
	return Hit{Kind: HitSocket, Node: k.NodeID, Socket: k.Name, Direction: string(k.Direction)}
}

// HeaderHit returns the hit for a node header.
func HeaderHit(nodeID string) Hit { return Hit{Kind: HitHeader, Node: nodeID} }

// EdgeHit returns the hit for an edge.
func EdgeHit(edgeID string) Hit { return Hit{Kind: HitEdge, Edge: edgeID} }

// SocketKey returns the socket identity of a socket hit.
func (h Hit) SocketKey() (graph.SocketKey, error) {
	if h.Kind != HitSocket {
		return graph.SocketKey{}, ngerrors.New(ngerrors.ErrCodeInvalidInput, "%s hit has no socket", h.Kind)
	}
	d, err := preset.ParseDirection(h.Direction)
	if err != nil {
		return graph.SocketKey{}, ngerrors.Wrap(ngerrors.ErrCodeInvalidInput, err, "socket hit")
	}
	return graph.Key(h.Node, h.Socket, d), nil
}

// PointerDown starts a gesture at a screen position. A press while another
// gesture holds the pointer is ignored. Any press away from a socket
// abandons a connection waiting for its second click.
func (e *Editor) PointerDown(pos geom.Point, hit Hit) {
	if e.gesture != gestureNone {
		return
	}
	if hit.Kind != HitSocket && e.proto.State() == protocol.AwaitingSecondClick {
		e.apply(e.proto.Cancel())
	}

	switch hit.Kind {
	case HitSocket:
		key, err := hit.SocketKey()
		if err != nil {
			e.logger.Debug("ignoring press", "err", err)
			return
		}
		if _, ok := e.graph.Resolve(key); !ok {
			e.logger.Debug("ignoring press on unknown socket", "socket", key)
			return
		}
		e.gesture = gestureConnect
		e.apply(e.proto.Press(key, pos))
	case HitHeader:
		n, ok := e.graph.Node(hit.Node)
		if !ok {
			return
		}
		e.gesture = gestureDrag
		e.dragID = n.ID
		e.grab = e.vp.ScreenToWorld(pos).Sub(n.Position)
	case HitEdge:
		e.Disconnect(hit.Edge)
	default:
		e.gesture = gesturePan
		e.last = pos
	}
}

// PointerMove advances the current gesture. Without one it only feeds the
// connection preview.
func (e *Editor) PointerMove(pos geom.Point) {
	switch e.gesture {
	case gesturePan:
		delta := pos.Sub(e.last)
		e.last = pos
		if delta != (geom.Point{}) {
			e.vp.Pan(delta)
			e.viewportChanged()
		}
	case gestureDrag:
		_ = e.graph.MoveNode(e.dragID, e.vp.ScreenToWorld(pos).Sub(e.grab))
	default:
		e.apply(e.proto.Move(pos))
	}
}

// PointerUp ends the current gesture. Only a connection gesture cares
// where the pointer was released.
func (e *Editor) PointerUp(pos geom.Point, hit Hit) {
	g := e.gesture
	e.endGesture()
	if g != gestureConnect {
		return
	}
	if hit.Kind == HitSocket {
		if key, err := hit.SocketKey(); err == nil {
			e.apply(e.proto.ReleaseOverSocket(key, pos))
			return
		}
	}
	e.apply(e.proto.ReleaseOverEmpty(pos))
}

// Zoom zooms by steps wheel notches anchored at a screen position.
func (e *Editor) Zoom(steps float64, pos geom.Point) {
	if e.vp.Zoom(steps, pos) {
		e.viewportChanged()
	}
}

// Cancel abandons any pending connection and releases the pointer.
func (e *Editor) Cancel() {
	e.endGesture()
	e.apply(e.proto.Cancel())
}

func (e *Editor) endGesture() {
	e.gesture = gestureNone
	e.dragID = ""
}

func (e *Editor) apply(out protocol.Outcome) {
	if out.PreviewChanged {
		e.drawPreview()
	}
}
