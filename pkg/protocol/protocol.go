package protocol

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodegraph/pkg/geom"
	"github.com/matzehuels/nodegraph/pkg/graph"
)

// State is a protocol state.
type State int

const (
	Idle State = iota
	Dragging
	AwaitingSecondClick
	numStates
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case AwaitingSecondClick:
		return "awaiting-second-click"
	}
	return "unknown"
}

// EventKind classifies protocol input.
type EventKind int

const (
	// Press is a pointer press on a socket.
	Press EventKind = iota
	// ReleaseOverSocket is a pointer release on a socket.
	ReleaseOverSocket
	// ReleaseOverEmpty is a pointer release anywhere that is not a socket.
	ReleaseOverEmpty
	// Move is a pointer move in screen space.
	Move
	// Cancel abandons any pending connection.
	Cancel
	numEvents
)

func (k EventKind) String() string {
	switch k {
	case Press:
		return "press"
	case ReleaseOverSocket:
		return "release-over-socket"
	case ReleaseOverEmpty:
		return "release-over-empty"
	case Move:
		return "move"
	case Cancel:
		return "cancel"
	}
	return "unknown"
}

// Event is one protocol input. Socket is set for Press and
// ReleaseOverSocket; Pointer is the screen position where known.
type Event struct {
	Kind    EventKind
	Socket  graph.SocketKey
	Pointer geom.Point
}

// Connector creates edges. *graph.Graph satisfies it.
type Connector interface {
	ConnectSockets(a, b graph.SocketKey) (*graph.Edge, error)
}

// Outcome describes what an event did.
type Outcome struct {
	From, To State
	// Attempted is set when the event tried to create an edge.
	Attempted bool
	// Edge is the created edge, nil unless the attempt succeeded.
	Edge *graph.Edge
	// Rejection is the connector's error when the attempt was refused.
	Rejection error
	// PreviewChanged is set when the preview appeared, moved or vanished.
	PreviewChanged bool
}

// Preview is the transient edge drawn from the origin socket to the pointer.
type Preview struct {
	Origin  graph.SocketKey
	Pointer geom.Point
}

// Protocol is the connection state machine of one editor.
// It is not safe for concurrent use.
type Protocol struct {
	conn       Connector
	logger     *log.Logger
	state      State
	origin     graph.SocketKey
	previewing bool
	pointer    geom.Point
}

// New returns an idle protocol that creates edges through conn.
// A nil logger uses log.Default().
func New(conn Connector, logger *log.Logger) *Protocol {
	if logger == nil {
		logger = log.Default()
	}
	return &Protocol{conn: conn, logger: logger}
}

// State returns the current state.
func (p *Protocol) State() State { return p.state }

// Pending returns the remembered origin socket while Dragging or
// AwaitingSecondClick.
func (p *Protocol) Pending() (graph.SocketKey, bool) {
	if p.state == Idle {
		return graph.SocketKey{}, false
	}
	return p.origin, true
}

// Preview returns the preview edge if one is being drawn.
func (p *Protocol) Preview() (Preview, bool) {
	if p.state == Idle || !p.previewing {
		return Preview{}, false
	}
	return Preview{Origin: p.origin, Pointer: p.pointer}, true
}

// Handle feeds one event through the transition table.
func (p *Protocol) Handle(ev Event) Outcome {
	before := p.state
	hadPreview := p.previewing
	out := transitions[p.state][ev.Kind](p, ev)
	out.From, out.To = before, p.state
	if p.state == Idle {
		p.origin = graph.SocketKey{}
		p.previewing = false
	}
	if hadPreview != p.previewing || (p.previewing && ev.Kind == Move) {
		out.PreviewChanged = true
	}
	if before != p.state {
		p.logger.Debug("connection state", "from", before, "to", p.state, "event", ev.Kind)
	}
	return out
}

// Press is shorthand for Handle(Event{Kind: Press, ...}).
func (p *Protocol) Press(s graph.SocketKey, pointer geom.Point) Outcome {
	return p.Handle(Event{Kind: Press, Socket: s, Pointer: pointer})
}

// ReleaseOverSocket is shorthand for a release on socket s.
func (p *Protocol) ReleaseOverSocket(s graph.SocketKey, pointer geom.Point) Outcome {
	return p.Handle(Event{Kind: ReleaseOverSocket, Socket: s, Pointer: pointer})
}

// ReleaseOverEmpty is shorthand for a release away from any socket.
func (p *Protocol) ReleaseOverEmpty(pointer geom.Point) Outcome {
	return p.Handle(Event{Kind: ReleaseOverEmpty, Pointer: pointer})
}

// Move is shorthand for a pointer move.
func (p *Protocol) Move(pointer geom.Point) Outcome {
	return p.Handle(Event{Kind: Move, Pointer: pointer})
}

// Cancel is shorthand for abandoning the pending connection.
func (p *Protocol) Cancel() Outcome {
	return p.Handle(Event{Kind: Cancel})
}
