package protocol

import "github.com/matzehuels/nodegraph/pkg/graph"

type handler func(p *Protocol, ev Event) Outcome

// transitions is indexed by [State][EventKind]. Every cell is populated.
var transitions = [numStates][numEvents]handler{
	Idle: {
		Press:             startDrag,
		ReleaseOverSocket: ignore,
		ReleaseOverEmpty:  ignore,
		Move:              ignore,
		Cancel:            ignore,
	},
	Dragging: {
		Press:             ignore,
		ReleaseOverSocket: finishDrag,
		ReleaseOverEmpty:  deferDrag,
		Move:              track,
		Cancel:            reset,
	},
	AwaitingSecondClick: {
		Press:             secondClick,
		ReleaseOverSocket: ignore,
		ReleaseOverEmpty:  ignore,
		Move:              track,
		Cancel:            reset,
	},
}

func ignore(*Protocol, Event) Outcome { return Outcome{} }

func reset(p *Protocol, _ Event) Outcome {
	p.state = Idle
	return Outcome{}
}

// startDrag remembers the pressed socket and begins previewing.
func startDrag(p *Protocol, ev Event) Outcome {
	p.state = Dragging
	p.origin = ev.Socket
	p.pointer = ev.Pointer
	p.previewing = true
	return Outcome{}
}

// track moves the preview end. In AwaitingSecondClick this resumes the
// preview without dropping the origin.
func track(p *Protocol, ev Event) Outcome {
	p.pointer = ev.Pointer
	p.previewing = true
	return Outcome{}
}

// deferDrag keeps the origin for a later click and hides the preview.
func deferDrag(p *Protocol, ev Event) Outcome {
	p.state = AwaitingSecondClick
	p.pointer = ev.Pointer
	p.previewing = false
	return Outcome{}
}

// finishDrag connects on release. Releasing on the origin itself is a
// click, which leaves the origin selected.
func finishDrag(p *Protocol, ev Event) Outcome {
	if ev.Socket == p.origin {
		return deferDrag(p, ev)
	}
	return p.attempt(ev.Socket)
}

// secondClick connects to the clicked socket. Clicking the origin again
// deselects it.
func secondClick(p *Protocol, ev Event) Outcome {
	if ev.Socket == p.origin {
		p.state = Idle
		return Outcome{}
	}
	return p.attempt(ev.Socket)
}

func (p *Protocol) attempt(target graph.SocketKey) Outcome {
	origin := p.origin
	p.state = Idle
	out := Outcome{Attempted: true}
	e, err := p.conn.ConnectSockets(origin, target)
	if err != nil {
		p.logger.Debug("connection rejected", "from", origin, "to", target, "reason", err)
		out.Rejection = err
		return out
	}
	p.logger.Debug("connected", "edge", e.ID)
	out.Edge = e
	return out
}
