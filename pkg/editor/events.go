package editor

import (
	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/geom"
)

// Event types accepted by Dispatch.
const (
	EventDown       = "down"
	EventMove       = "move"
	EventUp         = "up"
	EventZoom       = "zoom"
	EventCancel     = "cancel"
	EventAdd        = "add"
	EventDelete     = "delete"
	EventToggle     = "toggle"
	EventDisconnect = "disconnect"
	EventResetView  = "reset_view"
)

// Event is the serializable form of an editor input, as sent by remote
// presentation layers.
//
//	{"type":"down","x":120,"y":80,"hit":{"kind":"socket","node":"n1","socket":"X","direction":"out"}}
//	{"type":"zoom","x":400,"y":300,"steps":-1}
//	{"type":"add","preset":"Move","x":200,"y":200}
type Event struct {
	Type   string  `json:"type"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Hit    Hit     `json:"hit,omitzero"`
	Steps  float64 `json:"steps,omitempty"`
	Preset string  `json:"preset,omitempty"`
	Node   string  `json:"node,omitempty"`
	Edge   string  `json:"edge,omitempty"`
}

// Pos returns the event's screen position.
func (ev Event) Pos() geom.Point { return geom.Pt(ev.X, ev.Y) }

// Dispatch applies ev. Malformed events and failed node actions return
// coded errors; rejected connections do not.
func (e *Editor) Dispatch(ev Event) error {
	switch ev.Type {
	case EventDown:
		e.PointerDown(ev.Pos(), ev.Hit)
	case EventMove:
		e.PointerMove(ev.Pos())
	case EventUp:
		e.PointerUp(ev.Pos(), ev.Hit)
	case EventZoom:
		e.Zoom(ev.Steps, ev.Pos())
	case EventCancel:
		e.Cancel()
	case EventAdd:
		_, err := e.AddNode(ev.Preset, ev.Pos())
		return err
	case EventDelete:
		if !e.DeleteNode(ev.Node) {
			return ngerrors.New(ngerrors.ErrCodeNodeNotFound, "node %q not found", ev.Node)
		}
	case EventToggle:
		_, err := e.ToggleCollapsed(ev.Node)
		return err
	case EventDisconnect:
		e.Disconnect(ev.Edge)
	case EventResetView:
		e.ResetView()
	default:
		return ngerrors.New(ngerrors.ErrCodeInvalidInput, "unknown event type %q", ev.Type)
	}
	return nil
}
