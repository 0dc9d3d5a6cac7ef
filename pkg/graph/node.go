package graph

import (
	"github.com/matzehuels/nodegraph/pkg/geom"
	"github.com/matzehuels/nodegraph/pkg/preset"
)

// Node is a preset instance placed on the canvas.
//
// Sockets are owned by the node and listed in preset declaration order.
// Callers must not modify a node's fields directly; use the [Graph] methods.
type Node struct {
	ID        string
	Preset    string     // Name of the preset the node was created from
	Position  geom.Point // Top-left corner in world space
	Collapsed bool
	Color     string
	// Width is the preset's minimum body width; zero means layout default.
	Width   float64
	Sockets []*Socket

	// Rows is the number of paired rows of normal sockets.
	Rows int
	// BottomRows is the number of bottom sockets, one per row.
	BottomRows int
}

// Socket returns the node's socket with the given name and direction.
func (n *Node) Socket(name string, d preset.Direction) (*Socket, bool) {
	for _, s := range n.Sockets {
		if s.Key.Name == name && s.Key.Direction == d {
			return s, true
		}
	}
	return nil, false
}

// Keys returns the keys of all the node's sockets.
func (n *Node) Keys() []SocketKey {
	keys := make([]SocketKey, len(n.Sockets))
	for i, s := range n.Sockets {
		keys[i] = s.Key
	}
	return keys
}

// newNode instantiates p and assigns socket slots. Normal inputs and outputs
// are numbered independently so they pair up row by row; bottom sockets are
// numbered inputs first, then outputs.
func newNode(id string, p *preset.Preset, pos geom.Point) *Node {
	n := &Node{
		ID:       id,
		Preset:   p.Name,
		Position: pos,
		Color:    p.Color,
		Width:    p.Width,
		Sockets:  make([]*Socket, 0, len(p.Sockets)),
	}

	var normalIn, normalOut, bottomIn, bottomOut int
	for _, d := range p.Sockets {
		if d.IsBottom() && d.Direction == preset.Input {
			bottomOut++
		}
	}

	for _, d := range p.Sockets {
		s := &Socket{
			Key:       Key(id, d.Name, d.Direction),
			Type:      d.Type,
			Placement: d.Placement,
		}
		switch {
		case d.IsBottom() && d.Direction == preset.Input:
			s.Slot = bottomIn
			bottomIn++
		case d.IsBottom():
			s.Slot = bottomOut
			bottomOut++
		case d.Direction == preset.Input:
			s.Slot = normalIn
			normalIn++
		default:
			s.Slot = normalOut
			normalOut++
		}
		n.Sockets = append(n.Sockets, s)
	}
	n.BottomRows = bottomOut
	n.Rows = max(normalIn, normalOut)
	return n
}
