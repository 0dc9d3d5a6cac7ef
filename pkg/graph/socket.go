package graph

import (
	"cmp"
	"strings"

	"github.com/matzehuels/nodegraph/pkg/compat"
	"github.com/matzehuels/nodegraph/pkg/preset"
)

// SocketKey is the durable identity of a socket.
type SocketKey struct {
	NodeID    string           `json:"nodeId"`
	Name      string           `json:"name"`
	Direction preset.Direction `json:"direction"`
}

// Key builds a SocketKey.
func Key(nodeID, name string, d preset.Direction) SocketKey {
	return SocketKey{NodeID: nodeID, Name: name, Direction: d}
}

// keyPart escapes the separator inside a key component, so the joined form
// stays unambiguous for ids and names that contain dashes.
var keyPart = strings.NewReplacer("%", "%25", "-", "%2D")

// String returns the "nodeId-name-in|out" form. Any "-" or "%" inside the
// node id or socket name is percent-encoded.
func (k SocketKey) String() string {
	return keyPart.Replace(k.NodeID) + "-" + keyPart.Replace(k.Name) + "-" + k.Direction.Short()
}

// IsZero reports whether k is the zero key.
func (k SocketKey) IsZero() bool { return k == SocketKey{} }

func compareKeys(a, b SocketKey) int {
	if c := cmp.Compare(a.NodeID, b.NodeID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Direction, b.Direction)
}

// Socket is a typed connection point owned by a node.
type Socket struct {
	Key       SocketKey
	Type      compat.Type
	Placement preset.Placement
	// Slot is the row index within the socket's block (normal or bottom).
	Slot int
}

// NodeID returns the id of the owning node.
func (s *Socket) NodeID() string { return s.Key.NodeID }

// Name returns the socket name.
func (s *Socket) Name() string { return s.Key.Name }

// Direction returns whether the socket is an input or an output.
func (s *Socket) Direction() preset.Direction { return s.Key.Direction }

// IsOutput reports whether the socket is an output.
func (s *Socket) IsOutput() bool { return s.Key.Direction == preset.Output }

// IsBottom reports whether the socket is laid out in the bottom block.
func (s *Socket) IsBottom() bool { return s.Placement == preset.Bottom }
