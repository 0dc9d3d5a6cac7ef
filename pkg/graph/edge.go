package graph

import (
	"slices"

	"github.com/matzehuels/nodegraph/pkg/preset"
)

// Edge is a directed connection from an output socket to an input socket.
type Edge struct {
	ID   string
	From SocketKey // Output side
	To   SocketKey // Input side
}

// endpoints identifies an edge inside the store.
type endpoints struct{ from, to SocketKey }

// EdgeID derives an edge id from its endpoints, so ids are stable across
// save and load. Distinct endpoint pairs always yield distinct ids.
func EdgeID(from, to SocketKey) string {
	return from.String() + "->" + to.String()
}

// Touches reports whether either endpoint belongs to nodeID.
func (e *Edge) Touches(nodeID string) bool {
	return e.From.NodeID == nodeID || e.To.NodeID == nodeID
}

// Orient returns a and b reordered so the output comes first. Two sockets
// with the same direction are rejected.
func Orient(a, b *Socket) (out, in *Socket, err error) {
	if a.Direction() == b.Direction() {
		return nil, nil, rejected(ErrDirection, "both sockets are %ss", a.Direction())
	}
	if a.Direction() == preset.Output {
		return a, b, nil
	}
	return b, a, nil
}

// Connect stores an edge from the output socket out to the input socket in.
// The pair must already be oriented. On rejection the graph is unchanged and
// the error wraps one of ErrUnknownSocket, ErrSelfLoop, ErrDirection,
// ErrDuplicateEdge or ErrIncompatible.
func (g *Graph) Connect(out, in SocketKey) (*Edge, error) {
	src, ok := g.registry.Resolve(out)
	if !ok {
		return nil, rejected(ErrUnknownSocket, "%s", out)
	}
	dst, ok := g.registry.Resolve(in)
	if !ok {
		return nil, rejected(ErrUnknownSocket, "%s", in)
	}
	if src.NodeID() == dst.NodeID() {
		return nil, rejected(ErrSelfLoop, "%s -> %s", out, in)
	}
	if src.Direction() != preset.Output || dst.Direction() != preset.Input {
		return nil, rejected(ErrDirection, "%s -> %s", out, in)
	}
	ends := endpoints{out, in}
	if _, dup := g.edges[ends]; dup {
		return nil, rejected(ErrDuplicateEdge, "%s -> %s", out, in)
	}
	if !g.table.Compatible(src.Type, dst.Type) {
		return nil, rejected(ErrIncompatible, "%s (%s) -> %s (%s)", out, src.Type, in, dst.Type)
	}

	e := &Edge{ID: EdgeID(out, in), From: out, To: in}
	g.edges[ends] = e
	g.edgeIDs[e.ID] = ends
	g.edgeOrder = append(g.edgeOrder, ends)
	g.listener.EdgeAdded(e)
	return e, nil
}

// ConnectSockets resolves two sockets given in any order, orients them and
// connects them. It is the single connect path used by interactive editing.
func (g *Graph) ConnectSockets(a, b SocketKey) (*Edge, error) {
	sa, ok := g.registry.Resolve(a)
	if !ok {
		return nil, rejected(ErrUnknownSocket, "%s", a)
	}
	sb, ok := g.registry.Resolve(b)
	if !ok {
		return nil, rejected(ErrUnknownSocket, "%s", b)
	}
	out, in, err := Orient(sa, sb)
	if err != nil {
		return nil, err
	}
	return g.Connect(out.Key, in.Key)
}

// Disconnect removes the edge with the given id. It reports whether an edge
// was removed.
func (g *Graph) Disconnect(id string) bool {
	ends, ok := g.edgeIDs[id]
	if !ok {
		return false
	}
	e := g.edges[ends]
	delete(g.edges, ends)
	delete(g.edgeIDs, id)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(x endpoints) bool { return x == ends })
	g.listener.EdgeRemoved(e)
	return true
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (*Edge, bool) {
	ends, ok := g.edgeIDs[id]
	if !ok {
		return nil, false
	}
	return g.edges[ends], true
}

// Edges returns all edges in creation order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, ends := range g.edgeOrder {
		out = append(out, g.edges[ends])
	}
	return out
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// EdgesTouching returns every edge with an endpoint on nodeID, in creation order.
func (g *Graph) EdgesTouching(nodeID string) []*Edge {
	var out []*Edge
	for _, ends := range g.edgeOrder {
		if e := g.edges[ends]; e.Touches(nodeID) {
			out = append(out, e)
		}
	}
	return out
}

// EdgesAt returns the edges attached to the socket with the given key.
func (g *Graph) EdgesAt(key SocketKey) []*Edge {
	var out []*Edge
	for _, ends := range g.edgeOrder {
		if e := g.edges[ends]; e.From == key || e.To == key {
			out = append(out, e)
		}
	}
	return out
}
