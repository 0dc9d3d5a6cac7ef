package graph

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/nodegraph/pkg/compat"
	"github.com/matzehuels/nodegraph/pkg/geom"
	"github.com/matzehuels/nodegraph/pkg/preset"
)

// Graph is the logical node graph of one editor.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	table     *compat.Table
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[endpoints]*Edge
	edgeIDs   map[string]endpoints
	edgeOrder []endpoints
	registry  *Registry
	listener  Listener
	newID     func() string
}

// Option configures a Graph.
type Option func(*Graph)

// WithListener installs a listener notified of every mutation.
func WithListener(l Listener) Option {
	return func(g *Graph) {
		if l != nil {
			g.listener = l
		}
	}
}

// WithIDGenerator replaces the node id generator. The default produces
// random UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(g *Graph) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// New creates an empty graph that checks connections against table.
// A nil table means [compat.Default].
func New(table *compat.Table, opts ...Option) *Graph {
	if table == nil {
		table = compat.Default()
	}
	g := &Graph{
		table:    table,
		nodes:    make(map[string]*Node),
		edges:    make(map[endpoints]*Edge),
		edgeIDs:  make(map[string]endpoints),
		registry: NewRegistry(),
		listener: NopListener{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetListener replaces the listener. A nil listener disables notifications.
func (g *Graph) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	g.listener = l
}

// Compat returns the compatibility table used by Connect.
func (g *Graph) Compat() *compat.Table { return g.table }

// Registry returns the socket registry. Callers must treat it as read-only.
func (g *Graph) Registry() *Registry { return g.registry }

// Resolve looks up a socket by its durable key.
func (g *Graph) Resolve(key SocketKey) (*Socket, bool) {
	return g.registry.Resolve(key)
}

// CreateNode instantiates p at pos. An empty id gets a fresh unique id.
// One socket is created per preset declaration and all of them are
// registered before CreateNode returns. On error nothing is changed.
func (g *Graph) CreateNode(p *preset.Preset, pos geom.Point, id string) (*Node, error) {
	if p == nil {
		return nil, ErrNilPreset
	}
	if id == "" {
		var err error
		if id, err = g.freshID(); err != nil {
			return nil, err
		}
	} else if _, dup := g.nodes[id]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNodeID, id)
	}

	n := newNode(id, p, pos)
	for i, s := range n.Sockets {
		if err := g.registry.Register(s.Key, s); err != nil {
			for _, done := range n.Sockets[:i] {
				g.registry.Unregister(done.Key)
			}
			return nil, err
		}
	}
	g.nodes[id] = n
	g.nodeOrder = append(g.nodeOrder, id)
	g.listener.NodeAdded(n)
	return n, nil
}

// maxIDAttempts bounds how often CreateNode asks the generator for an
// unused id.
const maxIDAttempts = 16

func (g *Graph) freshID() (string, error) {
	var id string
	for range maxIDAttempts {
		id = g.newID()
		if _, taken := g.nodes[id]; !taken && id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: generator kept returning %q", ErrDuplicateNodeID, id)
}

// DeleteNode removes a node, every edge touching it and its sockets.
// It reports whether the node existed.
func (g *Graph) DeleteNode(id string) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	for _, e := range g.EdgesTouching(id) {
		g.Disconnect(e.ID)
	}
	for _, s := range n.Sockets {
		g.registry.Unregister(s.Key)
	}
	delete(g.nodes, id)
	g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(x string) bool { return x == id })
	g.listener.NodeRemoved(n)
	return true
}

// MoveNode sets a node's world position.
func (g *Graph) MoveNode(id string, pos geom.Point) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	n.Position = pos
	g.listener.NodeMoved(n)
	return nil
}

// SetCollapsed sets a node's collapsed state. Edges are kept.
func (g *Graph) SetCollapsed(id string, collapsed bool) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if n.Collapsed == collapsed {
		return nil
	}
	n.Collapsed = collapsed
	g.listener.NodeChanged(n)
	return nil
}

// ToggleCollapsed flips a node's collapsed state and returns the new state.
func (g *Graph) ToggleCollapsed(id string) (bool, error) {
	n, ok := g.nodes[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return !n.Collapsed, g.SetCollapsed(id, !n.Collapsed)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Bounds returns the world-space bounding box of all nodes.
func (g *Graph) Bounds(l Layout) geom.Rect {
	var r geom.Rect
	for _, id := range g.nodeOrder {
		r = r.Union(l.Bounds(g.nodes[id]))
	}
	return r
}

// Clear removes every node and edge.
func (g *Graph) Clear() {
	for len(g.nodeOrder) > 0 {
		g.DeleteNode(g.nodeOrder[len(g.nodeOrder)-1])
	}
}
