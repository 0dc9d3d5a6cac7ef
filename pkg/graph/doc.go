// Package graph holds the logical node graph of an editor: nodes, their
// sockets, the edges between sockets and the socket registry that resolves
// durable socket keys to live sockets.
//
// # Overview
//
// A [Graph] owns three stores that are only ever mutated together:
//
//   - the node store, holding [Node] values created from presets
//   - the edge store, holding directed [Edge] values from an output socket
//     to an input socket
//   - the [Registry], a derived index from [SocketKey] to [Socket]
//
// Every exported mutation keeps all three consistent before it returns.
// There is no window in which a socket is registered without its node, or an
// edge points at an unregistered socket.
//
// # Socket Identity
//
// A socket is identified by the triple (node id, socket name, direction).
// [SocketKey] is that triple; its string form is "nodeId-name-in" or
// "nodeId-name-out". Keys survive save and load, pointers do not, so all
// cross-references (edges, snapshots, the connection protocol) use keys.
//
// # Connecting
//
// [Graph.Connect] takes an already oriented (output, input) pair and rejects
// unknown sockets, self-loops, wrong orientation, duplicates and
// incompatible types. [Graph.ConnectSockets] accepts the two sockets in
// either order, orients them with [Orient] and then connects; it is the path
// the interactive protocol uses. Rejections wrap one of the sentinel errors
// ([ErrSelfLoop], [ErrDirection], ...) in an error with code REJECTED:
//
//	e, err := g.ConnectSockets(a, b)
//	if errors.Is(err, graph.ErrDuplicateEdge) {
//	    // nothing happened
//	}
//
// # Layout
//
// [Layout] turns a node and one of its sockets into a world-space anchor
// point. Normal sockets sit in paired rows (inputs on the left edge, outputs
// on the right); bottom sockets get one row each beneath the body, inputs
// first. Row slots are assigned once at creation from declaration order, so
// a reloaded graph has identical rows.
//
// # Listening
//
// A [Listener] passed with [WithListener] is told about every change, which
// is how an editor knows which edge paths to recompute. Embed [NopListener]
// to implement only the callbacks you need.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. Each editor owns its own graph
// and feeds it one event at a time.
package graph
