// Package editor is the per-instance editing session that ties the graph,
// the viewport and the connection protocol together.
//
// An [Editor] consumes classified input from a presentation layer: pointer
// presses, moves and releases with a resolved [Hit], zoom steps and
// cancellation. It routes each gesture to exactly one owner:
//
//   - a press on a socket starts or completes a connection
//   - a press on a node header drags the node
//   - a press on an edge removes the edge
//   - a press on empty canvas pans the viewport
//
// Whichever owner claims the press keeps the pointer until release.
//
// The editor reports geometry back through a [Renderer]. Node positions
// are in world space; edge and preview paths are SVG path descriptions in
// screen space, recomputed whenever the viewport changes or an endpoint
// node moves.
//
// Editors are not safe for concurrent use. Hosts that serve several
// clients create one editor per client and feed it events from a single
// goroutine.
package editor
