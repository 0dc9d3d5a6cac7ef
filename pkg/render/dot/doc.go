// Package dot exports node graphs as Graphviz diagrams.
//
// Each node becomes a record whose title row carries the preset name and
// whose body lists input ports on the left and output ports on the right.
// Bottom sockets get a row of their own beneath the body. Edges run from
// the output port to the input port, so the diagram reads left to right:
//
//	src := dot.ToDOT(g, dot.Options{Types: true})
//	svg, err := dot.RenderSVG(src)
//
// Collapsed nodes are drawn as their title only and their edges attach to
// the node itself.
//
// [RenderSVG] renders in-process with [github.com/goccy/go-graphviz]; no
// Graphviz installation is needed.
package dot
