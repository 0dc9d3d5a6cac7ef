package snapshot

import (
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/viewport"
)

// Snapshot is the persisted form of an editor.
type Snapshot struct {
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Viewport viewport.State `json:"viewport"`
}

// Node is a persisted node.
type Node struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"` // Preset name
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	PresetIndex int     `json:"presetIndex"`
	Collapsed   bool    `json:"collapsed,omitempty"`
}

// Edge is a persisted edge from an output socket to an input socket.
type Edge struct {
	StartNodeID     string `json:"startNodeId"`
	StartSocketName string `json:"startSocketName"`
	EndNodeID       string `json:"endNodeId"`
	EndSocketName   string `json:"endSocketName"`
}

// Keys returns the durable socket keys of both endpoints.
func (e Edge) Keys() (out, in graph.SocketKey) {
	return graph.Key(e.StartNodeID, e.StartSocketName, preset.Output),
		graph.Key(e.EndNodeID, e.EndSocketName, preset.Input)
}

// Capture records g and vp. Preset indexes come from catalog; a nil catalog
// or a preset missing from it records index -1.
func Capture(g *graph.Graph, vp *viewport.Viewport, catalog *preset.Catalog) *Snapshot {
	s := &Snapshot{
		Nodes: make([]Node, 0, g.NodeCount()),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		idx := -1
		if catalog != nil {
			idx = catalog.Index(n.Preset)
		}
		s.Nodes = append(s.Nodes, Node{
			ID:          n.ID,
			Name:        n.Preset,
			X:           n.Position.X,
			Y:           n.Position.Y,
			PresetIndex: idx,
			Collapsed:   n.Collapsed,
		})
	}
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, Edge{
			StartNodeID:     e.From.NodeID,
			StartSocketName: e.From.Name,
			EndNodeID:       e.To.NodeID,
			EndSocketName:   e.To.Name,
		})
	}
	if vp != nil {
		s.Viewport = vp.State()
	} else {
		s.Viewport = viewport.New().State()
	}
	return s
}
