package snapshot

import (
	"fmt"
	"strings"

	"github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/geom"
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/viewport"
)

// Skipped records one node or edge that could not be restored.
type Skipped struct {
	Ref string // Node id or edge description
	Err error
}

func (s Skipped) String() string { return s.Ref + ": " + errors.UserMessage(s.Err) }

// Report lists everything Restore skipped.
type Report struct {
	SkippedNodes []Skipped
	SkippedEdges []Skipped
}

// Clean reports whether nothing was skipped.
func (r Report) Clean() bool { return len(r.SkippedNodes) == 0 && len(r.SkippedEdges) == 0 }

// String summarizes the report on one line per skip.
func (r Report) String() string {
	var b strings.Builder
	for _, s := range r.SkippedNodes {
		fmt.Fprintf(&b, "node %s\n", s)
	}
	for _, s := range r.SkippedEdges {
		fmt.Fprintf(&b, "edge %s\n", s)
	}
	return b.String()
}

// Result is a restored editor state.
type Result struct {
	Graph    *graph.Graph
	Viewport *viewport.Viewport
	Report   Report
}

// Restore rebuilds a graph from s using catalog. It never fails because of
// individual nodes or edges; those are skipped and reported. It fails only
// when s is nil or catalog is nil.
func Restore(s *Snapshot, catalog *preset.Catalog, opts ...graph.Option) (*Result, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidSnapshot, "nil snapshot")
	}
	if catalog == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil catalog")
	}

	g := graph.New(catalog.Compat(), opts...)
	res := &Result{Graph: g, Viewport: viewport.New()}

	for _, n := range s.Nodes {
		if n.ID == "" {
			res.Report.SkippedNodes = append(res.Report.SkippedNodes, Skipped{
				Ref: fmt.Sprintf("%q", n.Name),
				Err: errors.New(errors.ErrCodeInvalidSnapshot, "node without id"),
			})
			continue
		}
		p, err := catalog.Lookup(n.Name, n.PresetIndex)
		if err != nil {
			res.Report.SkippedNodes = append(res.Report.SkippedNodes, Skipped{Ref: n.ID, Err: err})
			continue
		}
		node, err := g.CreateNode(p, geom.Pt(n.X, n.Y), n.ID)
		if err != nil {
			res.Report.SkippedNodes = append(res.Report.SkippedNodes, Skipped{
				Ref: n.ID,
				Err: errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "create node"),
			})
			continue
		}
		if n.Collapsed {
			_ = g.SetCollapsed(node.ID, true)
		}
	}

	for _, e := range s.Edges {
		out, in := e.Keys()
		ref := out.String() + "->" + in.String()
		if _, ok := g.Resolve(out); !ok {
			res.Report.SkippedEdges = append(res.Report.SkippedEdges, Skipped{
				Ref: ref,
				Err: errors.New(errors.ErrCodeSocketNotFound, "socket %s not found", out),
			})
			continue
		}
		if _, ok := g.Resolve(in); !ok {
			res.Report.SkippedEdges = append(res.Report.SkippedEdges, Skipped{
				Ref: ref,
				Err: errors.New(errors.ErrCodeSocketNotFound, "socket %s not found", in),
			})
			continue
		}
		if _, err := g.Connect(out, in); err != nil {
			res.Report.SkippedEdges = append(res.Report.SkippedEdges, Skipped{Ref: ref, Err: err})
		}
	}

	res.Viewport.Restore(s.Viewport)
	return res, nil
}
