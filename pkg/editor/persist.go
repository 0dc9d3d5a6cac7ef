package editor

import (
	"context"
	"time"

	"github.com/matzehuels/nodegraph/pkg/snapshot"
	"github.com/matzehuels/nodegraph/pkg/storage"
)

// Snapshot captures the current graph and viewport.
func (e *Editor) Snapshot() *snapshot.Snapshot {
	return snapshot.Capture(e.graph, e.vp, e.catalog)
}

// Save serializes the editor and stores it under name, replacing any
// previous graph of that name. The editor is not modified.
func (e *Editor) Save(ctx context.Context, graphs *storage.Graphs, name string) error {
	start := time.Now()
	s := e.Snapshot()
	data, err := snapshot.Marshal(s)
	if err == nil {
		err = graphs.Save(ctx, name, data)
	}
	e.hooks().OnSave(len(s.Nodes), len(s.Edges), time.Since(start), err)
	if err != nil {
		e.logger.Error("save failed", "graph", name, "err", err)
		return err
	}
	e.logger.Info("saved", "graph", name, "nodes", len(s.Nodes), "edges", len(s.Edges))
	return nil
}

// Load replaces the editor's contents with the graph stored under name.
// On any error the current state is left untouched.
func (e *Editor) Load(ctx context.Context, graphs *storage.Graphs, name string) (snapshot.Report, error) {
	start := time.Now()
	data, err := graphs.Load(ctx, name)
	if err != nil {
		e.hooks().OnLoad(0, 0, 0, time.Since(start), err)
		e.logger.Error("load failed", "graph", name, "err", err)
		return snapshot.Report{}, err
	}
	s, err := snapshot.Unmarshal(data)
	if err != nil {
		e.hooks().OnLoad(0, 0, 0, time.Since(start), err)
		e.logger.Error("load failed", "graph", name, "err", err)
		return snapshot.Report{}, err
	}
	rep, err := e.Restore(s)
	e.hooks().OnLoad(e.graph.NodeCount(), e.graph.EdgeCount(),
		len(rep.SkippedNodes)+len(rep.SkippedEdges), time.Since(start), err)
	return rep, err
}

// Restore replaces the editor's contents with s. The new graph is built
// completely before the old one is dropped, so a failed restore leaves the
// editor as it was. Nodes and edges that do not resolve against the catalog
// are skipped and listed in the report.
func (e *Editor) Restore(s *snapshot.Snapshot) (snapshot.Report, error) {
	res, err := snapshot.Restore(s, e.catalog, e.graphOptions()...)
	if err != nil {
		return snapshot.Report{}, err
	}

	e.Cancel()
	for _, ed := range e.graph.Edges() {
		e.renderer.EdgeRemoved(ed.ID)
	}
	for _, n := range e.graph.Nodes() {
		e.renderer.NodeRemoved(n.ID)
	}

	e.graph = res.Graph
	e.graph.SetListener(listener{e})
	e.vp = res.Viewport
	e.vp.SetZoomStep(e.zoomStep)
	e.Redraw()

	if !res.Report.Clean() {
		e.logger.Warn("restored with skipped entries", "report", res.Report.String())
	}
	return res.Report, nil
}
