package editor

import (
	"errors"

	"github.com/charmbracelet/log"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/geom"
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/observability"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/protocol"
	"github.com/matzehuels/nodegraph/pkg/viewport"
)

// gesture is the owner of the pointer between press and release.
type gesture int

const (
	gestureNone gesture = iota
	gesturePan
	gestureDrag
	gestureConnect
)

// Editor is one editing session. The zero value is not usable - use New.
type Editor struct {
	catalog  *preset.Catalog
	graph    *graph.Graph
	vp       *viewport.Viewport
	proto    *protocol.Protocol
	layout   graph.Layout
	renderer Renderer
	logger   *log.Logger
	zoomStep float64
	newID    func() string

	gesture gesture
	last    geom.Point // previous pointer position while panning
	dragID  string
	grab    geom.Point // pointer minus node origin, world space
}

// Option configures an Editor.
type Option func(*Editor)

// WithRenderer sets the renderer. The default discards all updates.
func WithRenderer(r Renderer) Option {
	return func(e *Editor) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLayout overrides the node layout metrics.
func WithLayout(l graph.Layout) Option {
	return func(e *Editor) { e.layout = l }
}

// WithZoomStep sets the per-step zoom increment.
func WithZoomStep(step float64) Option {
	return func(e *Editor) { e.zoomStep = step }
}

// WithIDGenerator replaces the node id generator, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) { e.newID = fn }
}

// New returns an empty editor over catalog.
func New(catalog *preset.Catalog, opts ...Option) (*Editor, error) {
	if catalog == nil {
		return nil, ngerrors.New(ngerrors.ErrCodeInvalidInput, "editor needs a preset catalog")
	}
	e := &Editor{
		catalog:  catalog,
		layout:   graph.DefaultLayout(),
		renderer: NopRenderer{},
		logger:   log.Default(),
		zoomStep: viewport.ZoomStep,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.graph = graph.New(catalog.Compat(), append(e.graphOptions(), graph.WithListener(listener{e}))...)
	e.vp = viewport.New()
	e.vp.SetZoomStep(e.zoomStep)
	e.proto = protocol.New(e, e.logger)
	return e, nil
}

// graphOptions are the options every graph of this editor is built with.
func (e *Editor) graphOptions() []graph.Option {
	var opts []graph.Option
	if e.newID != nil {
		opts = append(opts, graph.WithIDGenerator(e.newID))
	}
	return opts
}

func (e *Editor) hooks() observability.EditorHooks { return observability.Editor() }

// Graph returns the live graph. Callers must not mutate it directly.
func (e *Editor) Graph() *graph.Graph { return e.graph }

// Viewport returns the live viewport.
func (e *Editor) Viewport() *viewport.Viewport { return e.vp }

// Catalog returns the catalog the editor was created with.
func (e *Editor) Catalog() *preset.Catalog { return e.catalog }

// Layout returns the node layout metrics.
func (e *Editor) Layout() graph.Layout { return e.layout }

// Protocol returns the connection state machine.
func (e *Editor) Protocol() *protocol.Protocol { return e.proto }

// AddNode places a node of the named preset at a screen position.
func (e *Editor) AddNode(presetName string, screen geom.Point) (*graph.Node, error) {
	p, ok := e.catalog.ByName(presetName)
	if !ok {
		return nil, ngerrors.New(ngerrors.ErrCodePresetNotFound, "preset %q not found", presetName)
	}
	n, err := e.graph.CreateNode(p, e.vp.ScreenToWorld(screen), "")
	if err != nil {
		return nil, ngerrors.Wrap(ngerrors.ErrCodeInternal, err, "create %s node", presetName)
	}
	e.logger.Debug("node added", "id", n.ID, "preset", n.Preset, "pos", n.Position)
	return n, nil
}

// DeleteNode removes a node and its edges. A pending connection from one
// of its sockets is cancelled first. Deleting a missing node is a no-op.
func (e *Editor) DeleteNode(id string) bool {
	if pending, ok := e.proto.Pending(); ok && pending.NodeID == id {
		e.Cancel()
	}
	if e.gesture == gestureDrag && e.dragID == id {
		e.endGesture()
	}
	if !e.graph.DeleteNode(id) {
		return false
	}
	e.logger.Debug("node deleted", "id", id)
	return true
}

// MoveNode moves a node to a world position.
func (e *Editor) MoveNode(id string, pos geom.Point) error {
	if err := e.graph.MoveNode(id, pos); err != nil {
		return ngerrors.Wrap(ngerrors.ErrCodeNodeNotFound, err, "move node")
	}
	return nil
}

// ToggleCollapsed flips a node between collapsed and expanded.
func (e *Editor) ToggleCollapsed(id string) (bool, error) {
	collapsed, err := e.graph.ToggleCollapsed(id)
	if err != nil {
		return false, ngerrors.Wrap(ngerrors.ErrCodeNodeNotFound, err, "toggle node")
	}
	return collapsed, nil
}

// Disconnect removes an edge. Removing a missing edge is a no-op.
func (e *Editor) Disconnect(id string) bool {
	return e.graph.Disconnect(id)
}

// ConnectSockets connects two sockets in either order. Rejections are
// logged and counted; the caller gets the REJECTED error.
func (e *Editor) ConnectSockets(a, b graph.SocketKey) (*graph.Edge, error) {
	ed, err := e.graph.ConnectSockets(a, b)
	if err != nil {
		e.hooks().OnConnectionRejected(rejectionReason(err))
		return nil, err
	}
	return ed, nil
}

// Clear removes every node and edge and cancels any gesture.
func (e *Editor) Clear() {
	e.Cancel()
	e.graph.Clear()
}

// FitView scales and pans so every node fits on a screen of the given size.
func (e *Editor) FitView(screen geom.Size) {
	e.vp.FitBounds(e.graph.Bounds(e.layout), screen, 40)
	e.viewportChanged()
}

// ResetView restores the default offset and scale.
func (e *Editor) ResetView() {
	e.vp.Reset()
	e.viewportChanged()
}

// VisibleNodes returns the nodes overlapping a screen of the given size.
func (e *Editor) VisibleNodes(screen geom.Size) []*graph.Node {
	var out []*graph.Node
	for _, n := range e.graph.Nodes() {
		if e.vp.Visible(e.layout.Bounds(n), screen, 0) {
			out = append(out, n)
		}
	}
	return out
}

var rejectionSentinels = []error{
	graph.ErrUnknownSocket,
	graph.ErrSelfLoop,
	graph.ErrDirection,
	graph.ErrDuplicateEdge,
	graph.ErrIncompatible,
}

func rejectionReason(err error) string {
	for _, s := range rejectionSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "unknown"
}
