package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/nodegraph/pkg/editor"
	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/geom"
	"github.com/matzehuels/nodegraph/pkg/observability"
	"github.com/matzehuels/nodegraph/pkg/snapshot"
	"github.com/matzehuels/nodegraph/pkg/viewport"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// Session message types beyond the editor's own events.
const (
	msgSave   = "save"
	msgRedraw = "redraw"
)

// clientMessage is an editor event, optionally resolved server side: when
// Resolve is set the hit of a down or up event is computed by hit testing
// instead of taken from the message.
type clientMessage struct {
	editor.Event
	Resolve bool `json:"resolve,omitempty"`
}

// serverMessage is one update sent to the client.
type serverMessage struct {
	Type     string           `json:"type"`
	ID       string           `json:"id,omitempty"`
	Node     *editor.NodeView `json:"node,omitempty"`
	Position *geom.Point      `json:"position,omitempty"`
	Path     string           `json:"path,omitempty"`
	Visible  bool             `json:"visible,omitempty"`
	Viewport *viewport.State  `json:"viewport,omitempty"`
	Graph    string           `json:"graph,omitempty"`
	Presets  []string         `json:"presets,omitempty"`
	Skipped  []string         `json:"skipped,omitempty"`
	Nodes    int              `json:"nodes,omitempty"`
	Edges    int              `json:"edges,omitempty"`
	Code     string           `json:"code,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// outbox collects the editor's render updates until the session flushes.
type outbox struct {
	msgs []serverMessage
}

func (o *outbox) push(m serverMessage) { o.msgs = append(o.msgs, m) }

func (o *outbox) NodeChanged(v editor.NodeView) {
	o.push(serverMessage{Type: "node", ID: v.ID, Node: &v})
}

func (o *outbox) NodePositionChanged(id string, pos geom.Point) {
	o.push(serverMessage{Type: "position", ID: id, Position: &pos})
}

func (o *outbox) NodeRemoved(id string) { o.push(serverMessage{Type: "node_removed", ID: id}) }

func (o *outbox) EdgePathChanged(id, path string) {
	o.push(serverMessage{Type: "edge", ID: id, Path: path})
}

func (o *outbox) EdgeRemoved(id string) { o.push(serverMessage{Type: "edge_removed", ID: id}) }

func (o *outbox) PreviewChanged(path string, visible bool) {
	o.push(serverMessage{Type: "preview", Path: path, Visible: visible})
}

func (o *outbox) ViewportChanged(st viewport.State) {
	o.push(serverMessage{Type: "viewport", Viewport: &st})
}

func (o *outbox) error(err error) {
	code := ngerrors.GetCode(err)
	if code == "" {
		code = ngerrors.ErrCodeInternal
	}
	o.push(serverMessage{Type: "error", Code: string(code), Message: ngerrors.UserMessage(err)})
}

// session is one live connection. Everything but pings runs on the
// goroutine that reads from the connection.
type session struct {
	srv    *Server
	conn   *websocket.Conn
	name   string
	editor *editor.Editor
	out    *outbox
	logger *log.Logger
	events int
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := ngerrors.ValidateGraphName(name); err != nil {
		writeError(w, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request.
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	out := &outbox{}
	logger := s.logger.With("graph", name)
	ed, err := editor.New(s.Catalog(),
		editor.WithRenderer(out),
		editor.WithLogger(logger),
		editor.WithZoomStep(s.zoomStep),
	)
	if err != nil {
		_ = conn.Close()
		return
	}
	sess := &session{srv: s, conn: conn, name: name, editor: ed, out: out, logger: logger}
	sess.run(r.Context())
}

func (ss *session) run(ctx context.Context) {
	defer ss.conn.Close()
	hooks := observability.HTTP()
	hooks.OnSessionOpen(ctx)
	defer func() { hooks.OnSessionClose(ctx, ss.events) }()
	ss.logger.Info("live session opened", "remote", ss.conn.RemoteAddr().String())

	if err := ss.open(ctx); err != nil {
		ss.logger.Error("live session failed to start", "err", err)
		return
	}

	done := make(chan struct{})
	defer close(done)
	go ss.keepalive(ctx, done)

	ss.conn.SetReadLimit(maxMessageSize)
	_ = ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	ss.conn.SetPongHandler(func(string) error {
		return ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ss.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ss.logger.Warn("live session read failed", "err", err)
			}
			break
		}
		ss.events++
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			ss.out.error(ngerrors.Wrap(ngerrors.ErrCodeInvalidInput, err, "decode message"))
		} else if err := ss.handle(ctx, msg); err != nil {
			ss.out.error(err)
		}
		if err := ss.flush(); err != nil {
			ss.logger.Warn("live session write failed", "err", err)
			break
		}
	}
	ss.logger.Info("live session closed", "events", ss.events)
}

// open loads the stored graph, if there is one, and greets the client with
// the catalog followed by the full scene.
func (ss *session) open(ctx context.Context) error {
	hello := serverMessage{Type: "hello", Graph: ss.name, Presets: ss.editor.Catalog().Names()}

	exists, err := ss.srv.graphs.Exists(ctx, ss.name)
	if err == nil && exists {
		var rep snapshot.Report
		rep, err = ss.editor.Load(ctx, ss.srv.graphs, ss.name)
		hello.Skipped = skipped(rep)
	}
	if err != nil {
		ss.out.msgs = nil
		ss.out.error(err)
		_ = ss.flush()
		return err
	}
	if !exists {
		ss.editor.Redraw()
	}
	ss.out.msgs = append([]serverMessage{hello}, ss.out.msgs...)
	return ss.flush()
}

func (ss *session) handle(ctx context.Context, msg clientMessage) error {
	switch msg.Type {
	case msgSave:
		if err := ss.editor.Save(ctx, ss.srv.graphs, ss.name); err != nil {
			return err
		}
		g := ss.editor.Graph()
		ss.out.push(serverMessage{Type: "saved", Graph: ss.name, Nodes: g.NodeCount(), Edges: g.EdgeCount()})
		return nil
	case msgRedraw:
		ss.editor.Redraw()
		return nil
	}
	ev := msg.Event
	if msg.Resolve && (ev.Type == editor.EventDown || ev.Type == editor.EventUp) {
		ev.Hit = ss.editor.HitTest(ev.Pos())
	}
	return ss.editor.Dispatch(ev)
}

func (ss *session) flush() error {
	msgs := ss.out.msgs
	ss.out.msgs = nil
	for _, m := range msgs {
		_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ss.conn.WriteJSON(m); err != nil {
			return err
		}
	}
	return nil
}

// keepalive pings the client and closes the connection when ctx ends, which
// unblocks the read loop.
func (ss *session) keepalive(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			_ = ss.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			_ = ss.conn.Close()
			return
		case <-ticker.C:
			if err := ss.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
