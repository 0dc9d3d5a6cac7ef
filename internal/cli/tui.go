package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/nodegraph/pkg/editor"
	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/geom"
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/protocol"
	"github.com/matzehuels/nodegraph/pkg/storage"
	"github.com/matzehuels/nodegraph/pkg/viewport"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// Terminal cells are mapped to a nominal pixel grid so zoom anchors and new
// node positions behave like they would on a canvas.
const (
	cellWidth  = 8
	cellHeight = 16
	moveStep   = 20
)

// =============================================================================
// activity - renderer feeding the status line
// =============================================================================

// activity is the editor renderer of the TUI. The table is redrawn from the
// graph on every frame, so it only keeps what the graph cannot tell: the
// latest change and whether a connection preview is showing.
type activity struct {
	edges   map[string]bool
	last    string
	preview bool
}

func newActivity() *activity { return &activity{edges: map[string]bool{}} }

func (a *activity) NodeChanged(v editor.NodeView) {
	a.last = fmt.Sprintf("node %s (%s)", shortID(v.ID), v.Preset)
}

func (a *activity) NodePositionChanged(id string, p geom.Point) {
	a.last = fmt.Sprintf("moved %s to %.0f, %.0f", shortID(id), p.X, p.Y)
}

func (a *activity) NodeRemoved(id string) { a.last = "removed node " + shortID(id) }

func (a *activity) EdgePathChanged(id, _ string) {
	if !a.edges[id] {
		a.edges[id] = true
		a.last = "connected " + id
	}
}

func (a *activity) EdgeRemoved(id string) {
	delete(a.edges, id)
	a.last = "disconnected " + id
}

func (a *activity) PreviewChanged(_ string, visible bool) { a.preview = visible }

func (a *activity) ViewportChanged(st viewport.State) {
	a.last = fmt.Sprintf("view %.0f, %.0f @ %.0f%%", st.OffsetX, st.OffsetY, st.Scale*100)
}

// shortID trims generated ids for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// =============================================================================
// EditModel - Interactive graph editor
// =============================================================================

type editMode int

const (
	modeNodes editMode = iota
	modePresets
	modeSockets
)

// EditModel is the bubbletea model of the terminal editor.
type EditModel struct {
	ctx    context.Context
	editor *editor.Editor
	graphs *storage.Graphs
	name   string
	act    *activity

	mode         editMode
	cursor       int
	presetCursor int
	socketCursor int
	width        int
	height       int

	status   string
	failed   bool
	dirty    bool
	quitting bool
}

// NewEditModel creates an editor model for the graph stored under name.
// The editor must have been created with act as its renderer.
func NewEditModel(ctx context.Context, ed *editor.Editor, act *activity, graphs *storage.Graphs, name string) EditModel {
	return EditModel{
		ctx:    ctx,
		editor: ed,
		graphs: graphs,
		name:   name,
		act:    act,
		width:  100,
		height: 30,
	}
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

// screen is the nominal canvas size of the terminal.
func (m EditModel) screen() geom.Size {
	return geom.Size{W: float64(m.width * cellWidth), H: float64(m.height * cellHeight)}
}

func (m EditModel) selected() (*graph.Node, bool) {
	nodes := m.editor.Graph().Nodes()
	if m.cursor < 0 || m.cursor >= len(nodes) {
		return nil, false
	}
	return nodes[m.cursor], true
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modePresets:
			return m.updatePresets(msg), nil
		case modeSockets:
			return m.updateSockets(msg), nil
		}
		return m.updateNodes(msg)
	}
	return m, nil
}

func (m EditModel) updateNodes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.editor.Graph()
	m.status, m.failed = "", false

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < g.NodeCount()-1 {
			m.cursor++
		}
	case "a":
		m.mode = modePresets
	case "enter", "c":
		n, ok := m.selected()
		if !ok {
			break
		}
		if n.Collapsed {
			m.setError(ngerrors.New(ngerrors.ErrCodeRejected, "expand %s to reach its sockets", shortID(n.ID)))
			break
		}
		m.mode, m.socketCursor = modeSockets, 0
	case "x", "delete":
		if n, ok := m.selected(); ok && m.editor.DeleteNode(n.ID) {
			m.dirty = true
			if m.cursor >= g.NodeCount() && m.cursor > 0 {
				m.cursor--
			}
		}
	case " ":
		if n, ok := m.selected(); ok {
			if _, err := m.editor.ToggleCollapsed(n.ID); err != nil {
				m.setError(err)
			}
			m.dirty = true
		}
	case "H", "shift+left":
		m.nudge(-moveStep, 0)
	case "L", "shift+right":
		m.nudge(moveStep, 0)
	case "K", "shift+up":
		m.nudge(0, -moveStep)
	case "J", "shift+down":
		m.nudge(0, moveStep)
	case "+", "=":
		m.zoom(1)
	case "-":
		m.zoom(-1)
	case "0":
		m.editor.ResetView()
	case "f":
		m.editor.FitView(m.screen())
	case "esc":
		m.editor.Cancel()
	case "s":
		m.save()
	}
	return m, nil
}

func (m *EditModel) nudge(dx, dy float64) {
	n, ok := m.selected()
	if !ok {
		return
	}
	if err := m.editor.MoveNode(n.ID, n.Position.Add(geom.Pt(dx, dy))); err != nil {
		m.setError(err)
		return
	}
	m.dirty = true
}

func (m *EditModel) zoom(steps float64) {
	s := m.screen()
	m.editor.Zoom(steps, geom.Pt(s.W/2, s.H/2))
}

func (m *EditModel) save() {
	if err := m.editor.Save(m.ctx, m.graphs, m.name); err != nil {
		m.setError(err)
		return
	}
	m.dirty = false
	g := m.editor.Graph()
	m.status = fmt.Sprintf("saved %s (%s, %s)", m.name, plural(g.NodeCount(), "node"), plural(g.EdgeCount(), "edge"))
}

func (m *EditModel) setError(err error) {
	m.status, m.failed = ngerrors.UserMessage(err), true
}

func (m EditModel) updatePresets(msg tea.KeyMsg) EditModel {
	names := m.editor.Catalog().Names()
	switch msg.String() {
	case "esc", "q":
		m.mode = modeNodes
	case "up", "k":
		if m.presetCursor > 0 {
			m.presetCursor--
		}
	case "down", "j":
		if m.presetCursor < len(names)-1 {
			m.presetCursor++
		}
	case "enter":
		if m.presetCursor >= len(names) {
			break
		}
		// Cascade new nodes from the top left of the visible canvas.
		k := float64(m.editor.Graph().NodeCount() % 10)
		if _, err := m.editor.AddNode(names[m.presetCursor], geom.Pt(40+30*k, 40+30*k)); err != nil {
			m.setError(err)
		} else {
			m.dirty = true
			m.cursor = m.editor.Graph().NodeCount() - 1
		}
		m.mode = modeNodes
	}
	return m
}

// visibleSockets returns the sockets of the selected node.
func (m EditModel) visibleSockets() (*graph.Node, []*graph.Socket) {
	n, ok := m.selected()
	if !ok || n.Collapsed {
		return nil, nil
	}
	return n, n.Sockets
}

func (m EditModel) updateSockets(msg tea.KeyMsg) EditModel {
	n, sockets := m.visibleSockets()
	if n == nil {
		m.mode = modeNodes
		return m
	}
	switch msg.String() {
	case "esc", "q":
		m.mode = modeNodes
	case "up", "k":
		if m.socketCursor > 0 {
			m.socketCursor--
		}
	case "down", "j":
		if m.socketCursor < len(sockets)-1 {
			m.socketCursor++
		}
	case "enter", " ":
		if m.socketCursor < len(sockets) {
			m.clickSocket(n, sockets[m.socketCursor])
			m.mode = modeNodes
		}
	case "x":
		if m.socketCursor < len(sockets) {
			key := sockets[m.socketCursor].Key
			for _, e := range m.editor.Graph().EdgesTouching(n.ID) {
				if e.From == key || e.To == key {
					m.editor.Disconnect(e.ID)
					m.dirty = true
				}
			}
		}
	}
	return m
}

// clickSocket presses and releases on a socket anchor, which is how the
// two-click connection is made with a pointer.
func (m *EditModel) clickSocket(n *graph.Node, s *graph.Socket) {
	pos := m.editor.Viewport().WorldToScreen(m.editor.Layout().Anchor(n, s))
	hit := editor.SocketHit(s.Key)
	edges := m.editor.Graph().EdgeCount()

	m.editor.PointerDown(pos, hit)
	m.editor.PointerUp(pos, hit)

	switch {
	case m.editor.Graph().EdgeCount() > edges:
		m.dirty = true
	case m.editor.Protocol().State() == protocol.AwaitingSecondClick:
		m.status = fmt.Sprintf("pick a socket to connect %s to (esc cancels)", s.Key)
	}
}

func (m EditModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	title := "Editing " + m.name
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")

	switch m.mode {
	case modePresets:
		b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ add  esc back"))
		b.WriteString("\n\n")
		b.WriteString(m.presetsView())
	case modeSockets:
		b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ connect  x disconnect  esc back"))
		b.WriteString("\n\n")
		b.WriteString(m.socketsView())
	default:
		b.WriteString(listDimStyle.Render("↑/↓ select  a add  ⏎ sockets  x delete  space collapse  HJKL move  +/- zoom  f fit  s save  q quit"))
		b.WriteString("\n\n")
		b.WriteString(m.nodesView())
	}

	b.WriteString("\n\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m EditModel) nodesView() string {
	g := m.editor.Graph()
	if g.NodeCount() == 0 {
		return listDimStyle.Render("  empty graph, press a to add a node")
	}
	rows := nodeRows(g)
	for i := range rows {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows[i] = append([]string{cursor}, rows[i]...)
	}
	pending, awaiting := m.editor.Protocol().Pending()

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Preset", "Position", "In", "Out", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case awaiting && row < len(rows) && rows[row][1] == pending.NodeID:
				return lipgloss.NewStyle().Foreground(colorYellow)
			case row == m.cursor:
				return listSelectedStyle
			case col == 6:
				return listDimStyle
			}
			return listNormalStyle
		}).
		Render()
}

func (m EditModel) presetsView() string {
	var b strings.Builder
	for i, p := range m.editor.Catalog().Presets() {
		line := fmt.Sprintf("%-20s %s", p.Name, listDimStyle.Render(socketList(p.Inputs())+" → "+socketList(p.Outputs())))
		if i == m.presetCursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m EditModel) socketsView() string {
	n, sockets := m.visibleSockets()
	if n == nil {
		return ""
	}
	pending, awaiting := m.editor.Protocol().Pending()
	g := m.editor.Graph()

	var b strings.Builder
	for i, s := range sockets {
		count := 0
		for _, e := range g.EdgesTouching(n.ID) {
			if e.From == s.Key || e.To == s.Key {
				count++
			}
		}
		line := fmt.Sprintf("%-3s %-12s %-10s %s", s.Direction().Short(), s.Name(), string(s.Type), listDimStyle.Render(plural(count, "edge")))
		if s.IsBottom() {
			line += listDimStyle.Render(" bottom")
		}
		switch {
		case i == m.socketCursor:
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		case awaiting && s.Key == pending:
			b.WriteString(StyleWarning.Render("• " + line))
		default:
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m EditModel) footer() string {
	g := m.editor.Graph()
	st := m.editor.Viewport().State()
	line := statsLine(g.NodeCount(), g.EdgeCount(), 0)
	line += StyleDim.Render(fmt.Sprintf(" · %.0f%%", st.Scale*100))
	if state := m.editor.Protocol().State(); state != protocol.Idle {
		line += StyleDim.Render(" · ") + StyleWarning.Render(state.String())
	}

	status := StyleDim.Render(m.act.last)
	switch {
	case m.failed:
		status = StyleError.Render(iconError + " " + m.status)
	case m.status != "":
		status = StyleSuccess.Render(m.status)
	}
	return "  " + line + "\n  " + status
}
