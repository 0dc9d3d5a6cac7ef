package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/snapshot"
	"github.com/matzehuels/nodegraph/pkg/storage"
)

const demoSnapshot = `{
  "nodes": [
    {"id": "a", "name": "Position", "x": 0, "y": 0, "presetIndex": 0},
    {"id": "b", "name": "Move", "x": 300, "y": 0, "presetIndex": 1},
    {"id": "c", "name": "Ghost", "x": 0, "y": 200, "presetIndex": -1}
  ],
  "edges": [
    {"startNodeId": "a", "startSocketName": "X", "endNodeId": "b", "endSocketName": "X"}
  ],
  "viewport": {"offsetX": 0, "offsetY": 0, "scale": 1}
}`

// workspace writes a config pointing the file backend at a temp dir and a
// demo snapshot next to it.
func workspace(t *testing.T) (cfgPath, dataDir, snapPath string) {
	t.Helper()
	t.Setenv("NODEGRAPH_STORAGE", "")
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	cfgPath = filepath.Join(dir, "config.toml")
	cfg := "[storage]\nbackend = \"file\"\ndir = " + `"` + dataDir + `"` + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	snapPath = filepath.Join(dir, "demo.json")
	if err := os.WriteFile(snapPath, []byte(demoSnapshot), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, dataDir, snapPath
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func openDataDir(t *testing.T, dir string) *storage.Graphs {
	t.Helper()
	fs, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { fs.Close() })
	return storage.NewGraphs(fs, nil)
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"presets", "inspect", "render", "graphs", "serve", "edit", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "catalog", "storage"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestGraphsWorkflow(t *testing.T) {
	cfgPath, dataDir, snapPath := workspace(t)
	ctx := context.Background()

	if err := execute(t, "--config", cfgPath, "graphs", "import", snapPath); err != nil {
		t.Fatalf("import: %v", err)
	}
	graphs := openDataDir(t, dataDir)
	if ok, err := graphs.Exists(ctx, "demo"); err != nil || !ok {
		t.Fatalf("demo not stored: ok=%v err=%v", ok, err)
	}

	if err := execute(t, "--config", cfgPath, "graphs", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}

	exported := filepath.Join(t.TempDir(), "out.json")
	if err := execute(t, "--config", cfgPath, "graphs", "export", "demo", "-o", exported); err != nil {
		t.Fatalf("export: %v", err)
	}
	s, err := snapshot.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Nodes) != 2 || len(s.Edges) != 1 {
		t.Errorf("exported %d nodes, %d edges; want 2, 1", len(s.Nodes), len(s.Edges))
	}

	if err := execute(t, "--config", cfgPath, "inspect", "--stored", "demo"); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	if err := execute(t, "--config", cfgPath, "graphs", "rm", "demo"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if ok, _ := graphs.Exists(ctx, "demo"); ok {
		t.Error("demo still stored after rm")
	}
	err = execute(t, "--config", cfgPath, "graphs", "rm", "demo")
	if !ngerrors.Is(err, ngerrors.ErrCodeGraphNotFound) {
		t.Errorf("second rm err = %v, want GRAPH_NOT_FOUND", err)
	}
}

func TestRenderDOT(t *testing.T) {
	cfgPath, _, snapPath := workspace(t)
	out := filepath.Join(t.TempDir(), "demo.dot")

	if err := execute(t, "--config", cfgPath, "render", snapPath, "-o", out, "--types"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"digraph", `label="demo"`, `"a"`, "X : float"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("DOT missing %q:\n%s", want, data)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	cfgPath, _, snapPath := workspace(t)

	tests := []struct {
		name string
		args []string
		code ngerrors.Code
	}{
		{"missing config", []string{"--config", "/nonexistent/config.toml", "presets"}, ngerrors.ErrCodeInvalidConfig},
		{"bad backend", []string{"--config", cfgPath, "--storage", "floppy", "graphs", "list"}, ngerrors.ErrCodeInvalidConfig},
		{"bad format", []string{"--config", cfgPath, "render", snapPath, "-f", "png"}, ngerrors.ErrCodeInvalidInput},
		{"missing graph", []string{"--config", cfgPath, "inspect", "--stored", "nope"}, ngerrors.ErrCodeGraphNotFound},
		{"missing catalog", []string{"--config", cfgPath, "--catalog", "/nonexistent/presets.toml", "presets"}, ngerrors.ErrCodeInvalidCatalog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, tt.args...)
			if !ngerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format, output string
		want           string
		wantErr        bool
	}{
		{"", "", formatSVG, false},
		{"", "graph.dot", formatDOT, false},
		{"", "graph.GV", formatDOT, false},
		{"", "graph.svg", formatSVG, false},
		{"dot", "graph.svg", formatDOT, false},
		{"png", "", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.format, tt.output)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, %v; want %q", tt.format, tt.output, got, err, tt.want)
		}
	}
}

func TestPresetRow(t *testing.T) {
	catalog := preset.Default()
	move, _ := catalog.ByName("Move")
	got := presetRow(1, move)
	want := []string{"1", "Move", "#0000ff", "X:float, Y:float, Z:float, ID:exec (bottom)", "X:int, Y:int, Z:int"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("presetRow = %q, want %q", got, want)
	}
	if !strings.Contains(presetTable(catalog), "Float To Integer") {
		t.Error("preset table misses a preset")
	}
}

func TestNodeRows(t *testing.T) {
	res, err := snapshot.Restore(mustUnmarshal(t, demoSnapshot), preset.Default())
	if err != nil {
		t.Fatal(err)
	}
	rows := nodeRows(res.Graph)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if got := strings.Join(rows[0], "|"); got != "a|Position|0, 0|0|1|" {
		t.Errorf("row a = %q", got)
	}
	if got := strings.Join(rows[1], "|"); got != "b|Move|300, 0|1|0|" {
		t.Errorf("row b = %q", got)
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 nodes"},
		{1, "1 node"},
		{7, "7 nodes"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "node"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func mustUnmarshal(t *testing.T, s string) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Unmarshal([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return snap
}
