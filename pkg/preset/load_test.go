package preset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodegraph/pkg/compat"
	"github.com/matzehuels/nodegraph/pkg/errors"
)

const tomlCatalog = `
wildcards = ["any"]

[[compat]]
from = "int"
to   = "str"

[[presets]]
name  = "Float To Integer"
color = "#3366ff"
inputs  = [{ name = "in", type = "float" }]
outputs = [{ name = "out", type = "int" }]

[[presets]]
name = "Start"
outputs = [{ name = "Exec", type = "exec", placement = "bottom" }]
`

const yamlCatalog = `
presets:
  - name: Position
    color: "#ffff00"
    sockets:
      - {name: X, type: float, direction: out}
      - {name: Y, type: float, direction: output}
  - name: Move
    inputs:
      - {name: X, type: float}
      - {name: ID, type: exec, placement: bottom}
`

const jsonCatalog = `{
  "presets": [
    {"name": "Integer", "outputs": [{"name": "number", "type": "int"}]}
  ]
}`

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		check  func(t *testing.T, c *Catalog)
	}{
		{
			name:   "TOML",
			data:   tomlCatalog,
			format: FormatTOML,
			check: func(t *testing.T, c *Catalog) {
				if c.Len() != 2 {
					t.Fatalf("Len() = %d, want 2", c.Len())
				}
				start, _ := c.ByName("Start")
				if !start.Sockets[0].IsBottom() || start.Sockets[0].Direction != Output {
					t.Errorf("Start socket = %+v", start.Sockets[0])
				}
				table := c.Compat()
				if !table.Compatible("int", "str") || table.Compatible("str", "int") {
					t.Error("directional compat rule not applied")
				}
				if !table.Compatible("any", compat.Exec) {
					t.Error("wildcard not applied")
				}
			},
		},
		{
			name:   "YAML",
			data:   yamlCatalog,
			format: FormatYAML,
			check: func(t *testing.T, c *Catalog) {
				pos, _ := c.ByName("Position")
				if len(pos.Outputs()) != 2 {
					t.Errorf("Position outputs = %d, want 2", len(pos.Outputs()))
				}
				move, _ := c.ByName("Move")
				if d, ok := move.Socket("ID", Input); !ok || !d.IsBottom() {
					t.Errorf("Move ID = %+v, %v", d, ok)
				}
			},
		},
		{
			name:   "JSON",
			data:   jsonCatalog,
			format: FormatJSON,
			check: func(t *testing.T, c *Catalog) {
				if c.Names()[0] != "Integer" {
					t.Errorf("Names() = %v", c.Names())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"malformed toml", "[[presets]\nname=", FormatTOML},
		{"malformed yaml", "presets: [", FormatYAML},
		{"unknown json field", `{"presets":[],"extra":1}`, FormatJSON},
		{"input declared as output", `{"presets":[{"name":"A","inputs":[{"name":"x","type":"int","direction":"output"}]}]}`, FormatJSON},
		{"bad direction", `{"presets":[{"name":"A","sockets":[{"name":"x","type":"int","direction":"up"}]}]}`, FormatJSON},
		{"incomplete compat rule", "[[compat]]\nfrom = \"int\"\n", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidCatalog) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidCatalog)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.toml")
	if err := os.WriteFile(path, []byte(tomlCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Source() != path {
		t.Errorf("Source() = %q, want %q", c.Source(), path)
	}

	if _, err := Load(filepath.Join(dir, "catalog.ini")); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Load(.ini) error = %v, want UNSUPPORTED", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load(missing) should fail")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	if err != nil {
		t.Fatal(err)
	}
	c, err := Parse(data, FormatJSON)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error = %v", err)
	}
	if c.Len() != Default().Len() {
		t.Errorf("Len() = %d, want %d", c.Len(), Default().Len())
	}
	start, _ := c.ByName("Start")
	if !start.Sockets[0].IsBottom() {
		t.Error("placement lost in round trip")
	}
}

func TestMarshalKeepsCompatTable(t *testing.T) {
	src := `{
  "presets": [{"name": "Vec", "outputs": [{"name": "v", "type": "vec"}]}],
  "compat": [{"from": "vec", "to": "float"}],
  "wildcards": ["any"]
}`
	orig, err := Parse([]byte(src), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Parse(data, FormatJSON)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error = %v", err)
	}

	tests := []struct {
		out, in compat.Type
		want    bool
	}{
		{"vec", compat.Float, true},
		{compat.Float, "vec", false},
		{"vec", "any", true},
		{"any", compat.Exec, true},
		{compat.Float, compat.Int, true},
		{compat.Exec, compat.Float, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.out)+"->"+string(tt.in), func(t *testing.T) {
			if got := orig.Compat().Compatible(tt.out, tt.in); got != tt.want {
				t.Fatalf("before round trip Compatible() = %v, want %v", got, tt.want)
			}
			if got := c.Compat().Compatible(tt.out, tt.in); got != tt.want {
				t.Errorf("after round trip Compatible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte(jsonCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reloaded := make(chan *Catalog, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Catalog) { reloaded <- c }, WatchOptions{
			Logger:   log.New(os.Stderr),
			Debounce: 20 * time.Millisecond,
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	updated := `{"presets":[{"name":"Integer"},{"name":"Float"}]}`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-reloaded:
		if c.Len() != 2 {
			t.Errorf("reloaded Len() = %d, want 2", c.Len())
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}
