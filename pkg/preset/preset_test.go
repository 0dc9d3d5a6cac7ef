package preset

import (
	"testing"

	"github.com/matzehuels/nodegraph/pkg/compat"
	"github.com/matzehuels/nodegraph/pkg/errors"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	want := []string{"Position", "Move", "Start", "Float", "Integer", "Float To Integer"}
	got := c.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	move, ok := c.ByName("Move")
	if !ok {
		t.Fatal("Move preset missing")
	}
	if n := len(move.Inputs()); n != 4 {
		t.Errorf("Move inputs = %d, want 4", n)
	}
	if n := len(move.Outputs()); n != 3 {
		t.Errorf("Move outputs = %d, want 3", n)
	}
	id, ok := move.Socket("ID", Input)
	if !ok || !id.IsBottom() || id.Type != compat.Exec {
		t.Errorf("Move ID socket = %+v, %v", id, ok)
	}
	if _, ok := move.Socket("ID", Output); ok {
		t.Error("Move should not have an ID output")
	}
}

func TestCatalogLookup(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		preset   string
		index    int
		wantName string
		wantErr  bool
	}{
		{"by name", "Start", 0, "Start", false},
		{"name wins over index", "Float", 0, "Float", false},
		{"index when name empty", "", 1, "Move", false},
		{"unknown name", "Teleport", 1, "", true},
		{"index out of range", "", 99, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.Lookup(tt.preset, tt.index)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodePresetNotFound) {
					t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodePresetNotFound)
				}
				return
			}
			if p.Name != tt.wantName {
				t.Errorf("Lookup() = %q, want %q", p.Name, tt.wantName)
			}
		})
	}

	if i := c.Index("Float To Integer"); i != 5 {
		t.Errorf("Index() = %d, want 5", i)
	}
	if i := c.Index("nope"); i != -1 {
		t.Errorf("Index(unknown) = %d, want -1", i)
	}
}

func TestNewCatalogValidation(t *testing.T) {
	sock := func(name string, d Direction) SocketDecl {
		return SocketDecl{Name: name, Type: compat.Float, Direction: d}
	}

	tests := []struct {
		name    string
		presets []Preset
		wantErr bool
	}{
		{"empty catalog", nil, false},
		{"same name both directions", []Preset{{Name: "A", Sockets: []SocketDecl{sock("x", Input), sock("x", Output)}}}, false},
		{"duplicate preset", []Preset{{Name: "A"}, {Name: "A"}}, true},
		{"empty preset name", []Preset{{Name: " "}}, true},
		{"duplicate socket", []Preset{{Name: "A", Sockets: []SocketDecl{sock("x", Input), sock("x", Input)}}}, true},
		{"missing direction", []Preset{{Name: "A", Sockets: []SocketDecl{{Name: "x", Type: compat.Float}}}}, true},
		{"missing type", []Preset{{Name: "A", Sockets: []SocketDecl{{Name: "x", Direction: Input}}}}, true},
		{"bad placement", []Preset{{Name: "A", Sockets: []SocketDecl{{Name: "x", Type: compat.Int, Direction: Input, Placement: "side"}}}}, true},
		{"bad color", []Preset{{Name: "A", Color: "red"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.presets, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidCatalog) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidCatalog)
			}
		})
	}
}

func TestNewCatalogRegistersTypes(t *testing.T) {
	c, err := NewCatalog([]Preset{{
		Name:    "Text",
		Sockets: []SocketDecl{{Name: "s", Type: "STR", Direction: Output}},
	}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Compat().Known("str") {
		t.Error("socket type should be registered in the catalog table")
	}
	if c.Compat().Compatible("str", compat.Float) {
		t.Error("unrelated types should not be compatible")
	}
	p, _ := c.ByName("Text")
	if p.Sockets[0].Placement != Normal {
		t.Errorf("placement = %q, want normal", p.Sockets[0].Placement)
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"input", Input, false},
		{"IN", Input, false},
		{"out", Output, false},
		{" Output ", Output, false},
		{"both", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, %v", tt.in, got, err)
		}
	}
	if Input.Opposite() != Output || Output.Opposite() != Input {
		t.Error("Opposite() mismatch")
	}
	if Input.Short() != "in" || Output.Short() != "out" {
		t.Error("Short() mismatch")
	}
}
