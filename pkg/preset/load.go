package preset

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/nodegraph/pkg/compat"
	"github.com/matzehuels/nodegraph/pkg/errors"
)

// Format identifies a catalog file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks a format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported catalog extension %q", filepath.Ext(path))
}

// catalogFile is the on-disk shape shared by all formats.
type catalogFile struct {
	Presets   []presetFile  `json:"presets" toml:"presets" yaml:"presets"`
	Compat    []compatRule  `json:"compat,omitempty" toml:"compat" yaml:"compat,omitempty"`
	Wildcards []compat.Type `json:"wildcards,omitempty" toml:"wildcards" yaml:"wildcards,omitempty"`
}

type presetFile struct {
	Name    string       `json:"name" toml:"name" yaml:"name"`
	Color   string       `json:"color,omitempty" toml:"color" yaml:"color,omitempty"`
	Width   float64      `json:"width,omitempty" toml:"width" yaml:"width,omitempty"`
	Sockets []SocketDecl `json:"sockets,omitempty" toml:"sockets" yaml:"sockets,omitempty"`
	Inputs  []SocketDecl `json:"inputs,omitempty" toml:"inputs" yaml:"inputs,omitempty"`
	Outputs []SocketDecl `json:"outputs,omitempty" toml:"outputs" yaml:"outputs,omitempty"`
}

type compatRule struct {
	From compat.Type `json:"from" toml:"from" yaml:"from"`
	To   compat.Type `json:"to" toml:"to" yaml:"to"`
	Both bool        `json:"both,omitempty" toml:"both" yaml:"both,omitempty"`
}

// Load reads a catalog file, choosing the decoder by extension.
func Load(path string) (*Catalog, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read %s", path)
	}
	c, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "load %s", path)
	}
	c.source = path
	return c, nil
}

// Parse decodes catalog data in the given format.
func Parse(data []byte, format Format) (*Catalog, error) {
	var f catalogFile
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode toml")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode yaml")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported catalog format %q", format)
	}
	return f.build()
}

func (f *catalogFile) build() (*Catalog, error) {
	table := compat.Default()
	for _, w := range f.Wildcards {
		table.Wildcard(w)
	}
	for _, r := range f.Compat {
		if compat.Normalize(r.From) == "" || compat.Normalize(r.To) == "" {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "compat rule needs from and to")
		}
		if r.Both {
			table.AllowBoth(r.From, r.To)
		} else {
			table.Allow(r.From, r.To)
		}
	}

	presets := make([]Preset, 0, len(f.Presets))
	for _, pf := range f.Presets {
		p := Preset{Name: pf.Name, Color: pf.Color, Width: pf.Width}
		p.Sockets = append(p.Sockets, pf.Sockets...)
		for _, s := range pf.Inputs {
			if s.Direction != "" && s.Direction != Input {
				return nil, errors.New(errors.ErrCodeInvalidCatalog, "preset %q: input %q declared as %s", pf.Name, s.Name, s.Direction)
			}
			s.Direction = Input
			p.Sockets = append(p.Sockets, s)
		}
		for _, s := range pf.Outputs {
			if s.Direction != "" && s.Direction != Output {
				return nil, errors.New(errors.ErrCodeInvalidCatalog, "preset %q: output %q declared as %s", pf.Name, s.Name, s.Direction)
			}
			s.Direction = Output
			p.Sockets = append(p.Sockets, s)
		}
		for i := range p.Sockets {
			if p.Sockets[i].Direction == "" {
				continue
			}
			d, err := ParseDirection(string(p.Sockets[i].Direction))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "preset %q", pf.Name)
			}
			p.Sockets[i].Direction = d
		}
		presets = append(presets, p)
	}
	return NewCatalog(presets, table)
}

// Marshal encodes a catalog as indented JSON in the file format [Parse] reads,
// including the compatibility rules and wildcards of its table.
func Marshal(c *Catalog) ([]byte, error) {
	f := catalogFile{
		Presets:   make([]presetFile, 0, c.Len()),
		Wildcards: c.table.Wildcards(),
	}
	for _, r := range c.table.Rules() {
		f.Compat = append(f.Compat, compatRule{From: r.Out, To: r.In})
	}
	for _, p := range c.presets {
		f.Presets = append(f.Presets, presetFile{
			Name:    p.Name,
			Color:   p.Color,
			Width:   p.Width,
			Sockets: p.Sockets,
		})
	}
	return json.MarshalIndent(f, "", "  ")
}
