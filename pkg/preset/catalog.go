package preset

import (
	"slices"

	"github.com/matzehuels/nodegraph/pkg/compat"
	"github.com/matzehuels/nodegraph/pkg/errors"
)

// Catalog is an ordered, read-only set of presets together with the type
// compatibility table that applies to them. Catalogs are safe for
// concurrent reads.
type Catalog struct {
	presets []*Preset
	byName  map[string]int
	table   *compat.Table
	source  string
}

// NewCatalog validates presets and builds a catalog. A nil table means
// [compat.Default]. Every socket type the presets use is registered in a
// copy of the table, so unknown types connect only to themselves.
func NewCatalog(presets []Preset, table *compat.Table) (*Catalog, error) {
	if table == nil {
		table = compat.Default()
	} else {
		table = table.Clone()
	}
	c := &Catalog{
		byName: make(map[string]int, len(presets)),
		table:  table,
	}
	for i := range presets {
		p := presets[i]
		p.Sockets = slices.Clone(p.Sockets)
		p.normalize()
		if err := validatePreset(&p); err != nil {
			return nil, err
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "duplicate preset %q", p.Name)
		}
		for _, s := range p.Sockets {
			table.Register(s.Type)
		}
		c.byName[p.Name] = len(c.presets)
		c.presets = append(c.presets, &p)
	}
	return c, nil
}

func validatePreset(p *Preset) error {
	if err := errors.ValidatePresetName(p.Name); err != nil {
		return err
	}
	if err := errors.ValidateColor(p.Color); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "preset %q", p.Name)
	}
	if p.Width < 0 {
		return errors.New(errors.ErrCodeInvalidCatalog, "preset %q: negative width", p.Name)
	}
	type key struct {
		name string
		dir  Direction
	}
	seen := make(map[key]struct{}, len(p.Sockets))
	for _, s := range p.Sockets {
		if s.Name == "" {
			return errors.New(errors.ErrCodeInvalidCatalog, "preset %q: socket without name", p.Name)
		}
		if s.Type == "" {
			return errors.New(errors.ErrCodeInvalidCatalog, "preset %q: socket %q has no type", p.Name, s.Name)
		}
		if !s.Direction.Valid() {
			return errors.New(errors.ErrCodeInvalidCatalog, "preset %q: socket %q has invalid direction %q", p.Name, s.Name, s.Direction)
		}
		if !s.Placement.Valid() {
			return errors.New(errors.ErrCodeInvalidCatalog, "preset %q: socket %q has invalid placement %q", p.Name, s.Name, s.Placement)
		}
		k := key{s.Name, s.Direction}
		if _, dup := seen[k]; dup {
			return errors.New(errors.ErrCodeInvalidCatalog, "preset %q: duplicate %s socket %q", p.Name, s.Direction, s.Name)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Len returns the number of presets.
func (c *Catalog) Len() int { return len(c.presets) }

// ByName returns the preset with the given name.
func (c *Catalog) ByName(name string) (*Preset, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.presets[i], true
}

// ByIndex returns the preset at position i in catalog order.
func (c *Catalog) ByIndex(i int) (*Preset, bool) {
	if i < 0 || i >= len(c.presets) {
		return nil, false
	}
	return c.presets[i], true
}

// Index returns the catalog position of the named preset, or -1.
func (c *Catalog) Index(name string) int {
	if i, ok := c.byName[name]; ok {
		return i
	}
	return -1
}

// Lookup resolves a preset by name. The index is used only when name is
// empty; an unknown name is an error even if the index is valid.
func (c *Catalog) Lookup(name string, index int) (*Preset, error) {
	if p, ok := c.ByName(name); ok {
		return p, nil
	}
	if name == "" {
		if p, ok := c.ByIndex(index); ok {
			return p, nil
		}
	}
	return nil, errors.New(errors.ErrCodePresetNotFound, "unknown preset %q (index %d)", name, index)
}

// Names returns preset names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.presets))
	for i, p := range c.presets {
		names[i] = p.Name
	}
	return names
}

// Presets returns the presets in catalog order. The presets must not be modified.
func (c *Catalog) Presets() []*Preset { return slices.Clone(c.presets) }

// Compat returns the catalog's compatibility table.
func (c *Catalog) Compat() *compat.Table { return c.table }

// Source returns the path the catalog was loaded from, or "" for built-in catalogs.
func (c *Catalog) Source() string { return c.source }
