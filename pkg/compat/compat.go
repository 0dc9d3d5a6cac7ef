package compat

import (
	"slices"
	"strings"
)

// Type names the kind of value a socket carries.
type Type string

// Built-in socket types.
const (
	Float Type = "float"
	Int   Type = "int"
	Exec  Type = "exec"
)

// Normalize lower-cases and trims a type name.
func Normalize(t Type) Type {
	return Type(strings.ToLower(strings.TrimSpace(string(t))))
}

// Pair is an allowed (output, input) combination.
type Pair struct {
	Out Type `json:"out" toml:"out" yaml:"out"`
	In  Type `json:"in" toml:"in" yaml:"in"`
}

// Table is the compatibility table. The zero value is not usable; use
// [NewTable] or [Default].
type Table struct {
	types    []Type
	pairs    map[Pair]struct{}
	wildcard map[Type]struct{}
}

// NewTable returns a table that knows the given types and allows only
// identical-type connections.
func NewTable(types ...Type) *Table {
	t := &Table{
		pairs:    make(map[Pair]struct{}),
		wildcard: make(map[Type]struct{}),
	}
	for _, typ := range types {
		t.Register(typ)
	}
	return t
}

// Default returns the stock table: float, int and exec, with float and int
// mutually compatible.
func Default() *Table {
	t := NewTable(Float, Int, Exec)
	t.AllowBoth(Float, Int)
	return t
}

// Register adds a type to the table. Registering a known type is a no-op.
func (t *Table) Register(typ Type) {
	typ = Normalize(typ)
	if typ == "" || slices.Contains(t.types, typ) {
		return
	}
	t.types = append(t.types, typ)
}

// Allow permits connecting an output of type out to an input of type in.
// Both types are registered if unknown.
func (t *Table) Allow(out, in Type) {
	out, in = Normalize(out), Normalize(in)
	t.Register(out)
	t.Register(in)
	t.pairs[Pair{Out: out, In: in}] = struct{}{}
}

// AllowBoth permits a and b in either direction.
func (t *Table) AllowBoth(a, b Type) {
	t.Allow(a, b)
	t.Allow(b, a)
}

// Wildcard marks typ as compatible with every other type in both directions.
func (t *Table) Wildcard(typ Type) {
	typ = Normalize(typ)
	t.Register(typ)
	t.wildcard[typ] = struct{}{}
}

// Compatible reports whether an output of type out may feed an input of type in.
// Identical types are always compatible, even when unregistered.
func (t *Table) Compatible(out, in Type) bool {
	out, in = Normalize(out), Normalize(in)
	if out == in {
		return true
	}
	if _, ok := t.wildcard[out]; ok {
		return true
	}
	if _, ok := t.wildcard[in]; ok {
		return true
	}
	_, ok := t.pairs[Pair{Out: out, In: in}]
	return ok
}

// Known reports whether typ was registered.
func (t *Table) Known(typ Type) bool {
	return slices.Contains(t.types, Normalize(typ))
}

// Types returns the registered types in registration order.
func (t *Table) Types() []Type { return slices.Clone(t.types) }

// Pairs enumerates every compatible (out, in) combination of registered
// types, including identities, ordered by registration order.
func (t *Table) Pairs() []Pair {
	var out []Pair
	for _, a := range t.types {
		for _, b := range t.types {
			if t.Compatible(a, b) {
				out = append(out, Pair{Out: a, In: b})
			}
		}
	}
	return out
}

// Rules returns the explicitly allowed cross-type pairs, without identities
// or wildcard expansion, ordered by registration order of out then in.
func (t *Table) Rules() []Pair {
	var out []Pair
	for _, a := range t.types {
		for _, b := range t.types {
			if _, ok := t.pairs[Pair{Out: a, In: b}]; ok {
				out = append(out, Pair{Out: a, In: b})
			}
		}
	}
	return out
}

// Wildcards returns the wildcard types in registration order.
func (t *Table) Wildcards() []Type {
	var out []Type
	for _, typ := range t.types {
		if _, ok := t.wildcard[typ]; ok {
			out = append(out, typ)
		}
	}
	return out
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	c := NewTable(t.types...)
	for p := range t.pairs {
		c.pairs[p] = struct{}{}
	}
	for w := range t.wildcard {
		c.wildcard[w] = struct{}{}
	}
	return c
}
