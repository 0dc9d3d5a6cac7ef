package preset

import (
	"fmt"
	"strings"

	"github.com/matzehuels/nodegraph/pkg/compat"
)

// Direction is the side of a node a socket sits on.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
)

// Valid reports whether d is Input or Output.
func (d Direction) Valid() bool { return d == Input || d == Output }

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Input {
		return Output
	}
	return Input
}

// Short returns the "in"/"out" form used in socket keys.
func (d Direction) Short() string {
	if d == Input {
		return "in"
	}
	return "out"
}

// ParseDirection accepts "input", "output", "in" and "out" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "input", "in":
		return Input, nil
	case "output", "out":
		return Output, nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// Placement selects the layout block a socket is drawn in.
type Placement string

const (
	// Normal sockets are laid out in paired rows beside the node body.
	Normal Placement = "normal"
	// Bottom sockets get their own rows beneath the body, usually for exec flow.
	Bottom Placement = "bottom"
)

// Valid reports whether p is a known placement. The empty placement is
// treated as Normal.
func (p Placement) Valid() bool { return p == "" || p == Normal || p == Bottom }

// SocketDecl declares one socket of a preset.
type SocketDecl struct {
	Name      string      `json:"name" toml:"name" yaml:"name"`
	Type      compat.Type `json:"type" toml:"type" yaml:"type"`
	Direction Direction   `json:"direction,omitempty" toml:"direction" yaml:"direction,omitempty"`
	Placement Placement   `json:"placement,omitempty" toml:"placement" yaml:"placement,omitempty"`
}

// IsBottom reports whether the socket is placed in the bottom block.
func (s SocketDecl) IsBottom() bool { return s.Placement == Bottom }

// Preset is a node template.
type Preset struct {
	Name    string       `json:"name"`
	Sockets []SocketDecl `json:"sockets"`
	Color   string       `json:"color,omitempty"`
	// Width is the minimum body width in world units. Zero uses the layout default.
	Width float64 `json:"width,omitempty"`
}

// Inputs returns the input declarations in declaration order.
func (p *Preset) Inputs() []SocketDecl { return p.filter(Input) }

// Outputs returns the output declarations in declaration order.
func (p *Preset) Outputs() []SocketDecl { return p.filter(Output) }

func (p *Preset) filter(d Direction) []SocketDecl {
	var out []SocketDecl
	for _, s := range p.Sockets {
		if s.Direction == d {
			out = append(out, s)
		}
	}
	return out
}

// Socket looks up a declaration by name and direction.
func (p *Preset) Socket(name string, d Direction) (SocketDecl, bool) {
	for _, s := range p.Sockets {
		if s.Name == name && s.Direction == d {
			return s, true
		}
	}
	return SocketDecl{}, false
}

// normalize fills defaults in place.
func (p *Preset) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	for i := range p.Sockets {
		s := &p.Sockets[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Type = compat.Normalize(s.Type)
		if s.Placement == "" {
			s.Placement = Normal
		}
	}
}
