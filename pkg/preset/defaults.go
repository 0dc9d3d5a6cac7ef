package preset

import "github.com/matzehuels/nodegraph/pkg/compat"

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog(defaultPresets(), compat.Default())
	if err != nil {
		panic("preset: invalid built-in catalog: " + err.Error())
	}
	return c
}

func defaultPresets() []Preset {
	in := func(name string, t compat.Type) SocketDecl {
		return SocketDecl{Name: name, Type: t, Direction: Input, Placement: Normal}
	}
	out := func(name string, t compat.Type) SocketDecl {
		return SocketDecl{Name: name, Type: t, Direction: Output, Placement: Normal}
	}
	bottom := func(s SocketDecl) SocketDecl {
		s.Placement = Bottom
		return s
	}

	return []Preset{
		{
			Name:    "Position",
			Color:   "#ffff00",
			Sockets: []SocketDecl{out("X", compat.Float), out("Y", compat.Float), out("Z", compat.Float)},
		},
		{
			Name:  "Move",
			Color: "#0000ff",
			Sockets: []SocketDecl{
				in("X", compat.Float), in("Y", compat.Float), in("Z", compat.Float),
				bottom(in("ID", compat.Exec)),
				out("X", compat.Int), out("Y", compat.Int), out("Z", compat.Int),
			},
		},
		{
			Name:    "Start",
			Color:   "#cc0000",
			Sockets: []SocketDecl{bottom(out("Exec", compat.Exec))},
		},
		{
			Name:    "Float",
			Color:   "#88aa22",
			Sockets: []SocketDecl{out("number", compat.Float)},
		},
		{
			Name:    "Integer",
			Color:   "#2266cc",
			Sockets: []SocketDecl{out("number", compat.Int)},
		},
		{
			Name:    "Float To Integer",
			Color:   "#6644aa",
			Sockets: []SocketDecl{in("in", compat.Float), out("out", compat.Int)},
		},
	}
}
