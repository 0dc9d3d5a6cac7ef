// Package preset defines node presets and the catalog they are loaded from.
//
// A [Preset] is an immutable template: a name, an ordered list of socket
// declarations and a display color. The editor never mutates presets; nodes
// copy what they need at creation time.
//
// # Catalog Files
//
// Catalogs are read by [Load] from TOML, YAML or JSON, chosen by file
// extension. Sockets are declared either as a flat list with explicit
// directions or with the inputs/outputs shorthand:
//
//	[[presets]]
//	name  = "Float To Integer"
//	color = "#3366ff"
//	inputs  = [{ name = "in", type = "float" }]
//	outputs = [{ name = "out", type = "int" }]
//
//	[[presets]]
//	name = "Start"
//	outputs = [{ name = "Exec", type = "exec", placement = "bottom" }]
//
// A catalog may extend the compatibility table:
//
//	wildcards = ["any"]
//
//	[[compat]]
//	from = "int"
//	to   = "exec"
//
// # Hot Reload
//
// [Watch] re-reads a catalog file whenever it changes and hands every valid
// result to a callback. Invalid edits are logged and otherwise ignored, so a
// half-saved file never replaces a working catalog.
package preset
