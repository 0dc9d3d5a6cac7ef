// Package compat decides which socket types may be connected.
//
// The compatibility rules are data, not code: a [Table] holds the set of known
// types and the (output, input) pairs that are allowed on top of the identity
// rule. New types are added by registering them on a table (or declaring them
// in a preset catalog) without touching the connection logic.
//
//	t := compat.Default()
//	t.Compatible(compat.Float, compat.Int)  // true
//	t.Compatible(compat.Exec, compat.Float) // false
//
// A Table is not safe for concurrent mutation. Once built it is only read.
package compat
