package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultPrefix is the key prefix of stored graphs.
const DefaultPrefix = "nodegraph:graph:"

// Keyer maps graph names to store keys and back.
type Keyer interface {
	// GraphKey returns the store key for a graph name.
	GraphKey(name string) string
	// Prefix returns the common prefix of all graph keys.
	Prefix() string
}

// DefaultKeyer produces keys of the form "nodegraph:graph:<name>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey returns "nodegraph:graph:<name>".
func (DefaultKeyer) GraphKey(name string) string { return DefaultPrefix + name }

// Prefix returns DefaultPrefix.
func (DefaultKeyer) Prefix() string { return DefaultPrefix }

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
//
// Example usage:
//
//	// Per-user namespaces on a shared Redis
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(name string) string {
	return k.prefix + k.inner.GraphKey(name)
}

// Prefix returns the combined prefix.
func (k *ScopedKeyer) Prefix() string {
	return k.prefix + k.inner.Prefix()
}

// NameFromKey strips the keyer's prefix from key.
func NameFromKey(k Keyer, key string) (string, bool) {
	return strings.CutPrefix(key, k.Prefix())
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
