package graph

import (
	"fmt"
	"slices"
)

// Registry maps durable socket keys to live sockets. It is an index over the
// node store and is maintained by [Graph]; it is never the source of truth.
type Registry struct {
	sockets map[SocketKey]*Socket
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sockets: make(map[SocketKey]*Socket)}
}

// Register adds a socket under key. Registering an occupied key fails.
func (r *Registry) Register(key SocketKey, s *Socket) error {
	if _, ok := r.sockets[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSocket, key)
	}
	r.sockets[key] = s
	return nil
}

// Unregister removes key. It reports whether the key was present.
func (r *Registry) Unregister(key SocketKey) bool {
	if _, ok := r.sockets[key]; !ok {
		return false
	}
	delete(r.sockets, key)
	return true
}

// Resolve returns the socket registered under key.
func (r *Registry) Resolve(key SocketKey) (*Socket, bool) {
	s, ok := r.sockets[key]
	return s, ok
}

// Len returns the number of registered sockets.
func (r *Registry) Len() int { return len(r.sockets) }

// Keys returns all registered keys in a stable order.
func (r *Registry) Keys() []SocketKey {
	keys := make([]SocketKey, 0, len(r.sockets))
	for k := range r.sockets {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}
