package graph

import (
	"errors"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
)

var (
	// ErrNilPreset is returned by [Graph.CreateNode] when no preset is given.
	ErrNilPreset = errors.New("preset must not be nil")

	// ErrDuplicateNodeID is returned by [Graph.CreateNode] when a node with
	// the requested id already exists. Node ids are never reused.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateSocket is returned by [Registry.Register] for an occupied key.
	ErrDuplicateSocket = errors.New("duplicate socket key")

	// ErrUnknownNode is returned when an operation names a node that does not exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownSocket rejects a connection whose endpoint does not resolve.
	ErrUnknownSocket = errors.New("unknown socket")

	// ErrSelfLoop rejects a connection between two sockets of the same node.
	ErrSelfLoop = errors.New("cannot connect a node to itself")

	// ErrDirection rejects a connection whose endpoints are not an output
	// followed by an input, or two sockets of the same direction.
	ErrDirection = errors.New("connection must go from an output to an input")

	// ErrDuplicateEdge rejects a connection that already exists.
	ErrDuplicateEdge = errors.New("connection already exists")

	// ErrIncompatible rejects a connection whose socket types do not match.
	ErrIncompatible = errors.New("incompatible socket types")
)

// rejected wraps a sentinel in a REJECTED coded error. errors.Is matches both
// the sentinel and the code.
func rejected(sentinel error, format string, args ...any) error {
	return ngerrors.Wrap(ngerrors.ErrCodeRejected, sentinel, format, args...)
}

// IsRejected reports whether err is a connection rejection.
func IsRejected(err error) bool {
	return ngerrors.Is(err, ngerrors.ErrCodeRejected)
}
