package storage

import (
	"context"
	"errors"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/observability"
)

// Graphs stores serialized graphs by name on top of a [Store].
type Graphs struct {
	store   Store
	keyer   Keyer
	backend string
}

// NewGraphs wraps store. A nil keyer uses [DefaultKeyer].
func NewGraphs(store Store, keyer Keyer) *Graphs {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &Graphs{store: store, keyer: keyer, backend: backendName(store)}
}

// Store returns the underlying store.
func (g *Graphs) Store() Store { return g.store }

// Backend returns the backend name reported to observability hooks.
func (g *Graphs) Backend() string { return g.backend }

// Save stores data under name, replacing any previous record.
func (g *Graphs) Save(ctx context.Context, name string, data []byte) error {
	if err := ngerrors.ValidateGraphName(name); err != nil {
		return err
	}
	if err := g.store.Set(ctx, g.keyer.GraphKey(name), data); err != nil {
		observability.Storage().OnError(ctx, g.backend, "set", err)
		return storageErr(err, "save graph %q", name)
	}
	observability.Storage().OnSet(ctx, g.backend, len(data))
	return nil
}

// Load returns the record stored under name. A missing graph is a
// GRAPH_NOT_FOUND error.
func (g *Graphs) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ngerrors.ValidateGraphName(name); err != nil {
		return nil, err
	}
	data, ok, err := g.store.Get(ctx, g.keyer.GraphKey(name))
	if err != nil {
		observability.Storage().OnError(ctx, g.backend, "get", err)
		return nil, storageErr(err, "load graph %q", name)
	}
	if !ok {
		observability.Storage().OnMiss(ctx, g.backend)
		return nil, ngerrors.New(ngerrors.ErrCodeGraphNotFound, "graph %q not found", name)
	}
	observability.Storage().OnHit(ctx, g.backend)
	return data, nil
}

// Exists reports whether a graph is stored under name.
func (g *Graphs) Exists(ctx context.Context, name string) (bool, error) {
	if err := ngerrors.ValidateGraphName(name); err != nil {
		return false, err
	}
	_, ok, err := g.store.Get(ctx, g.keyer.GraphKey(name))
	if err != nil {
		return false, storageErr(err, "stat graph %q", name)
	}
	return ok, nil
}

// Delete removes the graph stored under name.
func (g *Graphs) Delete(ctx context.Context, name string) error {
	if err := ngerrors.ValidateGraphName(name); err != nil {
		return err
	}
	if err := g.store.Delete(ctx, g.keyer.GraphKey(name)); err != nil {
		observability.Storage().OnError(ctx, g.backend, "delete", err)
		return storageErr(err, "delete graph %q", name)
	}
	return nil
}

// List returns the names of all stored graphs, sorted.
func (g *Graphs) List(ctx context.Context) ([]string, error) {
	keys, err := g.store.List(ctx, g.keyer.Prefix())
	if err != nil {
		observability.Storage().OnError(ctx, g.backend, "list", err)
		return nil, storageErr(err, "list graphs")
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if name, ok := NameFromKey(g.keyer, k); ok && name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func storageErr(err error, format string, args ...any) error {
	code := ngerrors.ErrCodeStorage
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrClosed) || IsRetryable(err) {
		code = ngerrors.ErrCodeStorageUnavailable
	}
	return ngerrors.Wrap(code, err, format, args...)
}

func backendName(s Store) string {
	switch s.(type) {
	case *MemoryStore:
		return BackendMemory
	case *FileStore:
		return BackendFile
	case *RedisStore:
		return BackendRedis
	case *MongoStore:
		return BackendMongo
	}
	return "custom"
}
