package storage

import (
	"context"
	"errors"
	"slices"
	"testing"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/observability"
)

type countingHooks struct {
	observability.NoopStorageHooks
	hits, misses, sets, errs int
}

func (h *countingHooks) OnHit(context.Context, string)                  { h.hits++ }
func (h *countingHooks) OnMiss(context.Context, string)                 { h.misses++ }
func (h *countingHooks) OnSet(context.Context, string, int)             { h.sets++ }
func (h *countingHooks) OnError(context.Context, string, string, error) { h.errs++ }

// failingStore fails every operation with err.
type failingStore struct{ err error }

func (s failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, s.err }
func (s failingStore) Set(context.Context, string, []byte) error         { return s.err }
func (s failingStore) Delete(context.Context, string) error              { return s.err }
func (s failingStore) List(context.Context, string) ([]string, error)    { return nil, s.err }
func (s failingStore) Close() error                                      { return nil }

func TestGraphs(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetStorageHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	g := NewGraphs(NewMemoryStore(), nil)
	if g.Backend() != BackendMemory {
		t.Errorf("Backend = %q", g.Backend())
	}

	if _, err := g.Load(ctx, "scene"); !ngerrors.Is(err, ngerrors.ErrCodeGraphNotFound) {
		t.Fatalf("Load missing = %v, want GRAPH_NOT_FOUND", err)
	}
	if err := g.Save(ctx, "scene", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := g.Save(ctx, "alpha", []byte("two")); err != nil {
		t.Fatal(err)
	}
	data, err := g.Load(ctx, "scene")
	if err != nil || string(data) != "one" {
		t.Fatalf("Load = (%q, %v)", data, err)
	}
	if ok, _ := g.Exists(ctx, "alpha"); !ok {
		t.Error("Exists(alpha) = false")
	}

	names, err := g.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"alpha", "scene"}) {
		t.Errorf("List = %v", names)
	}

	if err := g.Delete(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := g.Exists(ctx, "alpha"); ok {
		t.Error("alpha still exists after Delete")
	}

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 2 {
		t.Errorf("hooks = %+v", *hooks)
	}
}

func TestGraphsInvalidName(t *testing.T) {
	g := NewGraphs(NewMemoryStore(), nil)
	ctx := context.Background()
	for _, name := range []string{"", "../etc", "a/b"} {
		if err := g.Save(ctx, name, nil); !ngerrors.Is(err, ngerrors.ErrCodeInvalidGraphName) {
			t.Errorf("Save(%q) = %v, want INVALID_GRAPH_NAME", name, err)
		}
		if _, err := g.Load(ctx, name); !ngerrors.Is(err, ngerrors.ErrCodeInvalidGraphName) {
			t.Errorf("Load(%q) = %v, want INVALID_GRAPH_NAME", name, err)
		}
	}
}

func TestGraphsErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ngerrors.Code
	}{
		{"generic", errors.New("disk full"), ngerrors.ErrCodeStorage},
		{"unavailable", ErrUnavailable, ngerrors.ErrCodeStorageUnavailable},
		{"closed", ErrClosed, ngerrors.ErrCodeStorageUnavailable},
		{"retryable", Retryable(errors.New("conn reset")), ngerrors.ErrCodeStorageUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraphs(failingStore{tt.err}, nil)
			ctx := context.Background()
			if g.Backend() != "custom" {
				t.Errorf("Backend = %q", g.Backend())
			}
			if err := g.Save(ctx, "x", nil); ngerrors.GetCode(err) != tt.want {
				t.Errorf("Save code = %q, want %q", ngerrors.GetCode(err), tt.want)
			}
			if _, err := g.Load(ctx, "x"); ngerrors.GetCode(err) != tt.want {
				t.Errorf("Load code = %q, want %q", ngerrors.GetCode(err), tt.want)
			}
			if _, err := g.List(ctx); !errors.Is(err, tt.err) {
				t.Errorf("List err = %v, should wrap %v", err, tt.err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Backend: BackendMemory})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	dir := t.TempDir()
	s, err = Open(ctx, Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	fs, ok := s.(*FileStore)
	if !ok || fs.Dir() != dir {
		t.Errorf("Open(default) = %T", s)
	}

	if _, err := Open(ctx, Config{Backend: "etcd"}); !ngerrors.Is(err, ngerrors.ErrCodeInvalidConfig) {
		t.Errorf("Open(etcd) = %v, want INVALID_CONFIG", err)
	}
}
