package storage

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"
	"time"
)

// testStore runs the Store contract against s.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	// Miss
	data, ok, err := s.Get(ctx, "nodegraph:graph:a")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if ok || data != nil {
		t.Fatalf("Get on empty store = (%q, %v), want miss", data, ok)
	}

	// Set then Get
	if err := s.Set(ctx, "nodegraph:graph:a", []byte(`{"nodes":[]}`)); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, ok, err = s.Get(ctx, "nodegraph:graph:a")
	if err != nil || !ok {
		t.Fatalf("Get after Set = (%v, %v)", ok, err)
	}
	if string(data) != `{"nodes":[]}` {
		t.Errorf("Get = %q", data)
	}

	// Overwrite
	if err := s.Set(ctx, "nodegraph:graph:a", []byte("v2")); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, _, _ = s.Get(ctx, "nodegraph:graph:a")
	if string(data) != "v2" {
		t.Errorf("Get after overwrite = %q, want v2", data)
	}

	// List
	for _, k := range []string{"nodegraph:graph:c", "nodegraph:graph:b", "other:x"} {
		if err := s.Set(ctx, k, []byte("x")); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}
	keys, err := s.List(ctx, "nodegraph:graph:")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []string{"nodegraph:graph:a", "nodegraph:graph:b", "nodegraph:graph:c"}
	if !slices.Equal(keys, want) {
		t.Errorf("List = %v, want %v", keys, want)
	}

	// Delete, twice
	if err := s.Delete(ctx, "nodegraph:graph:a"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(ctx, "nodegraph:graph:a"); err != nil {
		t.Fatalf("second Delete error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "nodegraph:graph:a"); ok {
		t.Error("key still present after Delete")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStore(t, s)

	// Values are copied
	ctx := context.Background()
	buf := []byte("abc")
	s.Set(ctx, "k", buf)
	buf[0] = 'X'
	got, _, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}

	s.Close()
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
	if err := s.Set(ctx, "k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreBinarySafe(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	in := []byte{0, 1, 2, 0xff, '\n', '"'}
	if err := s.Set(ctx, "bin", in); err != nil {
		t.Fatal(err)
	}
	out, ok, err := s.Get(ctx, "bin")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v)", ok, err)
	}
	if !slices.Equal(in, out) {
		t.Errorf("Get = %v, want %v", out, in)
	}
	if _, err := os.Stat(s.Path("bin")); err != nil {
		t.Errorf("entry file missing: %v", err)
	}
}

func TestFileStoreCorruptEntry(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	s.Set(ctx, "nodegraph:graph:good", []byte("ok"))
	s.Set(ctx, "nodegraph:graph:bad", []byte("ok"))
	if err := os.WriteFile(s.Path("nodegraph:graph:bad"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.Get(ctx, "nodegraph:graph:bad"); err == nil {
		t.Error("Get of corrupt entry should fail")
	}
	keys, err := s.List(ctx, "nodegraph:graph:")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if !slices.Equal(keys, []string{"nodegraph:graph:good"}) {
		t.Errorf("List = %v, corrupt entries should be skipped", keys)
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err := DefaultDataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/xdg/nodegraph/graphs" {
		t.Errorf("DefaultDataDir = %q", dir)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestKeyers(t *testing.T) {
	k := NewDefaultKeyer()
	if got := k.GraphKey("scene"); got != "nodegraph:graph:scene" {
		t.Errorf("GraphKey = %q", got)
	}
	if name, ok := NameFromKey(k, "nodegraph:graph:scene"); !ok || name != "scene" {
		t.Errorf("NameFromKey = (%q, %v)", name, ok)
	}
	if _, ok := NameFromKey(k, "other:scene"); ok {
		t.Error("NameFromKey should reject foreign keys")
	}

	scoped := NewScopedKeyer(nil, "user:42:")
	if got := scoped.GraphKey("scene"); got != "user:42:nodegraph:graph:scene" {
		t.Errorf("scoped GraphKey = %q", got)
	}
	if got := scoped.Prefix(); got != "user:42:nodegraph:graph:" {
		t.Errorf("scoped Prefix = %q", got)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryBaseDelay
	retryBaseDelay = time.Millisecond
	defer func() { retryBaseDelay = old }()

	boom := errors.New("boom")
	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, true, 1, false},
		{"transient", 2, true, 3, false},
		{"exhausted", 5, true, 3, true},
		{"permanent", 5, false, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(boom)
					}
					return boom
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, boom) {
				t.Errorf("err = %v, should wrap boom", err)
			}
		})
	}
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(errors.New("down")) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestEscapeGlob(t *testing.T) {
	tests := []struct{ in, want string }{
		{"nodegraph:graph:", "nodegraph:graph:"},
		{"a*b", `a\*b`},
		{"[x]?", `\[x\]\?`},
	}
	for _, tt := range tests {
		if got := escapeGlob(tt.in); got != tt.want {
			t.Errorf("escapeGlob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("NODEGRAPH_REDIS_ADDR")
	if addr == "" {
		t.Skip("NODEGRAPH_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, DB: 15})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.client.FlushDB(context.Background())
	testStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("NODEGRAPH_MONGO_URI")
	if uri == "" {
		t.Skip("NODEGRAPH_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "nodegraph_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.coll.Drop(ctx)
	testStore(t, s)
}
