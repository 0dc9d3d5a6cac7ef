package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/observability"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/storage"
)

const demoSnapshot = `{
  "nodes": [
    {"id": "a", "name": "Position", "x": 0, "y": 0, "presetIndex": 0},
    {"id": "b", "name": "Move", "x": 300, "y": 0, "presetIndex": 1},
    {"id": "c", "name": "Ghost", "x": 0, "y": 200, "presetIndex": -1}
  ],
  "edges": [
    {"startNodeId": "a", "startSocketName": "X", "endNodeId": "b", "endSocketName": "X"}
  ],
  "viewport": {"offsetX": 0, "offsetY": 0, "scale": 1}
}`

func newTestServer(t *testing.T) (*Server, *storage.Graphs) {
	t.Helper()
	graphs := storage.NewGraphs(storage.NewMemoryStore(), nil)
	srv, err := New(Config{
		Graphs: graphs,
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatal(err)
	}
	return srv, graphs
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return e
}

func TestNewRequiresGraphs(t *testing.T) {
	_, err := New(Config{})
	if !ngerrors.Is(err, ngerrors.ErrCodeInvalidConfig) {
		t.Fatalf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var h healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Storage != storage.BackendMemory || h.Presets != preset.Default().Len() {
		t.Errorf("health = %+v", h)
	}
}

func TestPresets(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/presets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	for _, name := range []string{"Position", "Move", "Start"} {
		if !strings.Contains(rec.Body.String(), `"`+name+`"`) {
			t.Errorf("preset %s missing from %s", name, rec.Body.String())
		}
	}
	if !strings.Contains(rec.Body.String(), `"compat"`) {
		t.Errorf("compat rules missing from %s", rec.Body.String())
	}
}

func TestGraphLifecycle(t *testing.T) {
	srv, graphs := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPut, "/api/graphs/demo", demoSnapshot)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", rec.Code, rec.Body.String())
	}
	var put putResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &put); err != nil {
		t.Fatal(err)
	}
	if put.Nodes != 2 || put.Edges != 1 || len(put.Skipped) != 1 {
		t.Errorf("put = %+v, want 2 nodes, 1 edge, 1 skipped", put)
	}

	rec = do(t, h, http.MethodGet, "/api/graphs", "")
	if !strings.Contains(rec.Body.String(), `"demo"`) {
		t.Errorf("list = %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/graphs/demo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Ghost") {
		t.Error("stored snapshot kept an unresolved node")
	}

	rec = do(t, h, http.MethodGet, "/api/graphs/demo/dot?types=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("DOT status = %d", rec.Code)
	}
	for _, want := range []string{"digraph", `"a"`, `"b"`, "->"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("DOT missing %q:\n%s", want, rec.Body.String())
		}
	}

	rec = do(t, h, http.MethodDelete, "/api/graphs/demo", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	if ok, _ := graphs.Exists(context.Background(), "demo"); ok {
		t.Error("graph still stored after DELETE")
	}
}

func TestGraphErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   ngerrors.Code
	}{
		{"missing graph", http.MethodGet, "/api/graphs/nope", "", 404, ngerrors.ErrCodeGraphNotFound},
		{"missing graph dot", http.MethodGet, "/api/graphs/nope/dot", "", 404, ngerrors.ErrCodeGraphNotFound},
		{"delete missing", http.MethodDelete, "/api/graphs/nope", "", 404, ngerrors.ErrCodeGraphNotFound},
		{"broken snapshot", http.MethodPut, "/api/graphs/x", "{", 400, ngerrors.ErrCodeInvalidSnapshot},
		{"wrong shape", http.MethodPut, "/api/graphs/x", `{"nodes": 3}`, 400, ngerrors.ErrCodeInvalidSnapshot},
		{"bad name", http.MethodPut, "/api/graphs/a..b", demoSnapshot, 400, ngerrors.ErrCodeInvalidGraphName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if e := decodeError(t, rec); e.Error != string(tt.code) {
				t.Errorf("code = %s, want %s", e.Error, tt.code)
			}
		})
	}
}

func TestStorageUnavailable(t *testing.T) {
	store := storage.NewMemoryStore()
	srv, err := New(Config{Graphs: storage.NewGraphs(store, nil), Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	rec := do(t, srv.Handler(), http.MethodGet, "/api/graphs", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	if rec := do(t, srv.Handler(), http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Metrics().Install()
	t.Cleanup(observability.Reset)
	h := srv.Handler()

	do(t, h, http.MethodPut, "/api/graphs/demo", demoSnapshot)
	do(t, h, http.MethodGet, "/api/graphs/nope", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"nodegraph_http_requests_total",
		`status="404"`,
		`nodegraph_storage_operations_total{backend="memory",op="set",result="ok"} 1`,
		`nodegraph_storage_operations_total{backend="memory",op="get",result="miss"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestSetCatalog(t *testing.T) {
	srv, _ := newTestServer(t)
	before := srv.Catalog()
	srv.SetCatalog(nil)
	if srv.Catalog() != before {
		t.Error("nil catalog replaced the current one")
	}

	c, err := preset.Parse([]byte(`{"presets":[{"name":"Only","sockets":[]}]}`), preset.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	srv.SetCatalog(c)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/presets", "")
	if !strings.Contains(rec.Body.String(), `"Only"`) || strings.Contains(rec.Body.String(), `"Position"`) {
		t.Errorf("presets after reload = %s", rec.Body.String())
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		allowed []string
		origin  string
		want    bool
	}{
		{[]string{"*"}, "https://evil.example", true},
		{[]string{"https://app.example"}, "https://app.example", true},
		{[]string{"https://app.example"}, "https://evil.example", false},
		{[]string{"https://app.example"}, "", true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := checkOrigin(tt.allowed)(r); got != tt.want {
			t.Errorf("checkOrigin(%v)(%q) = %v, want %v", tt.allowed, tt.origin, got, tt.want)
		}
	}
	if checkOrigin(nil) != nil {
		t.Error("empty allow list should defer to the same-origin check")
	}
}

func TestServeShutdown(t *testing.T) {
	srv, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get(url); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
