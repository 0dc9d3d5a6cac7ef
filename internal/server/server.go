// Package server hosts editing sessions over HTTP.
//
// Stored graphs are served as JSON snapshots, DOT and SVG. A websocket
// endpoint runs one editor per connection: the client sends pointer and
// command events, the server answers with the geometry updates the editor
// emits. Prometheus metrics are exposed at /metrics.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/storage"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	maxSnapshotBytes  = 8 << 20
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address used by Run.
	Addr string
	// Catalog is the initial preset catalog. Nil means preset.Default().
	Catalog *preset.Catalog
	// CatalogPath, when set, is watched and reloaded while Run is active.
	CatalogPath string
	Graphs      *storage.Graphs
	Logger      *log.Logger
	ZoomStep    float64
	// AllowedOrigins lists the origins allowed to open live sessions.
	// Empty means same-origin only; "*" allows any origin.
	AllowedOrigins []string
	// Registry receives the server's collectors. Nil creates a private one.
	Registry *prometheus.Registry
}

// Server is the HTTP host.
type Server struct {
	addr        string
	catalog     atomic.Pointer[preset.Catalog]
	catalogPath string
	graphs      *storage.Graphs
	logger      *log.Logger
	zoomStep    float64
	upgrader    websocket.Upgrader
	registry    *prometheus.Registry
	metrics     *Metrics
	handler     http.Handler
}

// New creates a server from cfg.
func New(cfg Config) (*Server, error) {
	if cfg.Graphs == nil {
		return nil, ngerrors.New(ngerrors.ErrCodeInvalidConfig, "server needs graph storage")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = preset.Default()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	s := &Server{
		addr:        cfg.Addr,
		catalogPath: cfg.CatalogPath,
		graphs:      cfg.Graphs,
		logger:      logger,
		zoomStep:    cfg.ZoomStep,
		registry:    reg,
		metrics:     NewMetrics(reg),
	}
	s.catalog.Store(catalog)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
	}
	s.handler = s.routes()
	return s, nil
}

// checkOrigin returns nil for an empty list so the upgrader falls back to
// its same-origin check.
func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Catalog returns the catalog new sessions start with.
func (s *Server) Catalog() *preset.Catalog { return s.catalog.Load() }

// SetCatalog replaces the catalog. Open sessions keep the catalog they
// started with.
func (s *Server) SetCatalog(c *preset.Catalog) {
	if c == nil {
		return
	}
	s.catalog.Store(c)
	s.logger.Info("preset catalog reloaded", "presets", c.Len())
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.addr
	if addr == "" {
		addr = ":8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return ngerrors.Wrap(ngerrors.ErrCodeInvalidConfig, err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// Live sessions are closed when ctx ends. When a catalog path is
// configured, the catalog is reloaded on change for the server's lifetime.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Debug("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if s.catalogPath != "" {
		g.Go(func() error {
			return preset.Watch(gctx, s.catalogPath, s.SetCatalog, preset.WatchOptions{Logger: s.logger})
		})
	}
	return g.Wait()
}
