package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/nodegraph/pkg/buildinfo"
	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/observability"
	"github.com/matzehuels/nodegraph/pkg/preset"
	"github.com/matzehuels/nodegraph/pkg/render/dot"
	"github.com/matzehuels/nodegraph/pkg/snapshot"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/presets", s.handlePresets)
		r.Route("/graphs", func(r chi.Router) {
			r.Get("/", s.handleListGraphs)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.handleGetGraph)
				r.Put("/", s.handlePutGraph)
				r.Delete("/", s.handleDeleteGraph)
				r.Get("/dot", s.handleDOT)
				r.Get("/svg", s.handleSVG)
				r.Get("/live", s.handleLive)
			})
		})
	})
	return r
}

// instrument logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"dur", d.Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

type healthResponse struct {
	Status  string         `json:"status"`
	Build   buildinfo.Info `json:"build"`
	Storage string         `json:"storage"`
	Presets int            `json:"presets"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Build:   buildinfo.Get(),
		Storage: s.graphs.Backend(),
		Presets: s.Catalog().Len(),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	data, err := preset.Marshal(s.Catalog())
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, "application/json", data)
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	names, err := s.graphs.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"graphs": names})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	data, err := s.graphs.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, "application/json", data)
}

type putResponse struct {
	Name    string   `json:"name"`
	Nodes   int      `json:"nodes"`
	Edges   int      `json:"edges"`
	Skipped []string `json:"skipped,omitempty"`
}

// handlePutGraph stores a snapshot after restoring it against the current
// catalog. What is stored is the restored graph, so entries that do not
// resolve are dropped and reported back.
func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := ngerrors.ValidateGraphName(name); err != nil {
		writeError(w, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSnapshotBytes))
	if err != nil {
		writeError(w, ngerrors.Wrap(ngerrors.ErrCodeInvalidInput, err, "read snapshot"))
		return
	}
	snap, err := snapshot.Unmarshal(body)
	if err != nil {
		writeError(w, err)
		return
	}
	catalog := s.Catalog()
	res, err := snapshot.Restore(snap, catalog)
	if err != nil {
		writeError(w, err)
		return
	}
	normalized := snapshot.Capture(res.Graph, res.Viewport, catalog)
	data, err := snapshot.Marshal(normalized)
	if err == nil {
		err = s.graphs.Save(r.Context(), name, data)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp := putResponse{
		Name:    name,
		Nodes:   len(normalized.Nodes),
		Edges:   len(normalized.Edges),
		Skipped: skipped(res.Report),
	}
	s.logger.Info("graph stored", "graph", name, "nodes", resp.Nodes, "edges", resp.Edges, "skipped", len(resp.Skipped))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ok, err := s.graphs.Exists(r.Context(), name)
	if err == nil && !ok {
		err = ngerrors.New(ngerrors.ErrCodeGraphNotFound, "graph %q not found", name)
	}
	if err == nil {
		err = s.graphs.Delete(r.Context(), name)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	src, err := s.dotSource(r.Context(), r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, "text/vnd.graphviz; charset=utf-8", []byte(src))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	src, err := s.dotSource(r.Context(), r)
	if err != nil {
		writeError(w, err)
		return
	}
	svg, err := dot.RenderSVGContext(r.Context(), src)
	if err != nil {
		writeError(w, ngerrors.Wrap(ngerrors.ErrCodeInternal, err, "render svg"))
		return
	}
	writeRaw(w, "image/svg+xml", svg)
}

// dotSource restores the named graph and converts it to DOT. The query
// parameter types=true labels sockets with their types.
func (s *Server) dotSource(ctx context.Context, r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	data, err := s.graphs.Load(ctx, name)
	if err != nil {
		return "", err
	}
	snap, err := snapshot.Unmarshal(data)
	if err != nil {
		return "", err
	}
	res, err := snapshot.Restore(snap, s.Catalog())
	if err != nil {
		return "", err
	}
	return dot.ToDOT(res.Graph, dot.Options{
		Types: r.URL.Query().Get("types") == "true",
		Title: name,
	}), nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := ngerrors.GetCode(err)
	if code == "" {
		code = ngerrors.ErrCodeInternal
	}
	writeJSON(w, ngerrors.HTTPStatus(err), errorResponse{
		Error:   string(code),
		Message: ngerrors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// skipped flattens a restore report into one line per dropped entry.
func skipped(rep snapshot.Report) []string {
	var out []string
	for _, sk := range rep.SkippedNodes {
		out = append(out, "node "+sk.String())
	}
	for _, sk := range rep.SkippedEdges {
		out = append(out, "edge "+sk.String())
	}
	return out
}
