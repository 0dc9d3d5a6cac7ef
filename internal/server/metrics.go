package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/nodegraph/pkg/observability"
)

// Metrics implements the observability hooks with Prometheus collectors.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	liveSessions prometheus.Gauge
	liveEvents   prometheus.Counter

	nodesCreated *prometheus.CounterVec
	nodesDeleted *prometheus.CounterVec
	connects     *prometheus.CounterVec
	disconnects  prometheus.Counter
	rejections   *prometheus.CounterVec
	saves        *prometheus.CounterVec
	loads        *prometheus.CounterVec
	saveDuration prometheus.Histogram
	loadSkipped  prometheus.Counter

	storageOps   *prometheus.CounterVec
	storageBytes *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_http_requests_total",
				Help: "Number of HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nodegraph_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		liveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nodegraph_live_sessions",
				Help: "Number of open live editing sessions.",
			},
		),
		liveEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nodegraph_live_events_total",
				Help: "Number of events processed by closed live sessions.",
			},
		),
		nodesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_nodes_created_total",
				Help: "Number of nodes created by preset.",
			},
			[]string{"preset"},
		),
		nodesDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_nodes_deleted_total",
				Help: "Number of nodes deleted by preset.",
			},
			[]string{"preset"},
		),
		connects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_connections_total",
				Help: "Number of edges created by socket types.",
			},
			[]string{"out_type", "in_type"},
		),
		disconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nodegraph_disconnections_total",
				Help: "Number of edges removed.",
			},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_connection_rejections_total",
				Help: "Number of refused connections by reason.",
			},
			[]string{"reason"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_saves_total",
				Help: "Number of graph saves by result.",
			},
			[]string{"result"},
		),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_loads_total",
				Help: "Number of graph loads by result.",
			},
			[]string{"result"},
		),
		saveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nodegraph_save_duration_seconds",
				Help:    "Time taken to serialize and store a graph.",
				Buckets: prometheus.DefBuckets,
			},
		),
		loadSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nodegraph_load_skipped_total",
				Help: "Number of nodes and edges skipped while loading graphs.",
			},
		),
		storageOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_storage_operations_total",
				Help: "Number of storage operations by backend, operation and result.",
			},
			[]string{"backend", "op", "result"},
		),
		storageBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodegraph_storage_bytes_written_total",
				Help: "Bytes written to storage by backend.",
			},
			[]string{"backend"},
		),
	}
	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.liveSessions,
		m.liveEvents,
		m.nodesCreated,
		m.nodesDeleted,
		m.connects,
		m.disconnects,
		m.rejections,
		m.saves,
		m.loads,
		m.saveDuration,
		m.loadSkipped,
		m.storageOps,
		m.storageBytes,
	)
	return m
}

// Install registers m as the process-wide editor, storage and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetEditorHooks(m)
	observability.SetStorageHooks(m)
	observability.SetHTTPHooks(m)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Editor hooks

func (m *Metrics) OnNodeCreated(preset string) { m.nodesCreated.WithLabelValues(preset).Inc() }
func (m *Metrics) OnNodeDeleted(preset string) { m.nodesDeleted.WithLabelValues(preset).Inc() }
func (m *Metrics) OnConnect(outType, inType string) {
	m.connects.WithLabelValues(outType, inType).Inc()
}
func (m *Metrics) OnDisconnect() { m.disconnects.Inc() }
func (m *Metrics) OnConnectionRejected(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) OnSave(nodes, edges int, d time.Duration, err error) {
	m.saves.WithLabelValues(result(err)).Inc()
	m.saveDuration.Observe(d.Seconds())
}

func (m *Metrics) OnLoad(nodes, edges, skipped int, d time.Duration, err error) {
	m.loads.WithLabelValues(result(err)).Inc()
	m.loadSkipped.Add(float64(skipped))
}

// Storage hooks

func (m *Metrics) OnHit(_ context.Context, backend string) {
	m.storageOps.WithLabelValues(backend, "get", "hit").Inc()
}

func (m *Metrics) OnMiss(_ context.Context, backend string) {
	m.storageOps.WithLabelValues(backend, "get", "miss").Inc()
}

func (m *Metrics) OnSet(_ context.Context, backend string, size int) {
	m.storageOps.WithLabelValues(backend, "set", "ok").Inc()
	m.storageBytes.WithLabelValues(backend).Add(float64(size))
}

func (m *Metrics) OnError(_ context.Context, backend, op string, _ error) {
	m.storageOps.WithLabelValues(backend, op, "error").Inc()
}

// HTTP hooks

func (m *Metrics) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnSessionOpen(context.Context) { m.liveSessions.Inc() }

func (m *Metrics) OnSessionClose(_ context.Context, events int) {
	m.liveSessions.Dec()
	m.liveEvents.Add(float64(events))
}

var (
	_ observability.EditorHooks  = (*Metrics)(nil)
	_ observability.StorageHooks = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)
