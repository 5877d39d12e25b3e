package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/observability"
)

// Metrics exports editor, template cache and template server events to
// Prometheus. It implements the observability hook interfaces; register it
// with [Metrics.Install].
type Metrics struct {
	registry *prometheus.Registry

	blocksPlaced   *prometheus.CounterVec
	blocksMoved    prometheus.Counter
	connections    *prometheus.CounterVec
	imports        *prometheus.CounterVec
	importDuration prometheus.Histogram
	exports        prometheus.Counter
	errors         *prometheus.CounterVec

	cache *prometheus.CounterVec

	templateRequests *prometheus.CounterVec
	templateDuration *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors in a dedicated registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.blocksPlaced = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocks_placed_total",
		Help:      "Blocks placed from the palette or the API",
	}, []string{"type"})
	m.blocksMoved = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "block_moves_total",
		Help:      "Block position updates",
	})
	m.connections = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_total",
		Help:      "Connection attempts by result",
	}, []string{"result"})
	m.imports = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imports_total",
		Help:      "Document imports by result",
	}, []string{"result"})
	m.importDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "import_duration_seconds",
		Help:      "Document import duration in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	m.exports = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Document exports",
	})
	m.errors = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Editor failures by operation and error code",
	}, []string{"op", "code"})

	m.cache = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "template_cache_total",
		Help:      "Template cache events",
	}, []string{"event"})

	m.templateRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "template_requests_total",
		Help:      "Requests to the template server",
	}, []string{"host", "status"})
	m.templateDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "template_request_duration_seconds",
		Help:      "Template server request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"host"})

	m.httpRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	m.httpDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	return m
}

// Install registers m as the process-wide editor, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetEditorHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(templateHooks{m})
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the registry holding m's collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OnBlockPlaced(_ context.Context, blockType string) {
	m.blocksPlaced.WithLabelValues(blockType).Inc()
}

func (m *Metrics) OnBlockMoved(context.Context, string) { m.blocksMoved.Inc() }

func (m *Metrics) OnConnectionCreated(context.Context, string, string) {
	m.connections.WithLabelValues("created").Inc()
}

func (m *Metrics) OnConnectionRejected(context.Context, string, string, error) {
	m.connections.WithLabelValues("rejected").Inc()
}

func (m *Metrics) OnExport(context.Context, int, int) { m.exports.Inc() }

func (m *Metrics) OnImport(_ context.Context, _ observability.ImportStats, d time.Duration, err error) {
	result := "ok"
	switch {
	case errors.Is(err, errors.ErrCodeImportIncomplete):
		result = "incomplete"
	case err != nil:
		result = "failed"
	}
	m.imports.WithLabelValues(result).Inc()
	m.importDuration.Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, op string, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	m.errors.WithLabelValues(op, string(code)).Inc()
}

func (m *Metrics) OnCacheHit(context.Context, string)      { m.cache.WithLabelValues("hit").Inc() }
func (m *Metrics) OnCacheMiss(context.Context, string)     { m.cache.WithLabelValues("miss").Inc() }
func (m *Metrics) OnCacheSet(context.Context, string, int) { m.cache.WithLabelValues("set").Inc() }

// templateHooks reports template server traffic. It is separate from
// Metrics because EditorHooks and HTTPHooks both declare OnError.
type templateHooks struct{ m *Metrics }

func (templateHooks) OnRequest(context.Context, string, string, string) {}

func (h templateHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.m.templateRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.m.templateDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h templateHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.m.templateRequests.WithLabelValues(host, "error").Inc()
}

var (
	_ observability.EditorHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = templateHooks{}
)

func (m *Metrics) observeRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
