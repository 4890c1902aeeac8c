// Package telemetry carries the ambient observability stack: Prometheus
// counters/histograms grounded on dexidp-dex's server.go instrumentation
// (requestCounter/durationHist/sizeHist curried per handler name) plus a
// zap logger for the structured, field-based logging the go-zero services
// in this corpus leave to logx — workers outside an HTTP request context
// use zap fields the way
// services/user_management_service's AuthService does.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics bundles the counters/histograms every HTTP and worker surface
// reports into, registered against a single *prometheus.Registry so
// cmd/eidserver and cmd/eidworker can share one /metrics exporter shape.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	SyncJobsProcessed *prometheus.CounterVec
	SyncJobDuration   *prometheus.HistogramVec
	SyncQueueDepth    *prometheus.GaugeVec
}

// New builds a fresh registry and registers every collector, mirroring
// dexidp-dex's server.go construction of requestCounter/durationHist/sizeHist.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eid_http_requests_total",
			Help: "Count of all HTTP requests handled by the identity authority.",
		}, []string{"code", "method", "handler"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eid_request_duration_seconds",
			Help:    "Latency of HTTP requests handled by the identity authority.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"code", "method", "handler"}),
		ResponseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eid_response_size_bytes",
			Help:    "Size of HTTP responses handled by the identity authority.",
			Buckets: []float64{200, 500, 900, 1500, 5000},
		}, []string{"code", "method", "handler"}),
		SyncJobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eid_sync_jobs_processed_total",
			Help: "Count of sync jobs processed by the worker, by terminal status.",
		}, []string{"status", "platform"}),
		SyncJobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eid_sync_job_duration_seconds",
			Help:    "Time spent applying a sync job to a downstream platform.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"platform"}),
		SyncQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "eid_sync_queue_depth",
			Help: "Number of sync jobs currently in a given status.",
		}, []string{"status"}),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.ResponseSize,
		m.SyncJobsProcessed, m.SyncJobDuration, m.SyncQueueDepth)
	return m
}

// Instrument wraps handler the way dexidp-dex's server.go curries
// InstrumentHandlerDuration/Counter/ResponseSize per route name.
func (m *Metrics) Instrument(handlerName string, handler http.Handler) http.Handler {
	labels := prometheus.Labels{"handler": handlerName}
	return promhttp.InstrumentHandlerDuration(m.RequestDuration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.RequestsTotal.MustCurryWith(labels),
			promhttp.InstrumentHandlerResponseSize(m.ResponseSize.MustCurryWith(labels), handler),
		),
	)
}

// Handler exposes the registry at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// NewLogger builds the zap logger cmd/eidworker uses outside of any HTTP
// request context, where logx.WithContext has nothing to attach to.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
