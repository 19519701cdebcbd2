package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "wsapi"

// Metrics holds the Prometheus collectors exposed on /metrics.
type Metrics struct {
	registry        *prometheus.Registry
	fileOps         *prometheus.CounterVec
	compensations   *prometheus.CounterVec
	blobBytes       prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics builds a private registry so several servers can coexist in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fileOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "file_operations_total",
			Help:      "File operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "blob_compensations_total",
			Help:      "Blobs removed after a failed database step, by outcome.",
		}, []string{"op", "outcome"}),
		blobBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "blob_bytes_written_total",
			Help:      "Bytes written to the blob store.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fileOps,
		m.compensations,
		m.blobBytes,
		m.requests,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) fileOp(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fileOps.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) compensation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "removed"
	if err != nil {
		outcome = "failed"
	}
	m.compensations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) blobWritten(n int64) {
	if m == nil {
		return
	}
	m.blobBytes.Add(float64(n))
}

func (m *Metrics) observeRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
