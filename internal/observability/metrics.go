package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	storeOps        *prometheus.CounterVec
	conflictRetries *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "http_errors_total",
			Help:      "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "store_operations_total",
			Help:      "Document backend calls by backend, operation and result.",
		}, []string{"backend", "op", "result"}),
		conflictRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "store_conflict_retries_total",
			Help:      "Mutations re-applied after a revision conflict.",
		}, []string{"backend"}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.errors, m.storeOps, m.conflictRetries)
	return m
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response by code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordStoreOp counts one backend call.
func (m *Metrics) RecordStoreOp(backend, op, result string) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(backend, op, result).Inc()
}

// RecordConflictRetry counts one retried mutation.
func (m *Metrics) RecordConflictRetry(backend string) {
	if m == nil {
		return
	}
	m.conflictRetries.WithLabelValues(backend).Inc()
}
