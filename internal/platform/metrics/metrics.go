// Package metrics exposes Prometheus collectors for HTTP traffic and
// entity lifecycle activity.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/georgemunganga/supplyhub/internal/lifecycle"
)

// Transition outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the service collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	byStatus    *prometheus.GaugeVec
	dbDuration  *prometheus.HistogramVec
}

// New creates and registers the collectors under prefix on a private registry.
func New(prefix string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_transitions_total",
			Help: "Lifecycle transitions attempted, by entity, action and outcome",
		}, []string{"entity", "action", "outcome"}),
		byStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "_entities_by_status",
			Help: "Number of stored entities per status, refreshed on stats requests",
		}, []string{"entity", "status"}),
		dbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"entity", "operation"}),
	}
	m.registry.MustRegister(
		m.requests, m.duration, m.transitions, m.byStatus, m.dbDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency, labelled by route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		m.requests.WithLabelValues(r.Method, path, code).Inc()
		m.duration.WithLabelValues(r.Method, path, code).Observe(time.Since(start).Seconds())
	})
}

// RecordTransition counts a lifecycle transition attempt.
func (m *Metrics) RecordTransition(entity, action, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entity, action, outcome).Inc()
}

// OutcomeOf classifies the error returned by a transition attempt.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

// SetStatusCounts replaces the per-status gauge values for entity.
func (m *Metrics) SetStatusCounts(entity string, counts map[string]int) {
	if m == nil {
		return
	}
	m.byStatus.DeletePartialMatch(prometheus.Labels{"entity": entity})
	for status, n := range counts {
		m.byStatus.WithLabelValues(entity, status).Set(float64(n))
	}
}

// TrackDB returns a function that records the duration of a storage operation.
//
//	defer m.TrackDB("supplier", "search")()
func (m *Metrics) TrackDB(entity, operation string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.dbDuration.WithLabelValues(entity, operation).Observe(time.Since(start).Seconds())
	}
}
