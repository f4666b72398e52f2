// Package metrics holds the Prometheus collectors of one service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "calc"

// Delegation outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeFailure = "failure"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry          *prometheus.Registry
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	delegations       *prometheus.CounterVec
	delegationLatency *prometheus.HistogramVec
	evaluations       *prometheus.CounterVec
}

// New creates a registry with Go and process collectors plus the service
// metrics, all labelled with the service name.
func New(service string) *Metrics {
	labels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests served, by route and status code.",
			ConstLabels: labels,
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency, by route.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"route"}),
		delegations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "delegations_total",
			Help:        "Operations delegated to operator services, by operator and outcome.",
			ConstLabels: labels,
		}, []string{"operator", "outcome"}),
		delegationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "delegation_duration_seconds",
			Help:        "Round-trip time of delegated operations, by operator.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"operator"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "evaluations_total",
			Help:        "Operations evaluated locally, by operator and outcome.",
			ConstLabels: labels,
		}, []string{"operator", "outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.delegations,
		m.delegationLatency,
		m.evaluations,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Middleware counts requests by chi route pattern and status code.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
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
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveDelegation records one delegated call.
func (m *Metrics) ObserveDelegation(operator, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.delegations.WithLabelValues(operator, outcome).Inc()
	m.delegationLatency.WithLabelValues(operator).Observe(d.Seconds())
}

// ObserveEvaluation records one locally evaluated operation.
func (m *Metrics) ObserveEvaluation(operator, outcome string) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(operator, outcome).Inc()
}
