// Package metrics exposes the Prometheus collectors of the tracker and
// the HTTP layer on a dedicated registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
)

const namespace = "statusboard"

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Registration sources.
const (
	SourceAPI     = "api"
	SourceCatalog = "catalog"
)

// Metrics holds every collector. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	reportsSubmitted      *prometheus.CounterVec
	statusTransitions     *prometheus.CounterVec
	servicesRegistered    *prometheus.CounterVec
	registrationConflicts prometheus.Counter
	requestTotal          *prometheus.CounterVec
	requestLatency        *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reportsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Accepted problem reports",
		}, []string{"problem_type"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Service status changes caused by reports",
		}, []string{"from", "to"}),
		servicesRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "services_registered_total",
			Help:      "Services added to the registry",
		}, []string{"source"}),
		registrationConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_conflicts_total",
			Help:      "Registrations rejected because the name was taken",
		}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reportsSubmitted,
		m.statusTransitions,
		m.servicesRegistered,
		m.registrationConflicts,
		m.requestTotal,
		m.requestLatency,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ReportSubmitted counts an accepted report.
func (m *Metrics) ReportSubmitted(problem domain.ProblemType) {
	if m == nil {
		return
	}
	m.reportsSubmitted.WithLabelValues(string(problem)).Inc()
}

// StatusTransition counts a status change. Equal statuses are ignored.
func (m *Metrics) StatusTransition(from, to domain.Status) {
	if m == nil || from == to {
		return
	}
	m.statusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// ServiceRegistered counts a new service by source.
func (m *Metrics) ServiceRegistered(source string) {
	if m == nil {
		return
	}
	m.servicesRegistered.WithLabelValues(source).Inc()
}

// RegistrationConflict counts a rejected duplicate registration.
func (m *Metrics) RegistrationConflict() {
	if m == nil {
		return
	}
	m.registrationConflicts.Inc()
}

// ObserveRequest records one HTTP request against its route pattern.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(duration.Seconds())
}
