package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
)

func TestReportAndTransitionCounters(t *testing.T) {
	m := New()

	m.ReportSubmitted(domain.ProblemOutage)
	m.ReportSubmitted(domain.ProblemOutage)
	m.ReportSubmitted(domain.ProblemSlow)
	m.StatusTransition(domain.StatusOperational, domain.StatusDegraded)
	m.StatusTransition(domain.StatusDegraded, domain.StatusDegraded)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reportsSubmitted.WithLabelValues("outage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsSubmitted.WithLabelValues("slow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusTransitions.WithLabelValues("operational", "degraded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.statusTransitions.WithLabelValues("degraded", "degraded")))
}

func TestRegistrationCounters(t *testing.T) {
	m := New()

	m.ServiceRegistered(SourceAPI)
	m.ServiceRegistered(SourceCatalog)
	m.ServiceRegistered(SourceCatalog)
	m.RegistrationConflict()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.servicesRegistered.WithLabelValues(SourceAPI)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.servicesRegistered.WithLabelValues(SourceCatalog)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrationConflicts))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ReportSubmitted(domain.ProblemSlow)
		m.StatusTransition(domain.StatusOperational, domain.StatusDown)
		m.ServiceRegistered(SourceAPI)
		m.RegistrationConflict()
		m.ObserveRequest(http.MethodGet, "/api/services", http.StatusOK, time.Millisecond)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/services", http.StatusOK, 3*time.Millisecond)
	m.ReportSubmitted(domain.ProblemConnection)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `statusboard_http_requests_total{method="GET",route="/api/services",status="200"} 1`)
	assert.Contains(t, string(body), `statusboard_reports_submitted_total{problem_type="connection"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
