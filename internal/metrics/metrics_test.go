package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Redirects.WithLabelValues("found").Inc()
	m.AnalyticsEvents.WithLabelValues(EventDropped).Add(2)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Redirects.WithLabelValues("found")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `urlshortener_redirects_total{result="found"} 1`)
	assert.Contains(t, rec.Body.String(), `urlshortener_analytics_events_total{status="dropped"} 2`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
