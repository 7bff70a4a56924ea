package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

// seriesCount returns how many label combinations the named family has
func seriesCount(t *testing.T, m *Metrics, name string) int {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return len(f.GetMetric())
		}
	}
	return 0
}

func TestGinMiddlewareCountsByRoute(t *testing.T) {
	m := New()
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/records/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/records/a", "/api/records/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, counterValue(t, m.requestsTotal.WithLabelValues("GET", "/api/records/:id", "200")))
	assert.Equal(t, 1.0, counterValue(t, m.requestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, seriesCount(t, m, "kyc_http_request_duration_seconds"))
}

func TestObserveExtraction(t *testing.T) {
	m := New()
	m.ObserveExtraction("aadhaar", "approved", 12, true, nil)
	m.ObserveExtraction("pan", "rejected", 85, false, []string{"high", "critical", "high"})

	assert.Equal(t, 1.0, counterValue(t, m.extractions.WithLabelValues("aadhaar", "approved", "true")))
	assert.Equal(t, 1.0, counterValue(t, m.extractions.WithLabelValues("pan", "rejected", "false")))
	assert.Equal(t, 2.0, counterValue(t, m.alertsRaised.WithLabelValues("high")))
	assert.Equal(t, 1.0, counterValue(t, m.alertsRaised.WithLabelValues("critical")))
	assert.Equal(t, 2, seriesCount(t, m, "kyc_fraud_score"))
}

func TestObserveDecision(t *testing.T) {
	m := New()
	m.ObserveDecision("approved")
	m.ObserveDecision("approved")
	m.ObserveDecision("rejected")

	assert.Equal(t, 2.0, counterValue(t, m.decisions.WithLabelValues("approved")))
	assert.Equal(t, 1.0, counterValue(t, m.decisions.WithLabelValues("rejected")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveExtraction("pan", "approved", 0, true, []string{"low"})
		m.ObserveDecision("approved")
	})

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveDecision("pending")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `kyc_review_decisions_total{decision="pending"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}
