package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratahttp/strata"
	"github.com/stratahttp/strata/middleware"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	metric:
		for _, m := range fam.GetMetric() {
			got := make(map[string]string, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				got[l.GetName()] = l.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func histogramCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var total uint64
	for _, fam := range families {
		if fam.GetName() != name || fam.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		for _, m := range fam.GetMetric() {
			total += m.GetHistogram().GetSampleCount()
		}
	}
	return total
}

func TestMetricsCountsRequests(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := newPipeline(t, okView("ok"),
		middleware.NewMetrics[*strata.RequestContext](middleware.MetricsConfig{Registerer: reg}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 3.0, counterValue(t, reg, "http_requests_total",
		map[string]string{"method": "GET", "status": "200"}))
	assert.Equal(t, uint64(3), histogramCount(t, reg, "http_request_duration_seconds"))
}

func TestMetricsRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := newPipeline(t, func(ctx *strata.RequestContext, args []string, kwargs map[string]string) (strata.Response, error) {
		return nil, strata.ErrForbidden
	}, middleware.NewMetrics[*strata.RequestContext](middleware.MetricsConfig{Registerer: reg}))

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusForbidden, w.Code)

	assert.Equal(t, 1.0, counterValue(t, reg, "http_requests_total",
		map[string]string{"method": "GET", "status": "403"}))
}

func TestMetricsNamespace(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := newPipeline(t, okView("ok"),
		middleware.NewMetrics[*strata.RequestContext](middleware.MetricsConfig{
			Registerer: reg,
			Namespace:  "myapp",
		}))

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, 1.0, counterValue(t, reg, "myapp_http_requests_total",
		map[string]string{"method": "GET", "status": "200"}))
}
