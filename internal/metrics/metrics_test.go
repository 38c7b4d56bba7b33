package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLeadCountersIncrement(t *testing.T) {
	LeadsSubmitted.WithLabelValues("quick", "test").Inc()
	require.GreaterOrEqual(t, testutil.ToFloat64(LeadsSubmitted.WithLabelValues("quick", "test")), 1.0)

	CatalogItems.WithLabelValues("test").Set(6)
	require.Equal(t, 6.0, testutil.ToFloat64(CatalogItems.WithLabelValues("test")))
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	HTTPRequests.WithLabelValues("/cruises/{slug}", http.MethodGet, "200").Inc()

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `nexttrip_http_requests_total{code="200",method="GET",route="/cruises/{slug}"}`)
}
