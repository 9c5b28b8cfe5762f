package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	// --- Arrange ---
	m := New()

	// --- Act ---
	m.ObserveLookup(TransportHTTP, "ok")
	m.ObserveLookup(TransportHTTP, "ok")
	m.ObserveLookup(TransportNATS, "ambiguous")
	m.ObserveReload(true)
	m.ObserveReload(false)
	m.SetCatalogSize(12, 74)

	// --- Assert ---
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lookups.WithLabelValues(TransportHTTP, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues(TransportNATS, "ambiguous")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reloads.WithLabelValues("failure")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.modules))
	assert.Equal(t, 74.0, testutil.ToFloat64(m.capabilities))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveReload(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.reloads.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.reloads.WithLabelValues("success")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest("/v1/lookup", "200")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `rustdex_http_requests_total{code="200",route="/v1/lookup"} 1`))
}
