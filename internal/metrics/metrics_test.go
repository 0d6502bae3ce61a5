package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStore(t *testing.T) {
	m := New()

	m.ObserveStore("create_claim", nil)
	m.ObserveStore("create_claim", nil)
	m.ObserveStore("create_claim", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("create_claim", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("create_claim", OutcomeError)))
}

func TestObserveStoreNilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveStore("list_claims", nil) })
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/claims", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `claimbridge_http_requests_total{method="GET",route="/api/claims",status="200"} 1`)
}
