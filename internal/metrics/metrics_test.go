package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	m := New("gateway-service")
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/calculations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/calculations/a", "/calculations/b", "/health"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("/calculations/{id}", "404")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("/health", "200")))
}

func TestObserveDelegation(t *testing.T) {
	m := New("addition-service")
	m.ObserveDelegation("*", OutcomeOK, 10*time.Millisecond)
	m.ObserveDelegation("*", OutcomeFailure, time.Second)
	m.ObserveDelegation("*", OutcomeOK, 20*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.delegations.WithLabelValues("*", OutcomeOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.delegations.WithLabelValues("*", OutcomeFailure)))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("division-service")
	m.ObserveEvaluation("/", OutcomeOK)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `calc_evaluations_total{operator="/",outcome="ok",service="division-service"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveDelegation("+", OutcomeOK, time.Millisecond)
	m.ObserveEvaluation("+", OutcomeOK)
	assert.Nil(t, m.Registry())

	called := false
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
