package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduling/pkg/logger"
	"github.com/m04kA/SMC-SalonScheduling/pkg/metrics"
)

func TestTenant(t *testing.T) {
	var got string
	h := Tenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetTenantID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("header present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TenantIDHeader, " salon-1 ")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "salon-1", got)
	})

	t.Run("header missing", func(t *testing.T) {
		got = ""
		w := httptest.NewRecorder()

		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error"`)
		assert.Empty(t, got)
	})
}

func TestRequestID(t *testing.T) {
	var inCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inCtx = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, inCtx)
	assert.Equal(t, inCtx, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "req-42", inCtx)
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()

	require.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "scheduling")

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m, "scheduling"))
	r.HandleFunc("/appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/appointments/"+id, nil))
	}

	counter := m.HTTPRequestsTotal.WithLabelValues("scheduling", http.MethodGet, "/appointments/{id}", "404")
	assert.Equal(t, float64(2), testutil.ToFloat64(counter))
}
