package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/checkout-orders/internal/logging"
	"github.com/josh-kwaku/checkout-orders/internal/metrics"
)

func TestRecovery(t *testing.T) {
	t.Run("panic before response returns 500", func(t *testing.T) {
		h := Logging(Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"server error"}}`, rec.Body.String())
	})

	t.Run("panic after response does not respond twice", func(t *testing.T) {
		h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte("partial"))
			panic("late")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "partial", rec.Body.String())
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "client-supplied", seen)
}

func TestLogging_InstallsRequestLogger(t *testing.T) {
	var hasLogger bool
	h := RequestID(Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasLogger = logging.FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.True(t, hasLogger)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMetrics_LabelsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics)
	r.HandleFunc("/orders/{id}/payment-redirect", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/orders/{id}/payment-redirect", "409")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/abc/payment-redirect", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
