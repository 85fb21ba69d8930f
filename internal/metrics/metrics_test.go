package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// Registered once; prometheus rejects duplicate collector registration.
var testMetrics = NewServerMetrics()

func TestMiddleware_PreservesFlusher(t *testing.T) {
	var flushable bool
	handler := testMetrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, flushable = w.(http.Flusher)
		w.WriteHeader(http.StatusNoContent)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, flushable, "wrapped writer must still expose http.Flusher")
}

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	router := chi.NewRouter()
	router.Use(testMetrics.Middleware)
	router.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(testMetrics.Requests.WithLabelValues("/things/{id}", "404"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/42", nil))
	after := testutil.ToFloat64(testMetrics.Requests.WithLabelValues("/things/{id}", "404"))

	require.Equal(t, before+1, after)
}

func TestMiddleware_DefaultsToOKWhenNothingWritten(t *testing.T) {
	router := chi.NewRouter()
	router.Use(testMetrics.Middleware)
	router.Get("/quiet", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(testMetrics.Requests.WithLabelValues("/quiet", "200"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/quiet", nil))
	after := testutil.ToFloat64(testMetrics.Requests.WithLabelValues("/quiet", "200"))

	require.Equal(t, before+1, after)
}
