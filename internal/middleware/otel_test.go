package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"debtlens/internal/infrastructure"
)

func testProviders(t *testing.T, withMeter bool) *infrastructure.OTelProviders {
	t.Helper()

	providers := &infrastructure.OTelProviders{Logger: discardLogger()}

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	providers.Tracer = tp.Tracer("test")

	if withMeter {
		mp := sdkmetric.NewMeterProvider()
		t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
		providers.Meter = mp.Meter("test")
	}

	return providers
}

func TestNewOTelMiddleware(t *testing.T) {
	t.Run("with meter creates business metrics", func(t *testing.T) {
		m, err := NewOTelMiddleware(testProviders(t, true))
		require.NoError(t, err)
		assert.NotNil(t, m.Metrics())
	})

	t.Run("without meter degrades gracefully", func(t *testing.T) {
		m, err := NewOTelMiddleware(testProviders(t, false))
		require.NoError(t, err)
		assert.Nil(t, m.Metrics())
	})
}

func TestOTelMiddlewareHandler(t *testing.T) {
	m, err := NewOTelMiddleware(testProviders(t, true))
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(m.Handler)
	router.Get("/api/series/{kind}", func(w http.ResponseWriter, r *http.Request) {
		// Trace ID must be present for log correlation
		assert.NotEmpty(t, infrastructure.GetTraceID(r.Context()))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/series/summary", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestOTelMiddlewareErrorStatus(t *testing.T) {
	m, err := NewOTelMiddleware(testProviders(t, false))
	require.NoError(t, err)

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/series", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	var pattern string
	router.Get("/api/series/{kind}", func(w http.ResponseWriter, r *http.Request) {
		pattern = getRoutePattern(r)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/series/preview", nil))
	assert.Equal(t, "/api/series/{kind}", pattern)

	// Outside a chi route the raw path is used
	r := httptest.NewRequest(http.MethodGet, "/plain", nil)
	assert.Equal(t, "/plain", getRoutePattern(r))
}

func TestTraceMiddleware(t *testing.T) {
	called := false
	handler := TraceMiddleware("series_query")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/series", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebSocketTraceMiddleware(t *testing.T) {
	var gotTrace string
	handler := WebSocketTraceMiddleware(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTrace = infrastructure.GetTraceID(r.Context())
		w.WriteHeader(http.StatusSwitchingProtocols)
	}))

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "http://localhost:8080")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.NotEmpty(t, gotTrace)
	assert.Equal(t, http.StatusSwitchingProtocols, w.Code)
}

func TestBusinessMetricsMiddleware(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	var got *infrastructure.BusinessMetrics
	handler := BusinessMetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetBusinessMetricsFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Same(t, metrics, got)

	// Absent from a bare context
	assert.Nil(t, GetBusinessMetricsFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestGetRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:9999"
	assert.Equal(t, "127.0.0.1:9999", GetRealIP(r))

	r.Header.Set("X-Real-IP", "10.1.1.1")
	assert.Equal(t, "10.1.1.1", GetRealIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", GetRealIP(r))
}
