package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/instrumentation"
)

func TestResponseWriter(t *testing.T) {
	t.Run("captures status code", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		rw := newResponseWriter(recorder)

		rw.WriteHeader(http.StatusNotFound)

		assert.Equal(t, http.StatusNotFound, rw.statusCode)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("defaults to 200", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())
		assert.Equal(t, http.StatusOK, rw.statusCode)
	})
}

func TestInstrumentationMiddleware_NoMetrics(t *testing.T) {
	s := &HTTPServer{}
	called := false
	next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	})

	s.instrumentationMiddleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))
	assert.True(t, called)
}

func TestHTTPServer_HealthRoutesAreCounted(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)

	s := NewHTTPServer(mcpserver.NewMCPServer("calmux", "test"), false)
	s.SetHealthChecker(NewHealthChecker(newTestContext(t, accounts.NewMemoryStore())))
	s.SetMetrics(metrics)
	h := s.Handler()

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_requests_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(3), total)
}

func TestHTTPServer_ShutdownWithoutStart(t *testing.T) {
	s := NewHTTPServer(mcpserver.NewMCPServer("calmux", "test"), true)
	assert.NoError(t, s.Shutdown(context.Background()))
}
