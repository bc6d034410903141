package server

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calmux/internal/instrumentation"
)

func newProvider(t *testing.T, enabled bool) *instrumentation.Provider {
	t.Helper()
	p, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:     "calmux",
		Enabled:         enabled,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func TestNewMetricsServer_RequiresInstrumentation(t *testing.T) {
	_, err := NewMetricsServer(":0", nil)
	assert.ErrorContains(t, err, "requires enabled instrumentation")

	_, err = NewMetricsServer(":0", newProvider(t, false))
	assert.Error(t, err)
}

func TestMetricsServer_ServesMetrics(t *testing.T) {
	p := newProvider(t, true)
	p.Metrics().RecordBranchFailure(context.Background(), "microsoft", instrumentation.StageDiscover)

	s, err := NewMetricsServer("127.0.0.1:0", p)
	require.NoError(t, err)
	require.NoError(t, s.Listen())

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	base := "http://" + s.Addr()

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "aggregate_branch_failures")

	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, <-done)
}

func TestMetricsServer_ShutdownBeforeListen(t *testing.T) {
	s, err := NewMetricsServer(":9090", newProvider(t, true))
	require.NoError(t, err)

	assert.Equal(t, ":9090", s.Addr())
	assert.NoError(t, s.Shutdown(context.Background()))
}
