package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/server"
)

func newServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), server.Options{
		Store:       accounts.NewMemoryStore(),
		DefaultUser: "alice@example.com",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func toolInvocations(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "tool_invocations_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				status, _ := dp.Attributes.Value("status")
				out[status.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestInstrumentedToolHandler_NoInstrumentation(t *testing.T) {
	sc := newServerContext(t)

	called := false
	wrapped := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	})

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, called)
	assert.NotNil(t, result)
}

func TestInstrumentedToolHandler_RejectsMissingUser(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), server.Options{
		Store:       accounts.NewMemoryStore(),
		DefaultUser: "alice@example.com",
		RequireUser: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	var seen []string
	wrapped := InstrumentedToolHandler("events_delete", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		seen = append(seen, sc.User(ctx))
		return mcp.NewToolResultText("deleted"), nil
	})

	bare := server.UserFromRequest(context.Background(), httptest.NewRequest("POST", "/mcp", nil))
	result, err := wrapped(bare, callRequest(map[string]any{"accountId": "acc-1"}))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(result), server.UserHeader)
	assert.Empty(t, seen)

	req := httptest.NewRequest("POST", "/mcp", nil)
	req.Header.Set(server.UserHeader, "bob@example.com")
	result, err = wrapped(server.UserFromRequest(context.Background(), req), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, []string{"bob@example.com"}, seen)
}

func TestInstrumentedToolHandler_PropagatesError(t *testing.T) {
	sc := newServerContext(t)
	expectedErr := errors.New("test error")

	wrapped := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	})

	_, err := wrapped(context.Background(), mcp.CallToolRequest{})
	assert.Equal(t, expectedErr, err)
}

func TestInstrumentedToolHandler_RecordsStatus(t *testing.T) {
	sc := newServerContext(t)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)
	sc.SetMetrics(metrics)

	ok := InstrumentedToolHandler("events_list", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("[]"), nil
	})
	failing := InstrumentedToolHandler("events_delete", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("calendar client not found for accountId: x"), nil
	})

	_, err = ok(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	_, err = ok(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	result, err := failing(context.Background(), callRequest(map[string]any{"accountId": "x"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	counts := toolInvocations(t, reader)
	assert.Equal(t, int64(2), counts[instrumentation.StatusSuccess])
	assert.Equal(t, int64(1), counts[instrumentation.StatusError])
}

func TestInstrumentedToolHandler_AuditLog(t *testing.T) {
	sc := newServerContext(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sc.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrumentation.AuditLoggingConfig{Enabled: true}))

	wrapped := InstrumentedToolHandler("events_create", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("{}"), nil
	})

	ctx := server.WithUser(context.Background(), "bob@corp.example")
	_, err := wrapped(ctx, callRequest(map[string]any{"accountId": "acc-1"}))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"tool executed"`)
	assert.Contains(t, out, `"component":"audit"`)
	assert.Contains(t, out, `"tool":"events_create"`)
	assert.Contains(t, out, "corp.example")
	assert.NotContains(t, out, "bob@corp.example")
}
