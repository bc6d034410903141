package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/codes"

	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with a span, metrics and
// audit logging. The calling user and the targeted account are attached to
// the audit record. Calls that resolve no user never reach handler.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, err := sc.ResolveUser(ctx); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		user := sc.User(ctx)
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithUser(user)
		if accountID := String(request.GetArguments(), ArgAccountID); accountID != "" {
			invocation.WithAccount(accountID)
		}

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			span.SetStatus(codes.Error, resultText(result))
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocationWithUser(ctx, toolName, status, user, duration)
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}

func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
