// Package instrumentation provides OpenTelemetry instrumentation for the
// calmux server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Provider API Metrics:
//   - provider_api_operations_total: Counter of vendor API calls by provider, operation, status
//   - provider_api_operation_duration_seconds: Histogram of vendor API call durations
//
// Account Metrics:
//   - oauth_token_refresh_total: Counter of token refreshes by provider and result
//   - accounts_connected: Up/down counter of accounts connected by provider
//
// Aggregation Metrics:
//   - aggregate_branch_failures_total: Counter of skipped fan-out branches by provider and stage
//
// MCP Tool Metrics:
//   - tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - tool_invocation_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and vendor API
// calls (provider.<operation>).
//
// # Configuration
//
// LoadConfig reads the settings from the environment:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces and metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calmux)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII: audit trail of tool calls
//
// # Example Usage
//
//	config, err := instrumentation.LoadConfig()
//	if err != nil {
//		return err
//	}
//	provider, err := instrumentation.NewProvider(ctx, config)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordProviderOperation(ctx, "google", instrumentation.OperationEvents, instrumentation.StatusSuccess, time.Since(start))
package instrumentation
