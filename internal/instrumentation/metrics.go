package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrProvider  = "provider"
	attrStage     = "stage"
	attrResult    = "result"
	attrTool      = "tool"
	attrUser      = "user_domain"
)

// Metrics holds the OpenTelemetry instruments recorded by calmux. A nil
// *Metrics records nothing.
type Metrics struct {
	// transport
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Provider API metrics
	providerOperationsTotal   metric.Int64Counter
	providerOperationDuration metric.Float64Histogram

	// Account metrics
	tokenRefreshTotal metric.Int64Counter
	accountsConnected metric.Int64UpDownCounter

	// Aggregation metrics
	branchFailuresTotal metric.Int64Counter

	// tools
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// adds user_domain to tool metrics
	detailedLabels bool
}

// NewMetrics registers every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.providerOperationsTotal, err = meter.Int64Counter(
		"provider_api_operations_total",
		metric.WithDescription("Total number of calendar provider API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider_api_operations_total counter: %w", err)
	}

	m.providerOperationDuration, err = meter.Float64Histogram(
		"provider_api_operation_duration_seconds",
		metric.WithDescription("Calendar provider API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider_api_operation_duration_seconds histogram: %w", err)
	}

	m.tokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of account token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	m.accountsConnected, err = meter.Int64UpDownCounter(
		"accounts_connected",
		metric.WithDescription("Number of accounts connected through this process"),
		metric.WithUnit("{account}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create accounts_connected gauge: %w", err)
	}

	m.branchFailuresTotal, err = meter.Int64Counter(
		"aggregate_branch_failures_total",
		metric.WithDescription("Total number of fan-out branches that failed and were skipped"),
		metric.WithUnit("{branch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create aggregate_branch_failures_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"tool_invocation_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_invocation_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records a request to the HTTP transport. Paths are
// collapsed by PathLabel.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, PathLabel(path)),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordProviderOperation records one call against a vendor API.
// Operation is the adapter method, e.g. events or create_event.
func (m *Metrics) RecordProviderOperation(ctx context.Context, provider, operation, status string, duration time.Duration) {
	if m == nil || m.providerOperationsTotal == nil || m.providerOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrProvider, ProviderLabel(provider)),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.providerOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.providerOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTokenRefresh counts a refresh attempt with RefreshResultSuccess or
// RefreshResultFailure.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, provider, result string) {
	if m == nil || m.tokenRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	m.tokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrProvider, ProviderLabel(provider)),
		attribute.String(attrResult, result),
	))
}

// RecordBranchFailure counts a fan-out branch that was dropped from an
// aggregated result. Stage is where it failed: resolve, discover or fetch.
func (m *Metrics) RecordBranchFailure(ctx context.Context, provider, stage string) {
	if m == nil || m.branchFailuresTotal == nil {
		return // Instrumentation not initialized
	}

	m.branchFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrProvider, ProviderLabel(provider)),
		attribute.String(attrStage, stage),
	))
}

// IncrementAccountsConnected records a newly connected account.
func (m *Metrics) IncrementAccountsConnected(ctx context.Context, provider string) {
	if m == nil || m.accountsConnected == nil {
		return // Instrumentation not initialized
	}

	m.accountsConnected.Add(ctx, 1, metric.WithAttributes(attribute.String(attrProvider, ProviderLabel(provider))))
}

// DecrementAccountsConnected records a removed account.
func (m *Metrics) DecrementAccountsConnected(ctx context.Context, provider string) {
	if m == nil || m.accountsConnected == nil {
		return // Instrumentation not initialized
	}

	m.accountsConnected.Add(ctx, -1, metric.WithAttributes(attribute.String(attrProvider, ProviderLabel(provider))))
}

// RecordToolInvocation records a tool call without user labels.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.RecordToolInvocationWithUser(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithUser records an MCP tool invocation. The user's
// email domain is only attached when detailed labels are enabled.
func (m *Metrics) RecordToolInvocationWithUser(ctx context.Context, toolName, status, user string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	if m.detailedLabels && user != "" {
		attrs = append(attrs, attribute.String(attrUser, ExtractUserDomain(user)))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
