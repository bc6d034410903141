package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for all calmux spans.
const TracerName = "github.com/teemow/calmux"

// Span attribute keys.
const (
	SpanAttrTool         = "mcp.tool"
	SpanAttrProvider     = "calendar.provider"
	SpanAttrOperation    = "calendar.operation"
	SpanAttrCalendar     = "calendar.id"
	SpanAttrResourceType = "calendar.resource_type"
	SpanAttrResourceID   = "calendar.resource_id"
)

// CalendarAttrs describes a calendar-scoped call. Empty ids are left out.
func CalendarAttrs(calendarID, eventID string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if calendarID != "" {
		attrs = append(attrs, attribute.String(SpanAttrCalendar, calendarID))
	}
	return append(attrs, ResourceAttrs("event", eventID)...)
}

// ResourceAttrs names the object a call acts on, or nothing when id is empty.
func ResourceAttrs(kind, id string) []attribute.KeyValue {
	if id == "" {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String(SpanAttrResourceType, kind),
		attribute.String(SpanAttrResourceID, id),
	}
}

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartToolSpan starts the server span "tool.<name>" of an MCP tool call.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, "tool."+toolName,
		trace.WithAttributes(append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartProviderSpan starts the client span "provider.<operation>" of a
// vendor API call.
func StartProviderSpan(ctx context.Context, provider, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	base := []attribute.KeyValue{
		attribute.String(SpanAttrProvider, provider),
		attribute.String(SpanAttrOperation, operation),
	}
	return tracer().Start(ctx, "provider."+operation,
		trace.WithAttributes(append(base, attrs...)...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records err on span. A nil err leaves the span untouched.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
