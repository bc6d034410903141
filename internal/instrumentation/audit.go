package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/calmux/internal/logging"
)

// ToolInvocation is the audit record of one MCP tool call.
type ToolInvocation struct {
	Tool string

	// User is the calling user as resolved by the server. It is often an
	// email address and is only logged in full when PII is enabled.
	User string

	// AccountID is the target of single-account tools. Empty for fan-out
	// tools.
	AccountID string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a call of tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, StartTime: time.Now()}
}

func (ti *ToolInvocation) WithUser(user string) *ToolInvocation {
	ti.User = user
	return ti
}

func (ti *ToolInvocation) WithAccount(accountID string) *ToolInvocation {
	ti.AccountID = accountID
	return ti
}

// WithSpanContext copies the trace and span id of the active span, if any.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Complete stops the clock and records the outcome.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// Status returns the metric status label of the invocation.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// Attrs returns the record as slog attributes. Without includePII the user
// is replaced by a stable hash and the email domain.
func (ti *ToolInvocation) Attrs(includePII bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("status", ti.Status()),
		slog.Duration("duration", ti.Duration),
	}

	if includePII {
		attrs = append(attrs, slog.String("user", ti.User))
	} else {
		attrs = append(attrs,
			slog.String("user_hash", logging.AnonymizeEmail(ti.User)),
			slog.String("user_domain", ExtractUserDomain(ti.User)),
		)
	}

	optional := []struct{ key, value string }{
		{"account", ti.AccountID},
		{"trace_id", ti.TraceID},
		{"span_id", ti.SpanID},
		{"error", ti.Error},
	}
	for _, o := range optional {
		if o.value != "" {
			attrs = append(attrs, slog.String(o.key, o.value))
		}
	}
	return attrs
}

// AuditLogger writes one record per tool invocation.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger returns an enabled AuditLogger that hashes users.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig returns an AuditLogger configured by config. A
// nil logger falls back to slog.Default().
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("component", "audit")),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs ti at info level on success and warn level on
// failure.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	level := slog.LevelInfo
	msg := "tool executed"
	if !ti.Success {
		level = slog.LevelWarn
		msg = "tool failed"
	}
	al.logger.LogAttrs(context.Background(), level, msg, ti.Attrs(al.includePII)...)
}
