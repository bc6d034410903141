package logging

import (
	"context"
	"log/slog"
)

// Logger is the logging surface the aggregation layer depends on. Arguments
// are slog key-value pairs or slog.Attr values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// SlogAdapter implements Logger on top of a *slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger. A nil logger falls back to slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// With returns a Logger that adds args to every record.
func (a *SlogAdapter) With(args ...any) Logger {
	return &SlogAdapter{logger: a.logger.With(args...)}
}

// Enabled reports whether records at level would be written.
func (a *SlogAdapter) Enabled(ctx context.Context, level slog.Level) bool {
	return a.logger.Enabled(ctx, level)
}

// Logger returns the wrapped *slog.Logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}

// DefaultLogger wraps slog.Default().
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(nil)
}

// Discard returns a Logger that drops every record.
func Discard() *SlogAdapter {
	return NewSlogAdapter(slog.New(slog.DiscardHandler))
}
