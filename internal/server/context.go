package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/aggregate"
	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/registry"
)

// DefaultUser owns requests that carry no user identity.
const DefaultUser = "default"

// Options configures a ServerContext.
type Options struct {
	Store      accounts.Store
	Registry   *registry.Registry
	Aggregator *aggregate.Aggregator
	Logger     *slog.Logger

	// DefaultUser is used when the request context names no user.
	DefaultUser string

	// RequireUser rejects requests that name no user instead of acting for
	// DefaultUser. The HTTP transport sets it.
	RequireUser bool

	// TimeZone is the zone for plain dates when a tool call names none.
	TimeZone string
}

// ServerContext holds the dependencies shared by every MCP tool handler.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	store       accounts.Store
	registry    *registry.Registry
	aggregator  *aggregate.Aggregator
	logger      *slog.Logger
	defaultUser string
	requireUser bool
	timeZone    string

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. A nil Registry gets the
// built-in adapters and a nil Aggregator is built over Store.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("account store is required")
	}
	if opts.Registry == nil {
		opts.Registry = registry.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Aggregator == nil {
		opts.Aggregator = aggregate.New(opts.Store, opts.Registry)
	}
	if opts.DefaultUser == "" {
		opts.DefaultUser = DefaultUser
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		store:       opts.Store,
		registry:    opts.Registry,
		aggregator:  opts.Aggregator,
		logger:      opts.Logger,
		defaultUser: opts.DefaultUser,
		requireUser: opts.RequireUser,
		timeZone:    opts.TimeZone,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Store returns the account store.
func (sc *ServerContext) Store() accounts.Store {
	return sc.store
}

// Registry returns the provider registry.
func (sc *ServerContext) Registry() *registry.Registry {
	return sc.registry
}

// Aggregator returns the aggregation layer.
func (sc *ServerContext) Aggregator() *aggregate.Aggregator {
	return sc.aggregator
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// TimeZone returns the configured default time zone. Empty means UTC.
func (sc *ServerContext) TimeZone() string {
	return sc.timeZone
}

// ResolveUser returns the user a request acts for: the one placed in ctx by
// WithUser, or the configured default. With RequireUser set a context
// without a user yields ErrNoUser.
func (sc *ServerContext) ResolveUser(ctx context.Context) (string, error) {
	if user, ok := UserFromContext(ctx); ok {
		return user, nil
	}
	if sc.requireUser {
		return "", ErrNoUser
	}
	return sc.defaultUser, nil
}

// User is ResolveUser without the error. It returns "" when no user can be
// resolved, which owns no accounts.
func (sc *ServerContext) User(ctx context.Context) string {
	user, _ := sc.ResolveUser(ctx)
	return user
}

// SetMetrics sets the metrics recorder for tool instrumentation.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for tool invocations.
func (sc *ServerContext) SetAuditLogger(l *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = l
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
