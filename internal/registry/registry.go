package registry

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/calendar"
	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/microsoft"
	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/tasks"
)

// CalendarConstructor builds a calendar adapter bound to one access token.
type CalendarConstructor func(ctx context.Context, accessToken string) (provider.CalendarProvider, error)

// TaskConstructor builds a task adapter bound to one access token.
type TaskConstructor func(ctx context.Context, accessToken string) (provider.TaskProvider, error)

// Registry resolves accounts to adapters. It is safe for concurrent use.
type Registry struct {
	calendars map[provider.ID]CalendarConstructor
	tasks     map[provider.ID]TaskConstructor
	metrics   *instrumentation.Metrics
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	google    []option.ClientOption
	microsoft []microsoft.Option
	metrics   *instrumentation.Metrics
}

// WithGoogleOptions passes extra client options to the Google Calendar and
// Google Tasks adapters.
func WithGoogleOptions(opts ...option.ClientOption) Option {
	return func(o *options) {
		o.google = append(o.google, opts...)
	}
}

// WithMicrosoftOptions passes extra options to the Graph adapter.
func WithMicrosoftOptions(opts ...microsoft.Option) Option {
	return func(o *options) {
		o.microsoft = append(o.microsoft, opts...)
	}
}

// WithMetrics wraps every resolved adapter so each vendor call is recorded
// as a provider.<operation> span and in the provider API metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New returns the registry of the built-in adapters: calendar for google and
// microsoft, tasks for google.
func New(opts ...Option) *Registry {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	calendars := map[provider.ID]CalendarConstructor{
		provider.Google: func(ctx context.Context, token string) (provider.CalendarProvider, error) {
			return calendar.NewClient(ctx, token, o.google...)
		},
		provider.Microsoft: func(ctx context.Context, token string) (provider.CalendarProvider, error) {
			return microsoft.NewClient(ctx, token, o.microsoft...)
		},
	}
	taskLists := map[provider.ID]TaskConstructor{
		provider.Google: func(ctx context.Context, token string) (provider.TaskProvider, error) {
			return tasks.NewClient(ctx, token, o.google...)
		},
	}

	return &Registry{calendars: calendars, tasks: taskLists, metrics: o.metrics}
}

// NewWith returns a registry over the given constructors. The maps are
// copied. Only WithMetrics is meaningful here.
func NewWith(calendars map[provider.ID]CalendarConstructor, taskLists map[provider.ID]TaskConstructor, opts ...Option) *Registry {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		calendars: make(map[provider.ID]CalendarConstructor, len(calendars)),
		tasks:     make(map[provider.ID]TaskConstructor, len(taskLists)),
		metrics:   o.metrics,
	}
	for id, c := range calendars {
		r.calendars[id] = c
	}
	for id, c := range taskLists {
		r.tasks[id] = c
	}
	return r
}

// SupportsCalendar reports whether id has a calendar adapter.
func (r *Registry) SupportsCalendar(id provider.ID) bool {
	_, ok := r.calendars[id]
	return ok
}

// SupportsTasks reports whether id has a task adapter.
func (r *Registry) SupportsTasks(id provider.ID) bool {
	_, ok := r.tasks[id]
	return ok
}

// CalendarProvider binds account to its calendar adapter.
func (r *Registry) CalendarProvider(ctx context.Context, account accounts.Account) (provider.CalendarProvider, error) {
	if err := checkTokens(account); err != nil {
		return nil, err
	}
	construct, ok := r.calendars[account.ProviderID]
	if !ok {
		return nil, &provider.ConfigError{Provider: account.ProviderID, AccountID: account.ID, Err: provider.ErrUnsupportedProvider}
	}

	p, err := construct(ctx, account.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s calendar client: %w", account.ProviderID, err)
	}
	if r.metrics != nil {
		p = &instrumentedCalendar{inner: p, metrics: r.metrics}
	}
	return p, nil
}

// TaskProvider binds account to its task adapter.
func (r *Registry) TaskProvider(ctx context.Context, account accounts.Account) (provider.TaskProvider, error) {
	if err := checkTokens(account); err != nil {
		return nil, err
	}
	construct, ok := r.tasks[account.ProviderID]
	if !ok {
		return nil, &provider.ConfigError{Provider: account.ProviderID, AccountID: account.ID, Err: provider.ErrUnsupportedProvider}
	}

	p, err := construct(ctx, account.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s tasks client: %w", account.ProviderID, err)
	}
	if r.metrics != nil {
		p = &instrumentedTasks{inner: p, metrics: r.metrics}
	}
	return p, nil
}

// checkTokens requires both credentials even though adapters only use the
// access token.
func checkTokens(account accounts.Account) error {
	if account.AccessToken == "" || account.RefreshToken == "" {
		return &provider.ConfigError{Provider: account.ProviderID, AccountID: account.ID, Err: provider.ErrInvalidAccount}
	}
	return nil
}
