package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/logging"
	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/registry"
	"github.com/teemow/calmux/internal/temporal"
)

// Refresher renews an account's access token before it is bound to an adapter.
type Refresher interface {
	Refresh(ctx context.Context, account accounts.Account) (accounts.Account, error)
}

// Aggregator merges the calendars, events and tasks of all accounts a user
// has connected, and routes single-account writes to the right adapter.
type Aggregator struct {
	store     accounts.Store
	registry  *registry.Registry
	refresher Refresher
	logger    logging.Logger
	metrics   *instrumentation.Metrics
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRefresher renews expiring tokens before adapters are bound.
func WithRefresher(r Refresher) Option {
	return func(a *Aggregator) {
		a.refresher = r
	}
}

// WithLogger sets the logger used for skipped branches.
func WithLogger(l logging.Logger) Option {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// WithMetrics counts skipped branches.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// New creates an Aggregator over store and reg.
func New(store accounts.Store, reg *registry.Registry, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:    store,
		registry: reg,
		logger:   logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ListEventsRequest selects the events merged by ListEvents.
type ListEventsRequest struct {
	// CalendarIDs restricts every account to these calendars and skips
	// calendar discovery. Empty means all calendars of each account.
	CalendarIDs []string

	// TimeMin and TimeMax bound the window. Nil uses provider.DefaultWindow.
	TimeMin *time.Time
	TimeMax *time.Time

	// TimeZone places all-day events on the timeline when sorting.
	// Empty means UTC.
	TimeZone string
}

// ListEvents returns the events of every connected account ordered by start
// instant. A failing account or calendar is logged and contributes no
// events; only failing to load the account list is an error.
func (a *Aggregator) ListEvents(ctx context.Context, userID string, req ListEventsRequest) ([]provider.CalendarEvent, error) {
	if _, err := temporal.LoadLocation(req.TimeZone); err != nil {
		return nil, err
	}

	accts, err := a.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	slots := make([][]provider.CalendarEvent, len(accts))
	var g errgroup.Group
	for i, account := range accts {
		g.Go(func() error {
			slots[i] = a.accountEvents(ctx, account, req)
			return nil
		})
	}
	_ = g.Wait()

	var events []provider.CalendarEvent
	for _, s := range slots {
		events = append(events, s...)
	}
	return sortByStart(events, req.TimeZone, a.logger), nil
}

func (a *Aggregator) accountEvents(ctx context.Context, account accounts.Account, req ListEventsRequest) []provider.CalendarEvent {
	p, err := a.bindCalendar(ctx, account)
	if err != nil {
		a.skip(ctx, account, "", instrumentation.StageResolve, err)
		return nil
	}

	calendarIDs := req.CalendarIDs
	if len(calendarIDs) == 0 {
		cals, err := p.Calendars(ctx)
		if err != nil {
			a.skip(ctx, account, "", instrumentation.StageDiscover, err)
			return nil
		}
		calendarIDs = make([]string, 0, len(cals))
		for _, c := range cals {
			calendarIDs = append(calendarIDs, c.ID)
		}
	}

	slots := make([][]provider.CalendarEvent, len(calendarIDs))
	var g errgroup.Group
	for i, calendarID := range calendarIDs {
		g.Go(func() error {
			events, err := p.Events(ctx, calendarID, req.TimeMin, req.TimeMax)
			if err != nil {
				a.skip(ctx, account, calendarID, instrumentation.StageFetch, err)
				return nil
			}
			for j := range events {
				events[j].CalendarID = calendarID
				events[j].ProviderID = account.ProviderID
				events[j].AccountID = account.ID
			}
			slots[i] = events
			return nil
		})
	}
	_ = g.Wait()

	var events []provider.CalendarEvent
	for _, s := range slots {
		events = append(events, s...)
	}
	return events
}

type keyedEvent struct {
	key   time.Time
	event provider.CalendarEvent
}

// sortByStart orders events by start instant. Ties keep their input order.
// Events whose start cannot be resolved sort first.
func sortByStart(events []provider.CalendarEvent, timeZone string, logger logging.Logger) []provider.CalendarEvent {
	keyed := make([]keyedEvent, len(events))
	for i, ev := range events {
		key, err := temporal.ToInstant(ev.Start, timeZone)
		if err != nil {
			logger.Debug("event start not resolvable", "event_id", ev.ID, logging.Provider(string(ev.ProviderID)), logging.Err(err))
		}
		keyed[i] = keyedEvent{key: key, event: ev}
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		return keyed[i].key.Before(keyed[j].key)
	})

	out := make([]provider.CalendarEvent, len(keyed))
	for i, k := range keyed {
		out[i] = k.event
	}
	return out
}

// ListCalendars returns the calendars of every connected account, stamped
// with their account id. Failing accounts are skipped.
func (a *Aggregator) ListCalendars(ctx context.Context, userID string) ([]provider.Calendar, error) {
	accts, err := a.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	slots := make([][]provider.Calendar, len(accts))
	var g errgroup.Group
	for i, account := range accts {
		g.Go(func() error {
			p, err := a.bindCalendar(ctx, account)
			if err != nil {
				a.skip(ctx, account, "", instrumentation.StageResolve, err)
				return nil
			}
			cals, err := p.Calendars(ctx)
			if err != nil {
				a.skip(ctx, account, "", instrumentation.StageDiscover, err)
				return nil
			}
			for j := range cals {
				cals[j].AccountID = account.ID
				cals[j].ProviderID = account.ProviderID
			}
			slots[i] = cals
			return nil
		})
	}
	_ = g.Wait()

	var result []provider.Calendar
	for _, s := range slots {
		result = append(result, s...)
	}
	return result, nil
}

// skip logs and counts a branch that contributes nothing to a merged result.
func (a *Aggregator) skip(ctx context.Context, account accounts.Account, calendarID, stage string, err error) {
	args := []any{
		logging.Provider(string(account.ProviderID)),
		logging.Account(account.ID),
		logging.UserHash(account.Email),
		"stage", stage,
		logging.Err(err),
	}
	if calendarID != "" {
		args = append(args, logging.Calendar(calendarID))
	}
	a.logger.Warn("skipping account branch", args...)
	a.metrics.RecordBranchFailure(ctx, string(account.ProviderID), stage)
}

func (a *Aggregator) refresh(ctx context.Context, account accounts.Account) (accounts.Account, error) {
	if a.refresher == nil {
		return account, nil
	}
	return a.refresher.Refresh(ctx, account)
}

func (a *Aggregator) bindCalendar(ctx context.Context, account accounts.Account) (provider.CalendarProvider, error) {
	account, err := a.refresh(ctx, account)
	if err != nil {
		return nil, err
	}
	return a.registry.CalendarProvider(ctx, account)
}

func (a *Aggregator) bindTasks(ctx context.Context, account accounts.Account) (provider.TaskProvider, error) {
	account, err := a.refresh(ctx, account)
	if err != nil {
		return nil, err
	}
	return a.registry.TaskProvider(ctx, account)
}

// lookup finds accountID among userID's accounts.
func (a *Aggregator) lookup(ctx context.Context, userID, accountID string) (accounts.Account, error) {
	account, err := a.store.Get(ctx, userID, accountID)
	if err != nil {
		return accounts.Account{}, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return accounts.Account{}, &provider.NotFoundError{Kind: "account", ID: accountID}
	}
	return *account, nil
}

func (a *Aggregator) calendarFor(ctx context.Context, userID, accountID string) (provider.CalendarProvider, accounts.Account, error) {
	account, err := a.lookup(ctx, userID, accountID)
	if err != nil {
		return nil, account, err
	}
	p, err := a.bindCalendar(ctx, account)
	if err != nil {
		return nil, account, err
	}
	return p, account, nil
}

func (a *Aggregator) tasksFor(ctx context.Context, userID, accountID string) (provider.TaskProvider, accounts.Account, error) {
	account, err := a.lookup(ctx, userID, accountID)
	if err != nil {
		return nil, account, err
	}
	p, err := a.bindTasks(ctx, account)
	if err != nil {
		return nil, account, err
	}
	return p, account, nil
}

func stampEvent(ev *provider.CalendarEvent, account accounts.Account, calendarID string) *provider.CalendarEvent {
	if ev == nil {
		return nil
	}
	ev.AccountID = account.ID
	ev.ProviderID = account.ProviderID
	ev.CalendarID = calendarID
	return ev
}
