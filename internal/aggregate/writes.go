package aggregate

import (
	"context"

	"github.com/teemow/calmux/internal/provider"
)

// CreateEvent creates an event in one calendar of one of the user's accounts.
// An unknown account id yields a *provider.NotFoundError before any adapter
// is bound.
func (a *Aggregator) CreateEvent(ctx context.Context, userID, accountID, calendarID string, in provider.CreateEventInput) (*provider.CalendarEvent, error) {
	p, account, err := a.calendarFor(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	ev, err := p.CreateEvent(ctx, calendarID, in)
	if err != nil {
		return nil, err
	}
	return stampEvent(ev, account, calendarID), nil
}

// UpdateEvent patches an event. Nil input fields are left unchanged.
func (a *Aggregator) UpdateEvent(ctx context.Context, userID, accountID, calendarID, eventID string, in provider.UpdateEventInput) (*provider.CalendarEvent, error) {
	p, account, err := a.calendarFor(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	ev, err := p.UpdateEvent(ctx, calendarID, eventID, in)
	if err != nil {
		return nil, err
	}
	return stampEvent(ev, account, calendarID), nil
}

// DeleteEvent deletes an event.
func (a *Aggregator) DeleteEvent(ctx context.Context, userID, accountID, calendarID, eventID string) error {
	p, _, err := a.calendarFor(ctx, userID, accountID)
	if err != nil {
		return err
	}
	return p.DeleteEvent(ctx, calendarID, eventID)
}

// CreateCalendar creates a secondary calendar in one account.
func (a *Aggregator) CreateCalendar(ctx context.Context, userID, accountID string, in provider.CreateCalendarInput) (*provider.Calendar, error) {
	p, account, err := a.calendarFor(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	cal, err := p.CreateCalendar(ctx, in)
	if err != nil {
		return nil, err
	}
	cal.AccountID = account.ID
	cal.ProviderID = account.ProviderID
	return cal, nil
}

// UpdateCalendar patches a calendar's metadata.
func (a *Aggregator) UpdateCalendar(ctx context.Context, userID, accountID, calendarID string, in provider.UpdateCalendarInput) (*provider.Calendar, error) {
	p, account, err := a.calendarFor(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	cal, err := p.UpdateCalendar(ctx, calendarID, in)
	if err != nil {
		return nil, err
	}
	cal.AccountID = account.ID
	cal.ProviderID = account.ProviderID
	return cal, nil
}

// DeleteCalendar deletes a secondary calendar. The primary calendar is
// refused by every adapter.
func (a *Aggregator) DeleteCalendar(ctx context.Context, userID, accountID, calendarID string) error {
	p, _, err := a.calendarFor(ctx, userID, accountID)
	if err != nil {
		return err
	}
	return p.DeleteCalendar(ctx, calendarID)
}
