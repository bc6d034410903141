package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/calmux/internal/provider"
)

// Client is the Google Calendar adapter. It is bound to one access token and
// never refreshes it.
type Client struct {
	svc *calendar.Service
	now func() time.Time
}

var _ provider.CalendarProvider = (*Client)(nil)

// NewClient creates a Google Calendar adapter for accessToken. Extra options
// are applied after the authenticated HTTP client, so tests can point the
// service at a local endpoint.
func NewClient(ctx context.Context, accessToken string, opts ...option.ClientOption) (*Client, error) {
	if accessToken == "" {
		return nil, &provider.ConfigError{Provider: provider.Google, Err: provider.ErrMissingAccessToken}
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
	}

	svc, err := calendar.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc, now: time.Now}, nil
}

// ProviderID returns provider.Google.
func (c *Client) ProviderID() provider.ID {
	return provider.Google
}

// Calendars lists every calendar on the account's calendar list.
func (c *Client) Calendars(ctx context.Context) ([]provider.Calendar, error) {
	var calendars []provider.Calendar
	err := c.svc.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, entry := range page.Items {
			calendars = append(calendars, toCalendar(entry))
		}
		return nil
	})
	if err != nil {
		return nil, apiError("calendars.list", err)
	}
	return calendars, nil
}

// CreateCalendar creates a secondary calendar.
func (c *Client) CreateCalendar(ctx context.Context, in provider.CreateCalendarInput) (*provider.Calendar, error) {
	created, err := c.svc.Calendars.Insert(&calendar.Calendar{
		Summary:     in.Name,
		Description: in.Description,
		TimeZone:    in.TimeZone,
	}).Context(ctx).Do()
	if err != nil {
		return nil, apiError("calendars.create", err)
	}

	cal := fromCalendarResource(created)
	return &cal, nil
}

// UpdateCalendar patches the calendar's name, description or time zone.
func (c *Client) UpdateCalendar(ctx context.Context, calendarID string, in provider.UpdateCalendarInput) (*provider.Calendar, error) {
	patch := &calendar.Calendar{}
	if in.Name != nil {
		patch.Summary = *in.Name
		patch.ForceSendFields = append(patch.ForceSendFields, "Summary")
	}
	if in.Description != nil {
		patch.Description = *in.Description
		patch.ForceSendFields = append(patch.ForceSendFields, "Description")
	}
	if in.TimeZone != nil {
		patch.TimeZone = *in.TimeZone
		patch.ForceSendFields = append(patch.ForceSendFields, "TimeZone")
	}

	updated, err := c.svc.Calendars.Patch(calendarID, patch).Context(ctx).Do()
	if err != nil {
		return nil, apiError("calendars.update", err)
	}

	cal := fromCalendarResource(updated)
	cal.Primary = calendarID == provider.PrimaryCalendarID
	return &cal, nil
}

// DeleteCalendar deletes a secondary calendar. The primary calendar is refused.
func (c *Client) DeleteCalendar(ctx context.Context, calendarID string) error {
	if calendarID == provider.PrimaryCalendarID {
		return provider.ErrPrimaryCalendar
	}

	if err := c.svc.Calendars.Delete(calendarID).Context(ctx).Do(); err != nil {
		return apiError("calendars.delete", err)
	}
	return nil
}

// Events lists single event instances in the window ordered by start time.
func (c *Client) Events(ctx context.Context, calendarID string, timeMin, timeMax *time.Time) ([]provider.CalendarEvent, error) {
	start, end := provider.DefaultWindow(c.now(), timeMin, timeMax)

	events, err := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(provider.MaxEventsPerCalendar).
		Do()
	if err != nil {
		return nil, apiError("events.list", err)
	}

	result := make([]provider.CalendarEvent, 0, len(events.Items))
	for _, event := range events.Items {
		normalized, err := toCalendarEvent(event, calendarID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event %s: %w", event.Id, err)
		}
		result = append(result, normalized)
	}
	return result, nil
}

// CreateEvent inserts an event into the calendar.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, in provider.CreateEventInput) (*provider.CalendarEvent, error) {
	created, err := c.svc.Events.Insert(calendarID, toGoogleEvent(in)).Context(ctx).Do()
	if err != nil {
		return nil, apiError("events.create", err)
	}
	return eventResult(created, calendarID)
}

// UpdateEvent patches only the fields set in the input.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, in provider.UpdateEventInput) (*provider.CalendarEvent, error) {
	updated, err := c.svc.Events.Patch(calendarID, eventID, toGooglePatch(in)).Context(ctx).Do()
	if err != nil {
		return nil, apiError("events.update", err)
	}
	return eventResult(updated, calendarID)
}

// DeleteEvent deletes an event.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return apiError("events.delete", err)
	}
	return nil
}

func eventResult(event *calendar.Event, calendarID string) (*provider.CalendarEvent, error) {
	normalized, err := toCalendarEvent(event, calendarID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event %s: %w", event.Id, err)
	}
	return &normalized, nil
}

// apiError converts a googleapi failure into a provider.APIError.
func apiError(op string, err error) error {
	apiErr := &provider.APIError{Provider: provider.Google, Op: op, Err: err}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		apiErr.StatusCode = gErr.Code
	}
	return apiErr
}
