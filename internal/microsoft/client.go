package microsoft

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/teemow/calmux/internal/provider"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Client is the Microsoft Graph calendar adapter. It is bound to one access
// token and never refreshes it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

var _ provider.CalendarProvider = (*Client)(nil)

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at a different Graph endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client the authenticated transport wraps.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// NewClient creates a Graph calendar adapter for accessToken.
func NewClient(ctx context.Context, accessToken string, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, &provider.ConfigError{Provider: provider.Microsoft, Err: provider.ErrMissingAccessToken}
	}

	o := clientOptions{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}

	return &Client{
		httpClient: oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})),
		baseURL:    o.baseURL,
		now:        time.Now,
	}, nil
}

// ProviderID returns provider.Microsoft.
func (c *Client) ProviderID() provider.ID {
	return provider.Microsoft
}

// calendarPath maps the primary alias to the default calendar resource.
func calendarPath(calendarID string) string {
	if calendarID == provider.PrimaryCalendarID {
		return "/me/calendar"
	}
	return "/me/calendars/" + url.PathEscape(calendarID)
}

// Calendars lists the user's calendars. Graph requires an explicit $select here.
func (c *Client) Calendars(ctx context.Context) ([]provider.Calendar, error) {
	var result struct {
		Value []graphCalendar `json:"value"`
	}
	query := encodeQuery([][2]string{{"$select", "id,name,isDefaultCalendar"}})
	if err := c.do(ctx, "calendars.list", http.MethodGet, "/me/calendars?"+query, nil, &result); err != nil {
		return nil, err
	}

	calendars := make([]provider.Calendar, 0, len(result.Value))
	for _, cal := range result.Value {
		calendars = append(calendars, parseCalendar(cal))
	}
	return calendars, nil
}

// CreateCalendar creates a calendar. Graph calendars have no description or
// time zone, so only the name is sent.
func (c *Client) CreateCalendar(ctx context.Context, in provider.CreateCalendarInput) (*provider.Calendar, error) {
	var created graphCalendar
	if err := c.do(ctx, "calendars.create", http.MethodPost, "/me/calendars", graphCalendar{Name: in.Name}, &created); err != nil {
		return nil, err
	}
	cal := parseCalendar(created)
	return &cal, nil
}

// UpdateCalendar renames a calendar.
func (c *Client) UpdateCalendar(ctx context.Context, calendarID string, in provider.UpdateCalendarInput) (*provider.Calendar, error) {
	body := map[string]any{}
	if in.Name != nil {
		body["name"] = *in.Name
	}

	var updated graphCalendar
	if err := c.do(ctx, "calendars.update", http.MethodPatch, calendarPath(calendarID), body, &updated); err != nil {
		return nil, err
	}
	cal := parseCalendar(updated)
	return &cal, nil
}

// DeleteCalendar deletes a calendar. The primary calendar is refused.
func (c *Client) DeleteCalendar(ctx context.Context, calendarID string) error {
	if calendarID == provider.PrimaryCalendarID {
		return provider.ErrPrimaryCalendar
	}
	return c.do(ctx, "calendars.delete", http.MethodDelete, calendarPath(calendarID), nil, nil)
}

// Events lists events fully inside the window ordered by start.
func (c *Client) Events(ctx context.Context, calendarID string, timeMin, timeMax *time.Time) ([]provider.CalendarEvent, error) {
	start, end := provider.DefaultWindow(c.now(), timeMin, timeMax)

	query := encodeQuery([][2]string{
		{"$filter", fmt.Sprintf("start/dateTime ge '%s' and end/dateTime le '%s'",
			start.UTC().Format(graphTimeFormat), end.UTC().Format(graphTimeFormat))},
		{"$orderby", "start/dateTime"},
		{"$top", strconv.Itoa(provider.MaxEventsPerCalendar)},
	})

	var result struct {
		Value []graphEvent `json:"value"`
	}
	if err := c.do(ctx, "events.list", http.MethodGet, calendarPath(calendarID)+"/events?"+query, nil, &result); err != nil {
		return nil, err
	}

	events := make([]provider.CalendarEvent, 0, len(result.Value))
	for _, ev := range result.Value {
		event, err := parseEvent(ev, calendarID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event %s: %w", ev.ID, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// CreateEvent creates an event in the calendar.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, in provider.CreateEventInput) (*provider.CalendarEvent, error) {
	var created graphEvent
	if err := c.do(ctx, "events.create", http.MethodPost, calendarPath(calendarID)+"/events", toGraphEvent(in), &created); err != nil {
		return nil, err
	}
	return eventResult(created, calendarID)
}

// UpdateEvent patches only the fields set in the input.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, in provider.UpdateEventInput) (*provider.CalendarEvent, error) {
	var updated graphEvent
	path := calendarPath(calendarID) + "/events/" + url.PathEscape(eventID)
	if err := c.do(ctx, "events.update", http.MethodPatch, path, toGraphPatch(in), &updated); err != nil {
		return nil, err
	}
	return eventResult(updated, calendarID)
}

// DeleteEvent deletes an event.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	path := calendarPath(calendarID) + "/events/" + url.PathEscape(eventID)
	return c.do(ctx, "events.delete", http.MethodDelete, path, nil, nil)
}

func eventResult(ev graphEvent, calendarID string) (*provider.CalendarEvent, error) {
	event, err := parseEvent(ev, calendarID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event %s: %w", ev.ID, err)
	}
	return &event, nil
}

// do sends one Graph request. A non-2xx response becomes a provider.APIError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &provider.APIError{Provider: provider.Microsoft, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &provider.APIError{
			Provider:   provider.Microsoft,
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        readGraphError(resp.Body),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func readGraphError(r io.Reader) error {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read error body: %w", err)
	}

	var ge graphError
	if err := json.Unmarshal(raw, &ge); err != nil || ge.Error.Code == "" {
		if len(raw) == 0 {
			return errors.New("empty response body")
		}
		return errors.New(strings.TrimSpace(string(raw)))
	}
	return fmt.Errorf("%s: %s", ge.Error.Code, ge.Error.Message)
}

// encodeQuery encodes OData parameters with %20 for spaces and keeps the
// order stable.
func encodeQuery(params [][2]string) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p[0]+"="+strings.ReplaceAll(url.QueryEscape(p[1]), "+", "%20"))
	}
	return strings.Join(parts, "&")
}
