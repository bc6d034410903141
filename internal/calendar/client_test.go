package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/temporal"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), "test-token", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	client.now = func() time.Time { return time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC) }
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrMissingAccessToken)
	assert.True(t, provider.IsConfigError(err))
}

func TestCalendars(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/users/me/calendarList", r.URL.Path)

		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(t, w, calendar.CalendarList{
				Items:         []*calendar.CalendarListEntry{{Id: "me@example.com", Summary: "Me", Primary: true, TimeZone: "Europe/Berlin"}},
				NextPageToken: "page-2",
			})
			return
		}
		writeJSON(t, w, calendar.CalendarList{
			Items: []*calendar.CalendarListEntry{{Id: "team", Summary: "Team", Description: "shared"}},
		})
	})

	calendars, err := client.Calendars(context.Background())
	require.NoError(t, err)
	require.Len(t, calendars, 2)

	assert.Equal(t, provider.Calendar{
		ID: "me@example.com", ProviderID: provider.Google, Name: "Me", TimeZone: "Europe/Berlin", Primary: true,
	}, calendars[0])
	assert.Equal(t, "shared", calendars[1].Description)
	assert.False(t, calendars[1].Primary)
}

func TestEvents_DefaultWindowAndOrdering(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "2025-03-01T12:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "2025-03-31T12:00:00Z", q.Get("timeMax"))
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "250", q.Get("maxResults"))

		writeJSON(t, w, calendar.Events{Items: []*calendar.Event{
			{
				Id:       "all-day",
				Summary:  "Holiday",
				Start:    &calendar.EventDateTime{Date: "2025-03-05"},
				End:      &calendar.EventDateTime{Date: "2025-03-06"},
				ColorId:  "11",
				HtmlLink: "https://calendar.google.com/event?eid=1",
			},
			{
				Id:       "zoned",
				Summary:  "Standup",
				Location: "Room 1",
				Status:   "confirmed",
				Start:    &calendar.EventDateTime{DateTime: "2025-03-06T09:00:00+01:00", TimeZone: "Europe/Berlin"},
				End:      &calendar.EventDateTime{DateTime: "2025-03-06T09:15:00+01:00", TimeZone: "Europe/Berlin"},
			},
			{
				Id:    "instant",
				Start: &calendar.EventDateTime{DateTime: "2025-03-07T10:00:00Z"},
				End:   &calendar.EventDateTime{DateTime: "2025-03-07T11:00:00Z"},
			},
		}})
	})

	events, err := client.Events(context.Background(), "primary", nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 3)

	allDay := events[0]
	assert.True(t, allDay.AllDay)
	assert.Equal(t, temporal.KindPlainDate, allDay.Start.Kind())
	assert.Equal(t, "2025-03-05", allDay.Start.String())
	assert.Equal(t, "11", allDay.Color)
	assert.Equal(t, "https://calendar.google.com/event?eid=1", allDay.URL)
	assert.Equal(t, "primary", allDay.CalendarID)
	assert.Equal(t, provider.Google, allDay.ProviderID)

	zoned := events[1]
	assert.False(t, zoned.AllDay)
	assert.Equal(t, temporal.KindZoned, zoned.Start.Kind())
	assert.Equal(t, "Europe/Berlin", zoned.Start.Location().String())
	assert.Equal(t, "Room 1", zoned.Location)
	assert.Equal(t, "confirmed", zoned.Status)

	assert.Equal(t, temporal.KindInstant, events[2].Start.Kind())
}

func TestEvents_ExplicitWindow(t *testing.T) {
	min := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	max := time.Date(2025, time.April, 8, 0, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-04-01T00:00:00Z", r.URL.Query().Get("timeMin"))
		assert.Equal(t, "2025-04-08T00:00:00Z", r.URL.Query().Get("timeMax"))
		writeJSON(t, w, calendar.Events{})
	})

	events, err := client.Events(context.Background(), "team", &min, &max)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEvents_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"Not Found"}}`)
	})

	_, err := client.Events(context.Background(), "gone", nil, nil)
	require.Error(t, err)

	var apiErr *provider.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "events.list", apiErr.Op)
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestCreateEvent_AllDay(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)

		var body calendar.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Offsite", body.Summary)
		assert.Equal(t, "Lake house", body.Location)
		assert.Equal(t, "bring snacks", body.Description)
		assert.Equal(t, "5", body.ColorId)
		assert.Equal(t, "2025-05-10", body.Start.Date)
		assert.Empty(t, body.Start.DateTime)
		assert.Equal(t, "2025-05-11", body.End.Date)

		body.Id = "evt-1"
		writeJSON(t, w, body)
	})

	event, err := client.CreateEvent(context.Background(), "primary", provider.CreateEventInput{
		Title:       "Offsite",
		Start:       temporal.Instant(time.Date(2025, time.May, 10, 8, 0, 0, 0, time.UTC)),
		End:         temporal.PlainDate(2025, time.May, 11),
		AllDay:      true,
		Description: "bring snacks",
		Location:    "Lake house",
		Color:       "5",
	})
	require.NoError(t, err)
	assert.Equal(t, "evt-1", event.ID)
	assert.True(t, event.AllDay)
	assert.Equal(t, "Lake house", event.Location)
	assert.Equal(t, "5", event.Color)
}

func TestUpdateEvent_PatchesOnlySetFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/calendars/team/events/evt-1", r.URL.Path)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, "Renamed", raw["summary"])
		assert.Equal(t, "", raw["location"])
		assert.NotContains(t, raw, "description")
		assert.NotContains(t, raw, "start")

		writeJSON(t, w, calendar.Event{
			Id:      "evt-1",
			Summary: "Renamed",
			Start:   &calendar.EventDateTime{DateTime: "2025-03-06T09:00:00Z"},
			End:     &calendar.EventDateTime{DateTime: "2025-03-06T10:00:00Z"},
		})
	})

	title, location := "Renamed", ""
	event, err := client.UpdateEvent(context.Background(), "team", "evt-1", provider.UpdateEventInput{
		Title:    &title,
		Location: &location,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", event.Title)
	assert.Equal(t, "team", event.CalendarID)
}

func TestDeleteEvent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/calendars/team/events/evt-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteEvent(context.Background(), "team", "evt-1"))
}

func TestDeleteCalendar_RefusesPrimary(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.DeleteCalendar(context.Background(), provider.PrimaryCalendarID)
	assert.ErrorIs(t, err, provider.ErrPrimaryCalendar)
	assert.Zero(t, calls.Load(), "primary delete must not reach the vendor")

	require.NoError(t, client.DeleteCalendar(context.Background(), "secondary"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateAndUpdateCalendar(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body calendar.Calendar
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/calendars", r.URL.Path)
			body.Id = "new-cal"
		case http.MethodPatch:
			assert.Equal(t, "/calendars/new-cal", r.URL.Path)
			body.Id = "new-cal"
		}
		writeJSON(t, w, body)
	})

	created, err := client.CreateCalendar(context.Background(), provider.CreateCalendarInput{
		Name: "Side project", Description: "evenings", TimeZone: "Europe/Berlin",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-cal", created.ID)
	assert.Equal(t, "Side project", created.Name)
	assert.Equal(t, "Europe/Berlin", created.TimeZone)

	name := "Renamed"
	updated, err := client.UpdateCalendar(context.Background(), "new-cal", provider.UpdateCalendarInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestEventDateTimeRoundTrip(t *testing.T) {
	berlin, err := temporal.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	values := []temporal.Value{
		temporal.PlainDate(2025, time.March, 14),
		temporal.Zoned(time.Date(2025, time.March, 14, 9, 30, 0, 0, berlin)),
		temporal.Instant(time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)),
	}

	for _, v := range values {
		got, err := fromEventDateTime(toEventDateTime(v))
		require.NoError(t, err)
		assert.True(t, v.Equal(got), "%s != %s", v, got)
	}
}

func TestToCalendar_Nil(t *testing.T) {
	cal := toCalendar(nil)
	if cal.ID != "" {
		t.Errorf("Expected empty ID for nil entry, got %s", cal.ID)
	}
}
