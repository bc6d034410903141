package calendar

import (
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/temporal"
)

// toCalendar converts a calendar list entry
func toCalendar(entry *calendar.CalendarListEntry) provider.Calendar {
	if entry == nil {
		return provider.Calendar{ProviderID: provider.Google}
	}
	return provider.Calendar{
		ID:          entry.Id,
		ProviderID:  provider.Google,
		Name:        entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
	}
}

// fromCalendarResource converts a calendar resource, which carries no primary flag
func fromCalendarResource(cal *calendar.Calendar) provider.Calendar {
	if cal == nil {
		return provider.Calendar{ProviderID: provider.Google}
	}
	return provider.Calendar{
		ID:          cal.Id,
		ProviderID:  provider.Google,
		Name:        cal.Summary,
		Description: cal.Description,
		TimeZone:    cal.TimeZone,
	}
}

// toCalendarEvent converts a Google Calendar event
func toCalendarEvent(event *calendar.Event, calendarID string) (provider.CalendarEvent, error) {
	if event == nil {
		return provider.CalendarEvent{ProviderID: provider.Google, CalendarID: calendarID}, nil
	}

	start, err := fromEventDateTime(event.Start)
	if err != nil {
		return provider.CalendarEvent{}, fmt.Errorf("start: %w", err)
	}
	end, err := fromEventDateTime(event.End)
	if err != nil {
		return provider.CalendarEvent{}, fmt.Errorf("end: %w", err)
	}

	return provider.CalendarEvent{
		ID:          event.Id,
		Title:       event.Summary,
		Description: event.Description,
		Start:       start,
		End:         end,
		AllDay:      event.Start != nil && event.Start.Date != "",
		Location:    event.Location,
		Status:      event.Status,
		URL:         event.HtmlLink,
		Color:       event.ColorId,
		ProviderID:  provider.Google,
		CalendarID:  calendarID,
	}, nil
}

// fromEventDateTime reads the date, or the date-time with its optional zone
func fromEventDateTime(dt *calendar.EventDateTime) (temporal.Value, error) {
	if dt == nil {
		return temporal.Value{}, nil
	}
	if dt.Date != "" {
		return temporal.Parse(dt.Date)
	}
	if dt.DateTime == "" {
		return temporal.Value{}, nil
	}

	t, err := time.Parse(time.RFC3339, dt.DateTime)
	if err != nil {
		return temporal.Value{}, fmt.Errorf("invalid dateTime %q: %w", dt.DateTime, err)
	}
	if dt.TimeZone == "" {
		return temporal.Instant(t), nil
	}
	loc, err := temporal.LoadLocation(dt.TimeZone)
	if err != nil {
		return temporal.Value{}, err
	}
	return temporal.Zoned(t.In(loc)), nil
}

// toEventDateTime writes a plain date as date, a zoned value as dateTime plus
// timeZone and an instant as a UTC dateTime
func toEventDateTime(v temporal.Value) *calendar.EventDateTime {
	switch v.Kind() {
	case temporal.KindPlainDate:
		return &calendar.EventDateTime{Date: v.Date().String()}
	case temporal.KindZoned:
		return &calendar.EventDateTime{
			DateTime: v.Time().Format(time.RFC3339),
			TimeZone: v.Location().String(),
		}
	case temporal.KindInstant:
		return &calendar.EventDateTime{DateTime: v.Time().Format(time.RFC3339)}
	default:
		return nil
	}
}

func toGoogleEvent(in provider.CreateEventInput) *calendar.Event {
	start, end := in.Start, in.End
	if in.AllDay {
		start, end = provider.AsDate(start), provider.AsDate(end)
	}
	return &calendar.Event{
		Summary:     in.Title,
		Description: in.Description,
		Location:    in.Location,
		ColorId:     in.Color,
		Start:       toEventDateTime(start),
		End:         toEventDateTime(end),
	}
}

// toGooglePatch builds a patch body holding only the fields set in the input.
// Explicit empty strings are forced onto the wire so they clear the field.
func toGooglePatch(in provider.UpdateEventInput) *calendar.Event {
	patch := &calendar.Event{}
	if in.Title != nil {
		patch.Summary = *in.Title
		patch.ForceSendFields = append(patch.ForceSendFields, "Summary")
	}
	if in.Description != nil {
		patch.Description = *in.Description
		patch.ForceSendFields = append(patch.ForceSendFields, "Description")
	}
	if in.Location != nil {
		patch.Location = *in.Location
		patch.ForceSendFields = append(patch.ForceSendFields, "Location")
	}
	if in.Color != nil {
		patch.ColorId = *in.Color
		patch.ForceSendFields = append(patch.ForceSendFields, "ColorId")
	}

	allDay := in.AllDay != nil && *in.AllDay
	if in.Start != nil {
		start := *in.Start
		if allDay {
			start = provider.AsDate(start)
		}
		patch.Start = patchEventDateTime(start)
	}
	if in.End != nil {
		end := *in.End
		if allDay {
			end = provider.AsDate(end)
		}
		patch.End = patchEventDateTime(end)
	}
	return patch
}

// patchEventDateTime nulls the representation not in use so switching between
// all-day and timed events does not leave a stale date or dateTime behind.
func patchEventDateTime(v temporal.Value) *calendar.EventDateTime {
	dt := toEventDateTime(v)
	if dt == nil {
		return nil
	}
	if v.IsDate() {
		dt.NullFields = []string{"DateTime", "TimeZone"}
	} else {
		dt.NullFields = []string{"Date"}
	}
	return dt
}
