package microsoft

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/temporal"
)

// graphTimeFormat is the wall-clock layout of Graph dateTimeTimeZone values.
const graphTimeFormat = "2006-01-02T15:04:05"

type graphCalendar struct {
	ID                string `json:"id,omitempty"`
	Name              string `json:"name,omitempty"`
	IsDefaultCalendar bool   `json:"isDefaultCalendar,omitempty"`
}

type dateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphLocation struct {
	DisplayName string `json:"displayName"`
}

// graphEvent uses pointers for every writable field so PATCH bodies carry
// only what the caller set.
type graphEvent struct {
	ID          string            `json:"id,omitempty"`
	Subject     *string           `json:"subject,omitempty"`
	Body        *itemBody         `json:"body,omitempty"`
	Start       *dateTimeTimeZone `json:"start,omitempty"`
	End         *dateTimeTimeZone `json:"end,omitempty"`
	IsAllDay    *bool             `json:"isAllDay,omitempty"`
	Location    *graphLocation    `json:"location,omitempty"`
	Categories  *[]string         `json:"categories,omitempty"`
	ShowAs      string            `json:"showAs,omitempty"`
	IsCancelled bool              `json:"isCancelled,omitempty"`
	WebLink     string            `json:"webLink,omitempty"`
}

type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseCalendar converts a Graph calendar
func parseCalendar(cal graphCalendar) provider.Calendar {
	return provider.Calendar{
		ID:         cal.ID,
		ProviderID: provider.Microsoft,
		Name:       cal.Name,
		Primary:    cal.IsDefaultCalendar,
	}
}

// parseEvent converts a Graph event
func parseEvent(ev graphEvent, calendarID string) (provider.CalendarEvent, error) {
	allDay := ev.IsAllDay != nil && *ev.IsAllDay

	start, err := parseDateTime(ev.Start, allDay)
	if err != nil {
		return provider.CalendarEvent{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseDateTime(ev.End, allDay)
	if err != nil {
		return provider.CalendarEvent{}, fmt.Errorf("end: %w", err)
	}

	event := provider.CalendarEvent{
		ID:         ev.ID,
		Start:      start,
		End:        end,
		AllDay:     allDay,
		Status:     ev.ShowAs,
		URL:        ev.WebLink,
		ProviderID: provider.Microsoft,
		CalendarID: calendarID,
	}
	if ev.IsCancelled {
		event.Status = "cancelled"
	}
	if ev.Subject != nil {
		event.Title = *ev.Subject
	}
	if ev.Body != nil {
		event.Description = ev.Body.Content
	}
	if ev.Location != nil {
		event.Location = ev.Location.DisplayName
	}
	if ev.Categories != nil && len(*ev.Categories) > 0 {
		event.Color = (*ev.Categories)[0]
	}
	return event, nil
}

// parseDateTime reads a Graph dateTimeTimeZone. UTC values become instants,
// other IANA zones become zoned values and all-day values become plain dates.
func parseDateTime(dt *dateTimeTimeZone, allDay bool) (temporal.Value, error) {
	if dt == nil || dt.DateTime == "" {
		return temporal.Value{}, nil
	}

	if allDay {
		date, _, _ := strings.Cut(dt.DateTime, "T")
		return temporal.Parse(date)
	}

	v, err := temporal.ParseInZone(dt.DateTime, dt.TimeZone)
	if err != nil {
		return temporal.Value{}, err
	}
	if loc := v.Location(); loc == time.UTC {
		return temporal.Instant(v.Time()), nil
	}
	return v, nil
}

// toDateTime writes a value in Graph's wall-clock-plus-zone form
func toDateTime(v temporal.Value) *dateTimeTimeZone {
	switch v.Kind() {
	case temporal.KindPlainDate:
		return &dateTimeTimeZone{DateTime: v.Date().In(time.UTC).Format(graphTimeFormat), TimeZone: "UTC"}
	case temporal.KindZoned:
		return &dateTimeTimeZone{DateTime: v.Time().Format(graphTimeFormat), TimeZone: v.Location().String()}
	case temporal.KindInstant:
		return &dateTimeTimeZone{DateTime: v.Time().UTC().Format(graphTimeFormat), TimeZone: "UTC"}
	default:
		return nil
	}
}

func toGraphEvent(in provider.CreateEventInput) graphEvent {
	start, end := in.Start, in.End
	if in.AllDay {
		start, end = provider.AsDate(start), provider.AsDate(end)
	}

	allDay := in.AllDay
	ev := graphEvent{
		Subject:  &in.Title,
		Start:    toDateTime(start),
		End:      toDateTime(end),
		IsAllDay: &allDay,
	}
	if in.Description != "" {
		ev.Body = &itemBody{ContentType: "text", Content: in.Description}
	}
	if in.Location != "" {
		ev.Location = &graphLocation{DisplayName: in.Location}
	}
	if in.Color != "" {
		ev.Categories = &[]string{in.Color}
	}
	return ev
}

func toGraphPatch(in provider.UpdateEventInput) graphEvent {
	var ev graphEvent
	ev.Subject = in.Title
	if in.Description != nil {
		ev.Body = &itemBody{ContentType: "text", Content: *in.Description}
	}
	if in.Location != nil {
		ev.Location = &graphLocation{DisplayName: *in.Location}
	}
	if in.Color != nil {
		categories := []string{}
		if *in.Color != "" {
			categories = append(categories, *in.Color)
		}
		ev.Categories = &categories
	}

	allDay := in.AllDay != nil && *in.AllDay
	if in.AllDay != nil {
		v := *in.AllDay
		ev.IsAllDay = &v
	}
	if in.Start != nil {
		start := *in.Start
		if allDay {
			start = provider.AsDate(start)
		}
		ev.Start = toDateTime(start)
	}
	if in.End != nil {
		end := *in.End
		if allDay {
			end = provider.AsDate(end)
		}
		ev.End = toDateTime(end)
	}
	return ev
}
