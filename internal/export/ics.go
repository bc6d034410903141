package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/temporal"
)

// ProductID identifies calmux as the producer of exported calendars.
const ProductID = "-//calmux//EN"

// WriteICS encodes events as one VCALENDAR. now stamps every VEVENT.
func WriteICS(w io.Writer, events []provider.CalendarEvent, now time.Time) error {
	if len(events) == 0 {
		return fmt.Errorf("no events to export")
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	for _, ev := range events {
		vevent, err := toVEvent(ev, now)
		if err != nil {
			return err
		}
		cal.Children = append(cal.Children, vevent)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// UID returns the stable iCalendar UID of an event.
func UID(ev provider.CalendarEvent) string {
	return fmt.Sprintf("%s@%s.%s", ev.ID, ev.AccountID, ev.ProviderID)
}

func toVEvent(ev provider.CalendarEvent, now time.Time) (*ical.Component, error) {
	vevent := ical.NewComponent(ical.CompEvent)
	vevent.Props.SetText(ical.PropUID, UID(ev))
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	vevent.Props.SetText(ical.PropSummary, ev.Title)

	if err := setTime(vevent, ical.PropDateTimeStart, ev.Start); err != nil {
		return nil, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	if !ev.End.IsZero() {
		if err := setTime(vevent, ical.PropDateTimeEnd, ev.End); err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.ID, err)
		}
	}

	if ev.Description != "" {
		vevent.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		vevent.Props.SetText(ical.PropLocation, ev.Location)
	}
	if ev.URL != "" {
		vevent.Props.SetText(ical.PropURL, ev.URL)
	}
	if ev.Color != "" {
		vevent.Props.SetText(ical.PropCategories, ev.Color)
	}
	switch ev.Status {
	case "confirmed", "tentative", "cancelled":
		vevent.Props.SetText(ical.PropStatus, strings.ToUpper(ev.Status))
	}
	return vevent, nil
}

// setTime writes dates as VALUE=DATE, zoned values with their TZID and
// instants in UTC.
func setTime(c *ical.Component, name string, v temporal.Value) error {
	switch v.Kind() {
	case temporal.KindPlainDate:
		prop := ical.NewProp(name)
		prop.SetDate(v.Date().In(time.UTC))
		c.Props.Set(prop)
	case temporal.KindZoned:
		c.Props.SetDateTime(name, v.Time())
	case temporal.KindInstant:
		c.Props.SetDateTime(name, v.Time().UTC())
	default:
		return fmt.Errorf("missing %s", strings.ToLower(name))
	}
	return nil
}
