package provider

import (
	"time"

	"github.com/teemow/calmux/internal/temporal"
)

// ID identifies a calendar or task vendor. The set is closed.
type ID string

const (
	Google    ID = "google"
	Microsoft ID = "microsoft"
)

// IDs lists every known provider identifier.
func IDs() []ID {
	return []ID{Google, Microsoft}
}

// Valid reports whether id is one of the known providers.
func (id ID) Valid() bool {
	return id == Google || id == Microsoft
}

const (
	// PrimaryCalendarID is the well-known alias of an account's default calendar.
	PrimaryCalendarID = "primary"

	// TimeRangeDaysFuture is the width of the default event window, starting now.
	TimeRangeDaysFuture = 30

	// MaxEventsPerCalendar caps the events returned by a single Events call.
	MaxEventsPerCalendar = 250
)

// DefaultWindow returns the event window used when the caller omits a bound.
func DefaultWindow(now time.Time, timeMin, timeMax *time.Time) (time.Time, time.Time) {
	start := now
	if timeMin != nil {
		start = *timeMin
	}
	end := now.AddDate(0, 0, TimeRangeDaysFuture)
	if timeMax != nil {
		end = *timeMax
	}
	return start, end
}

// Calendar is a normalized calendar belonging to one connected account.
type Calendar struct {
	ID          string `json:"id"`
	ProviderID  ID     `json:"providerId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	Primary     bool   `json:"primary"`
	AccountID   string `json:"accountId"`
}

// CalendarEvent is a normalized event. Start and End are plain dates when
// AllDay is set.
type CalendarEvent struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Start       temporal.Value `json:"start"`
	End         temporal.Value `json:"end"`
	AllDay      bool           `json:"allDay,omitempty"`
	Location    string         `json:"location,omitempty"`
	Status      string         `json:"status,omitempty"`
	URL         string         `json:"url,omitempty"`
	Color       string         `json:"color,omitempty"`
	ProviderID  ID             `json:"providerId"`
	AccountID   string         `json:"accountId"`
	CalendarID  string         `json:"calendarId"`
}

// Category is a task list.
type Category struct {
	ID        string `json:"id"`
	Provider  ID     `json:"provider,omitempty"`
	Title     string `json:"title,omitempty"`
	Updated   string `json:"updated,omitempty"`
	AccountID string `json:"accountId,omitempty"`
}

// Task is a normalized task belonging to one Category.
type Task struct {
	ID         string `json:"id"`
	Title      string `json:"title,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
	Status     string `json:"status,omitempty"`
	Completed  string `json:"completed,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Due        string `json:"due,omitempty"`
	AccountID  string `json:"accountId,omitempty"`
}

// CreateEventInput carries the fields of a new event.
type CreateEventInput struct {
	Title       string         `json:"title"`
	Start       temporal.Value `json:"start"`
	End         temporal.Value `json:"end"`
	AllDay      bool           `json:"allDay,omitempty"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Color       string         `json:"color,omitempty"`
}

// UpdateEventInput carries a partial event update. Nil fields are left
// unchanged at the vendor.
type UpdateEventInput struct {
	Title       *string         `json:"title,omitempty"`
	Start       *temporal.Value `json:"start,omitempty"`
	End         *temporal.Value `json:"end,omitempty"`
	AllDay      *bool           `json:"allDay,omitempty"`
	Description *string         `json:"description,omitempty"`
	Location    *string         `json:"location,omitempty"`
	Color       *string         `json:"color,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (in UpdateEventInput) IsEmpty() bool {
	return in.Title == nil && in.Start == nil && in.End == nil && in.AllDay == nil &&
		in.Description == nil && in.Location == nil && in.Color == nil
}

// CreateCalendarInput carries the fields of a new calendar.
type CreateCalendarInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
}

// UpdateCalendarInput carries a partial calendar update.
type UpdateCalendarInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	TimeZone    *string `json:"timeZone,omitempty"`
}

// TaskInput carries the writable fields of a task. On update, empty fields
// are left unchanged.
type TaskInput struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
	Due    string `json:"due,omitempty"`
}

// AsDate converts v to a plain date using its own wall-clock date. Plain
// dates are returned unchanged.
func AsDate(v temporal.Value) temporal.Value {
	if v.IsZero() || v.IsDate() {
		return v
	}
	return temporal.FromDate(v.Date())
}
