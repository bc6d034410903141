package provider

import (
	"context"
	"time"
)

// CalendarProvider is the calendar capability every calendar vendor adapter implements.
// Adapters are bound to one account's access token and hold no other state.
type CalendarProvider interface {
	ProviderID() ID

	Calendars(ctx context.Context) ([]Calendar, error)
	CreateCalendar(ctx context.Context, in CreateCalendarInput) (*Calendar, error)
	UpdateCalendar(ctx context.Context, calendarID string, in UpdateCalendarInput) (*Calendar, error)
	// DeleteCalendar refuses PrimaryCalendarID without contacting the vendor.
	DeleteCalendar(ctx context.Context, calendarID string) error

	// Events lists events ordered by start. Nil bounds fall back to DefaultWindow.
	Events(ctx context.Context, calendarID string, timeMin, timeMax *time.Time) ([]CalendarEvent, error)
	CreateEvent(ctx context.Context, calendarID string, in CreateEventInput) (*CalendarEvent, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, in UpdateEventInput) (*CalendarEvent, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// TaskProvider is the task capability.
type TaskProvider interface {
	ProviderID() ID

	Categories(ctx context.Context) ([]Category, error)
	Tasks(ctx context.Context) ([]Task, error)
	TasksForCategory(ctx context.Context, category Category) ([]Task, error)
	CreateTask(ctx context.Context, category Category, in TaskInput) (*Task, error)
	UpdateTask(ctx context.Context, category Category, in TaskInput) (*Task, error)
	DeleteTask(ctx context.Context, category Category, taskID string) error
}
