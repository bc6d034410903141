// Package providertest provides in-memory adapters for tests of code that
// consumes provider.CalendarProvider and provider.TaskProvider.
package providertest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/temporal"
)

// Calendar is a scripted calendar adapter. Events are keyed by calendar id.
// Set the *Err fields to make the matching operation fail.
type Calendar struct {
	ID provider.ID

	mu       sync.Mutex
	calendar []provider.Calendar
	events   map[string][]provider.CalendarEvent

	CalendarsErr error
	// EventsErr fails Events for the listed calendar ids.
	EventsErr map[string]error
	WriteErr  error

	// BeforeEvents runs at the start of every Events call, outside the
	// fake's lock.
	BeforeEvents func(calendarID string)

	CalendarsCalls atomic.Int32
	EventsCalls    atomic.Int32
	WriteCalls     atomic.Int32
}

var _ provider.CalendarProvider = (*Calendar)(nil)

// NewCalendar returns a fake adapter serving the given calendars.
func NewCalendar(id provider.ID, calendars ...provider.Calendar) *Calendar {
	return &Calendar{
		ID:        id,
		calendar:  calendars,
		events:    make(map[string][]provider.CalendarEvent),
		EventsErr: make(map[string]error),
	}
}

// AddEvents appends events to calendarID.
func (c *Calendar) AddEvents(calendarID string, events ...provider.CalendarEvent) *Calendar {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[calendarID] = append(c.events[calendarID], events...)
	return c
}

func (c *Calendar) ProviderID() provider.ID { return c.ID }

func (c *Calendar) Calendars(context.Context) ([]provider.Calendar, error) {
	c.CalendarsCalls.Add(1)
	if c.CalendarsErr != nil {
		return nil, c.CalendarsErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]provider.Calendar(nil), c.calendar...), nil
}

func (c *Calendar) CreateCalendar(_ context.Context, in provider.CreateCalendarInput) (*provider.Calendar, error) {
	c.WriteCalls.Add(1)
	if c.WriteErr != nil {
		return nil, c.WriteErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cal := provider.Calendar{ID: fmt.Sprintf("cal-%d", len(c.calendar)+1), ProviderID: c.ID, Name: in.Name, Description: in.Description, TimeZone: in.TimeZone}
	c.calendar = append(c.calendar, cal)
	return &cal, nil
}

func (c *Calendar) UpdateCalendar(_ context.Context, calendarID string, in provider.UpdateCalendarInput) (*provider.Calendar, error) {
	c.WriteCalls.Add(1)
	if c.WriteErr != nil {
		return nil, c.WriteErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.calendar {
		if c.calendar[i].ID != calendarID {
			continue
		}
		if in.Name != nil {
			c.calendar[i].Name = *in.Name
		}
		if in.Description != nil {
			c.calendar[i].Description = *in.Description
		}
		if in.TimeZone != nil {
			c.calendar[i].TimeZone = *in.TimeZone
		}
		cal := c.calendar[i]
		return &cal, nil
	}
	return nil, &provider.APIError{Provider: c.ID, Op: "calendars.update", StatusCode: 404, Err: provider.ErrNotFound}
}

func (c *Calendar) DeleteCalendar(_ context.Context, calendarID string) error {
	if calendarID == provider.PrimaryCalendarID {
		return provider.ErrPrimaryCalendar
	}
	c.WriteCalls.Add(1)
	return c.WriteErr
}

func (c *Calendar) Events(_ context.Context, calendarID string, _, _ *time.Time) ([]provider.CalendarEvent, error) {
	c.EventsCalls.Add(1)
	if c.BeforeEvents != nil {
		c.BeforeEvents(calendarID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.EventsErr[calendarID]; err != nil {
		return nil, err
	}
	return append([]provider.CalendarEvent(nil), c.events[calendarID]...), nil
}

func (c *Calendar) CreateEvent(_ context.Context, calendarID string, in provider.CreateEventInput) (*provider.CalendarEvent, error) {
	c.WriteCalls.Add(1)
	if c.WriteErr != nil {
		return nil, c.WriteErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ev := provider.CalendarEvent{
		ID:          fmt.Sprintf("ev-%d", len(c.events[calendarID])+1),
		Title:       in.Title,
		Description: in.Description,
		Start:       in.Start,
		End:         in.End,
		AllDay:      in.AllDay,
		Location:    in.Location,
		Color:       in.Color,
		ProviderID:  c.ID,
		CalendarID:  calendarID,
	}
	c.events[calendarID] = append(c.events[calendarID], ev)
	return &ev, nil
}

func (c *Calendar) UpdateEvent(_ context.Context, calendarID, eventID string, in provider.UpdateEventInput) (*provider.CalendarEvent, error) {
	c.WriteCalls.Add(1)
	if c.WriteErr != nil {
		return nil, c.WriteErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, ev := range c.events[calendarID] {
		if ev.ID != eventID {
			continue
		}
		if in.Title != nil {
			ev.Title = *in.Title
		}
		if in.Start != nil {
			ev.Start = *in.Start
		}
		if in.End != nil {
			ev.End = *in.End
		}
		if in.AllDay != nil {
			ev.AllDay = *in.AllDay
		}
		if in.Description != nil {
			ev.Description = *in.Description
		}
		c.events[calendarID][i] = ev
		return &ev, nil
	}
	return nil, &provider.APIError{Provider: c.ID, Op: "events.update", StatusCode: 404, Err: provider.ErrNotFound}
}

func (c *Calendar) DeleteEvent(_ context.Context, calendarID, eventID string) error {
	c.WriteCalls.Add(1)
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.events[calendarID]
	for i, ev := range events {
		if ev.ID == eventID {
			c.events[calendarID] = append(events[:i], events[i+1:]...)
			return nil
		}
	}
	return &provider.APIError{Provider: c.ID, Op: "events.delete", StatusCode: 404, Err: provider.ErrNotFound}
}

// Tasks is a scripted task adapter keyed by category id.
type Tasks struct {
	ID provider.ID

	mu         sync.Mutex
	categories []provider.Category
	tasks      map[string][]provider.Task

	CategoriesErr error
	WriteErr      error
}

var _ provider.TaskProvider = (*Tasks)(nil)

// NewTasks returns a fake task adapter serving the given categories.
func NewTasks(id provider.ID, categories ...provider.Category) *Tasks {
	return &Tasks{ID: id, categories: categories, tasks: make(map[string][]provider.Task)}
}

// AddTasks appends tasks to categoryID.
func (t *Tasks) AddTasks(categoryID string, tasks ...provider.Task) *Tasks {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, task := range tasks {
		task.CategoryID = categoryID
		t.tasks[categoryID] = append(t.tasks[categoryID], task)
	}
	return t
}

func (t *Tasks) ProviderID() provider.ID { return t.ID }

func (t *Tasks) Categories(context.Context) ([]provider.Category, error) {
	if t.CategoriesErr != nil {
		return nil, t.CategoriesErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]provider.Category(nil), t.categories...), nil
}

func (t *Tasks) Tasks(ctx context.Context) ([]provider.Task, error) {
	categories, err := t.Categories(ctx)
	if err != nil {
		return nil, err
	}
	var result []provider.Task
	for _, c := range categories {
		tasks, _ := t.TasksForCategory(ctx, c)
		result = append(result, tasks...)
	}
	return result, nil
}

func (t *Tasks) TasksForCategory(_ context.Context, category provider.Category) ([]provider.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]provider.Task(nil), t.tasks[category.ID]...), nil
}

func (t *Tasks) CreateTask(_ context.Context, category provider.Category, in provider.TaskInput) (*provider.Task, error) {
	if t.WriteErr != nil {
		return nil, t.WriteErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	task := provider.Task{
		ID:         fmt.Sprintf("task-%d", len(t.tasks[category.ID])+1),
		Title:      in.Title,
		CategoryID: category.ID,
		Status:     in.Status,
		Notes:      in.Notes,
		Due:        in.Due,
	}
	t.tasks[category.ID] = append(t.tasks[category.ID], task)
	return &task, nil
}

func (t *Tasks) UpdateTask(_ context.Context, category provider.Category, in provider.TaskInput) (*provider.Task, error) {
	if t.WriteErr != nil {
		return nil, t.WriteErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, task := range t.tasks[category.ID] {
		if task.ID != in.ID {
			continue
		}
		if in.Title != "" {
			task.Title = in.Title
		}
		if in.Status != "" {
			task.Status = in.Status
		}
		if in.Notes != "" {
			task.Notes = in.Notes
		}
		if in.Due != "" {
			task.Due = in.Due
		}
		t.tasks[category.ID][i] = task
		return &task, nil
	}
	return nil, &provider.APIError{Provider: t.ID, Op: "tasks.update", StatusCode: 404, Err: provider.ErrNotFound}
}

func (t *Tasks) DeleteTask(_ context.Context, category provider.Category, taskID string) error {
	if t.WriteErr != nil {
		return t.WriteErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	tasks := t.tasks[category.ID]
	for i, task := range tasks {
		if task.ID == taskID {
			t.tasks[category.ID] = append(tasks[:i], tasks[i+1:]...)
			return nil
		}
	}
	return &provider.APIError{Provider: t.ID, Op: "tasks.delete", StatusCode: 404, Err: provider.ErrNotFound}
}

// Event returns a timed event starting at start, lasting one hour.
func Event(id string, start time.Time) provider.CalendarEvent {
	return provider.CalendarEvent{
		ID:    id,
		Title: id,
		Start: temporal.Instant(start),
		End:   temporal.Instant(start.Add(time.Hour)),
	}
}

// AllDayEvent returns an all-day event on the given date.
func AllDayEvent(id string, year int, month time.Month, day int) provider.CalendarEvent {
	start := temporal.PlainDate(year, month, day)
	return provider.CalendarEvent{
		ID:     id,
		Title:  id,
		Start:  start,
		End:    temporal.PlainDate(year, month, day+1),
		AllDay: true,
	}
}
