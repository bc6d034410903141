package registry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/provider"
)

// observe runs fn inside a provider span and records its outcome.
func observe(ctx context.Context, m *instrumentation.Metrics, id provider.ID, op string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := instrumentation.StartProviderSpan(ctx, string(id), op, attrs...)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	m.RecordProviderOperation(ctx, string(id), op, status, time.Since(start))
	return err
}

type instrumentedCalendar struct {
	inner   provider.CalendarProvider
	metrics *instrumentation.Metrics
}

func (c *instrumentedCalendar) ProviderID() provider.ID {
	return c.inner.ProviderID()
}

func (c *instrumentedCalendar) Calendars(ctx context.Context) (result []provider.Calendar, err error) {
	err = observe(ctx, c.metrics, c.ProviderID(), instrumentation.OperationCalendars, nil, func(ctx context.Context) error {
		result, err = c.inner.Calendars(ctx)
		return err
	})
	return result, err
}

func (c *instrumentedCalendar) CreateCalendar(ctx context.Context, in provider.CreateCalendarInput) (result *provider.Calendar, err error) {
	err = observe(ctx, c.metrics, c.ProviderID(), instrumentation.OperationCreateCalendar, nil, func(ctx context.Context) error {
		result, err = c.inner.CreateCalendar(ctx, in)
		return err
	})
	return result, err
}

func (c *instrumentedCalendar) UpdateCalendar(ctx context.Context, calendarID string, in provider.UpdateCalendarInput) (result *provider.Calendar, err error) {
	err = observe(ctx, c.metrics, c.ProviderID(), instrumentation.OperationUpdateCalendar, instrumentation.CalendarAttrs(calendarID, ""), func(ctx context.Context) error {
		result, err = c.inner.UpdateCalendar(ctx, calendarID, in)
		return err
	})
	return result, err
}

func (c *instrumentedCalendar) DeleteCalendar(ctx context.Context, calendarID string) error {
	return observe(ctx, c.metrics, c.ProviderID(), instrumentation.OperationDeleteCalendar, instrumentation.CalendarAttrs(calendarID, ""), func(ctx context.Context) error {
		return c.inner.DeleteCalendar(ctx, calendarID)
	})
}

func (c *instrumentedCalendar) Events(ctx context.Context, calendarID string, timeMin, timeMax *time.Time) (result []provider.CalendarEvent, err error) {
	err = observe(ctx, c.metrics, c.ProviderID(), instrumentation.OperationEvents, instrumentation.CalendarAttrs(calendarID, ""), func(ctx context.Context) error {
		result, err = c.inner.Events(ctx, calendarID, timeMin, timeMax)
		return err
	})
	return result, err
}

func (c *instrumentedCalendar) CreateEvent(ctx context.Context, calendarID string, in provider.CreateEventInput) (result *provider.CalendarEvent, err error) {
	err = observe(ctx, c.metrics, c.ProviderID(), instrumentation.OperationCreateEvent, instrumentation.CalendarAttrs(calendarID, ""), func(ctx context.Context) error {
		result, err = c.inner.CreateEvent(ctx, calendarID, in)
		return err
	})
	return result, err
}

func (c *instrumentedCalendar) UpdateEvent(ctx context.Context, calendarID, eventID string, in provider.UpdateEventInput) (result *provider.CalendarEvent, err error) {
	err = observe(ctx, c.metrics, c.ProviderID(), instrumentation.OperationUpdateEvent, instrumentation.CalendarAttrs(calendarID, eventID), func(ctx context.Context) error {
		result, err = c.inner.UpdateEvent(ctx, calendarID, eventID, in)
		return err
	})
	return result, err
}

func (c *instrumentedCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return observe(ctx, c.metrics, c.ProviderID(), instrumentation.OperationDeleteEvent, instrumentation.CalendarAttrs(calendarID, eventID), func(ctx context.Context) error {
		return c.inner.DeleteEvent(ctx, calendarID, eventID)
	})
}

type instrumentedTasks struct {
	inner   provider.TaskProvider
	metrics *instrumentation.Metrics
}

func (t *instrumentedTasks) ProviderID() provider.ID {
	return t.inner.ProviderID()
}

func (t *instrumentedTasks) Categories(ctx context.Context) (result []provider.Category, err error) {
	err = observe(ctx, t.metrics, t.ProviderID(), instrumentation.OperationCategories, nil, func(ctx context.Context) error {
		result, err = t.inner.Categories(ctx)
		return err
	})
	return result, err
}

func (t *instrumentedTasks) Tasks(ctx context.Context) (result []provider.Task, err error) {
	err = observe(ctx, t.metrics, t.ProviderID(), instrumentation.OperationTasks, nil, func(ctx context.Context) error {
		result, err = t.inner.Tasks(ctx)
		return err
	})
	return result, err
}

func (t *instrumentedTasks) TasksForCategory(ctx context.Context, category provider.Category) (result []provider.Task, err error) {
	err = observe(ctx, t.metrics, t.ProviderID(), instrumentation.OperationTasks, instrumentation.ResourceAttrs("task_list", category.ID), func(ctx context.Context) error {
		result, err = t.inner.TasksForCategory(ctx, category)
		return err
	})
	return result, err
}

func (t *instrumentedTasks) CreateTask(ctx context.Context, category provider.Category, in provider.TaskInput) (result *provider.Task, err error) {
	err = observe(ctx, t.metrics, t.ProviderID(), instrumentation.OperationCreateTask, instrumentation.ResourceAttrs("task_list", category.ID), func(ctx context.Context) error {
		result, err = t.inner.CreateTask(ctx, category, in)
		return err
	})
	return result, err
}

func (t *instrumentedTasks) UpdateTask(ctx context.Context, category provider.Category, in provider.TaskInput) (result *provider.Task, err error) {
	err = observe(ctx, t.metrics, t.ProviderID(), instrumentation.OperationUpdateTask, instrumentation.ResourceAttrs("task_list", category.ID), func(ctx context.Context) error {
		result, err = t.inner.UpdateTask(ctx, category, in)
		return err
	})
	return result, err
}

func (t *instrumentedTasks) DeleteTask(ctx context.Context, category provider.Category, taskID string) error {
	return observe(ctx, t.metrics, t.ProviderID(), instrumentation.OperationDeleteTask, instrumentation.ResourceAttrs("task_list", category.ID), func(ctx context.Context) error {
		return t.inner.DeleteTask(ctx, category, taskID)
	})
}
