package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calmux/internal/aggregate"
	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/server"
	"github.com/teemow/calmux/internal/temporal"
	"github.com/teemow/calmux/internal/tools/common"
)

const valueFormats = "Date '2025-01-15', instant '2025-01-15T14:00:00Z' or zoned '2025-01-15T14:00:00+01:00[Europe/Paris]'"

// RegisterEventTools registers event-related tools with the MCP server
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listEventsTool := mcp.NewTool("events_list",
		mcp.WithDescription("List events from all connected calendar accounts, ordered by start time. Accounts that fail are skipped."),
		mcp.WithArray("calendarIds",
			mcp.Description("Only read these calendar IDs in every account. Omit to read all calendars."),
			mcp.WithStringItems(),
		),
		mcp.WithString("timeMin",
			mcp.Description("Window start. "+valueFormats+". Defaults to now."),
		),
		mcp.WithString("timeMax",
			mcp.Description("Window end. "+valueFormats+". Defaults to 30 days after now."),
		),
		mcp.WithString(common.ArgTimeZone,
			mcp.Description("IANA time zone used for plain dates and all-day ordering (e.g., 'America/New_York'). Defaults to UTC."),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandler("events_list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createEventTool := mcp.NewTool("events_create",
		mcp.WithDescription("Create an event in one calendar of one connected account"),
		mcp.WithString(common.ArgAccountID,
			mcp.Required(),
			mcp.Description("ID of the connected account (see accounts_list)"),
		),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID (use 'primary' for the account's default calendar)"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start. "+valueFormats),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End. "+valueFormats+". All-day end dates are exclusive."),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Create as all-day event. Implied when start and end are dates."),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("color",
			mcp.Description("Google color ID or Outlook category name"),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandler("events_create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	updateEventTool := mcp.NewTool("events_update",
		mcp.WithDescription("Update an event. Only the given fields change."),
		mcp.WithString(common.ArgAccountID,
			mcp.Required(),
			mcp.Description("ID of the connected account"),
		),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithString(common.ArgEventID,
			mcp.Required(),
			mcp.Description("The ID of the event to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("start",
			mcp.Description("New start. "+valueFormats),
		),
		mcp.WithString("end",
			mcp.Description("New end. "+valueFormats),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Make the event all-day or timed. Requires start and end"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("location",
			mcp.Description("New location"),
		),
		mcp.WithString("color",
			mcp.Description("New color ID or category name"),
		),
	)

	s.AddTool(updateEventTool, common.InstrumentedToolHandler("events_update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateEvent(ctx, request, sc)
		}))

	deleteEventTool := mcp.NewTool("events_delete",
		mcp.WithDescription("Delete an event"),
		mcp.WithString(common.ArgAccountID,
			mcp.Required(),
			mcp.Description("ID of the connected account"),
		),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithString(common.ArgEventID,
			mcp.Required(),
			mcp.Description("The ID of the event to delete"),
		),
	)

	s.AddTool(deleteEventTool, common.InstrumentedToolHandler("events_delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	return nil
}

func requestTimeZone(args map[string]any, sc *server.ServerContext) string {
	if tz := common.String(args, common.ArgTimeZone); tz != "" {
		return tz
	}
	return sc.TimeZone()
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	tz := requestTimeZone(args, sc)

	timeMin, err := common.Instant(args, "timeMin", tz)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.Instant(args, "timeMax", tz)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if timeMin != nil && timeMax != nil && timeMax.Before(*timeMin) {
		return mcp.NewToolResultError("timeMax must not be before timeMin"), nil
	}

	events, err := sc.Aggregator().ListEvents(ctx, sc.User(ctx), aggregate.ListEventsRequest{
		CalendarIDs: common.StringSlice(args, "calendarIds"),
		TimeMin:     timeMin,
		TimeMax:     timeMax,
		TimeZone:    tz,
	})
	if err != nil {
		return common.ErrorResult("list events", err), nil
	}
	if events == nil {
		events = []provider.CalendarEvent{}
	}

	return common.JSONResult(map[string]any{"events": events})
}

// eventTarget reads the account and calendar every single-account tool needs.
func eventTarget(args map[string]any) (accountID, calendarID string, err error) {
	if accountID, err = common.RequiredString(args, common.ArgAccountID); err != nil {
		return "", "", err
	}
	if calendarID, err = common.RequiredString(args, common.ArgCalendarID); err != nil {
		return "", "", err
	}
	return accountID, calendarID, nil
}

// createInput builds a CreateEventInput. An event whose start and end are
// both dates is all-day even without the flag.
func createInput(args map[string]any, timeZone string) (provider.CreateEventInput, error) {
	title, err := common.RequiredString(args, "title")
	if err != nil {
		return provider.CreateEventInput{}, err
	}
	start, ok, err := common.Value(args, "start")
	if err != nil {
		return provider.CreateEventInput{}, err
	}
	if !ok {
		return provider.CreateEventInput{}, fmt.Errorf("start is required")
	}
	end, ok, err := common.Value(args, "end")
	if err != nil {
		return provider.CreateEventInput{}, err
	}
	if !ok {
		return provider.CreateEventInput{}, fmt.Errorf("end is required")
	}

	allDay := common.Bool(args, "allDay") || (start.IsDate() && end.IsDate())
	if allDay {
		start, end = provider.AsDate(start), provider.AsDate(end)
	}

	cmp, err := temporal.Compare(start, end, timeZone)
	if err != nil {
		return provider.CreateEventInput{}, err
	}
	if cmp > 0 {
		return provider.CreateEventInput{}, fmt.Errorf("end must not be before start")
	}

	return provider.CreateEventInput{
		Title:       title,
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Description: common.String(args, "description"),
		Location:    common.String(args, "location"),
		Color:       common.String(args, "color"),
	}, nil
}

func updateInput(args map[string]any) (provider.UpdateEventInput, error) {
	in := provider.UpdateEventInput{
		Title:       common.OptionalString(args, "title"),
		AllDay:      common.OptionalBool(args, "allDay"),
		Description: common.OptionalString(args, "description"),
		Location:    common.OptionalString(args, "location"),
		Color:       common.OptionalString(args, "color"),
	}

	for key, dst := range map[string]**temporal.Value{"start": &in.Start, "end": &in.End} {
		v, ok, err := common.Value(args, key)
		if err != nil {
			return in, err
		}
		if !ok {
			continue
		}
		if in.AllDay != nil && *in.AllDay {
			v = provider.AsDate(v)
		}
		*dst = &v
	}

	if in.AllDay != nil && (in.Start == nil || in.End == nil) {
		return in, fmt.Errorf("allDay requires both start and end")
	}
	if in.IsEmpty() {
		return in, fmt.Errorf("no fields to update")
	}
	return in, nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	accountID, calendarID, err := eventTarget(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := createInput(args, requestTimeZone(args, sc))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := sc.Aggregator().CreateEvent(ctx, sc.User(ctx), accountID, calendarID, in)
	if err != nil {
		return common.ErrorResult("create event", err), nil
	}

	return common.JSONResult(map[string]any{"event": event})
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	accountID, calendarID, err := eventTarget(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequiredString(args, common.ArgEventID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := updateInput(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := sc.Aggregator().UpdateEvent(ctx, sc.User(ctx), accountID, calendarID, eventID, in)
	if err != nil {
		return common.ErrorResult("update event", err), nil
	}

	return common.JSONResult(map[string]any{"event": event})
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	accountID, calendarID, err := eventTarget(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequiredString(args, common.ArgEventID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := sc.Aggregator().DeleteEvent(ctx, sc.User(ctx), accountID, calendarID, eventID); err != nil {
		return common.ErrorResult("delete event", err), nil
	}

	return common.JSONResult(map[string]any{"success": true})
}
