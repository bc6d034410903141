package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/server"
	"github.com/teemow/calmux/internal/tools/common"
)

// RegisterCalendarListTools registers calendar list tools with the MCP server
func RegisterCalendarListTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listCalendarsTool := mcp.NewTool("calendars_list",
		mcp.WithDescription("List the calendars of every connected account"),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandler("calendars_list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createCalendarTool := mcp.NewTool("calendars_create",
		mcp.WithDescription("Create a secondary calendar in one connected account"),
		mcp.WithString(common.ArgAccountID,
			mcp.Required(),
			mcp.Description("ID of the connected account"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Calendar name"),
		),
		mcp.WithString("description",
			mcp.Description("Calendar description (Google only)"),
		),
		mcp.WithString(common.ArgTimeZone,
			mcp.Description("IANA time zone of the calendar (Google only)"),
		),
	)

	s.AddTool(createCalendarTool, common.InstrumentedToolHandler("calendars_create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateCalendar(ctx, request, sc)
		}))

	updateCalendarTool := mcp.NewTool("calendars_update",
		mcp.WithDescription("Rename or describe a calendar"),
		mcp.WithString(common.ArgAccountID,
			mcp.Required(),
			mcp.Description("ID of the connected account"),
		),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithString("name",
			mcp.Description("New name"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString(common.ArgTimeZone,
			mcp.Description("New time zone"),
		),
	)

	s.AddTool(updateCalendarTool, common.InstrumentedToolHandler("calendars_update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateCalendar(ctx, request, sc)
		}))

	deleteCalendarTool := mcp.NewTool("calendars_delete",
		mcp.WithDescription("Delete a secondary calendar. The primary calendar cannot be deleted."),
		mcp.WithString(common.ArgAccountID,
			mcp.Required(),
			mcp.Description("ID of the connected account"),
		),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
	)

	s.AddTool(deleteCalendarTool, common.InstrumentedToolHandler("calendars_delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteCalendar(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	calendars, err := sc.Aggregator().ListCalendars(ctx, sc.User(ctx))
	if err != nil {
		return common.ErrorResult("list calendars", err), nil
	}
	if calendars == nil {
		calendars = []provider.Calendar{}
	}
	return common.JSONResult(map[string]any{"calendars": calendars})
}

func handleCreateCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	accountID, err := common.RequiredString(args, common.ArgAccountID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	calendar, err := sc.Aggregator().CreateCalendar(ctx, sc.User(ctx), accountID, provider.CreateCalendarInput{
		Name:        name,
		Description: common.String(args, "description"),
		TimeZone:    common.String(args, common.ArgTimeZone),
	})
	if err != nil {
		return common.ErrorResult("create calendar", err), nil
	}

	return common.JSONResult(map[string]any{"calendar": calendar})
}

func handleUpdateCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	accountID, calendarID, err := eventTarget(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := provider.UpdateCalendarInput{
		Name:        common.OptionalString(args, "name"),
		Description: common.OptionalString(args, "description"),
		TimeZone:    common.OptionalString(args, common.ArgTimeZone),
	}
	if in.Name == nil && in.Description == nil && in.TimeZone == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no fields to update for calendar %s", calendarID)), nil
	}

	calendar, err := sc.Aggregator().UpdateCalendar(ctx, sc.User(ctx), accountID, calendarID, in)
	if err != nil {
		return common.ErrorResult("update calendar", err), nil
	}

	return common.JSONResult(map[string]any{"calendar": calendar})
}

func handleDeleteCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	accountID, calendarID, err := eventTarget(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := sc.Aggregator().DeleteCalendar(ctx, sc.User(ctx), accountID, calendarID); err != nil {
		return common.ErrorResult("delete calendar", err), nil
	}

	return common.JSONResult(map[string]any{"success": true})
}
