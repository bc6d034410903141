package tasks_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/server"
	"github.com/teemow/calmux/internal/tools/batch"
	"github.com/teemow/calmux/internal/tools/common"
)

const (
	argCategoryID = "categoryId"
	argTaskID     = "taskId"

	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

// RegisterTasksTools registers all task tools with the MCP server
func RegisterTasksTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listCategoriesTool := mcp.NewTool("tasks_list_categories",
		mcp.WithDescription("List the task lists of every connected account that supports tasks"),
	)

	s.AddTool(listCategoriesTool, common.InstrumentedToolHandler("tasks_list_categories", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCategories(ctx, request, sc)
		}))

	listTasksTool := mcp.NewTool("tasks_list",
		mcp.WithDescription("List tasks. With accountId and categoryId only that task list is read; otherwise all task lists of all accounts."),
		mcp.WithString(common.ArgAccountID,
			mcp.Description("ID of the connected account. Requires categoryId."),
		),
		mcp.WithString(argCategoryID,
			mcp.Description("ID of the task list. Requires accountId."),
		),
	)

	s.AddTool(listTasksTool, common.InstrumentedToolHandler("tasks_list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListTasks(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createTaskTool := mcp.NewTool("tasks_create",
		mcp.WithDescription("Create a task in one task list"),
		mcp.WithString(common.ArgAccountID,
			mcp.Required(),
			mcp.Description("ID of the connected account"),
		),
		mcp.WithString(argCategoryID,
			mcp.Required(),
			mcp.Description("ID of the task list (see tasks_list_categories)"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title"),
		),
		mcp.WithString("notes",
			mcp.Description("Task notes"),
		),
		mcp.WithString("due",
			mcp.Description("Due date, e.g. '2025-01-15'. Only the date part is kept by Google Tasks."),
		),
	)

	s.AddTool(createTaskTool, common.InstrumentedToolHandler("tasks_create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateTask(ctx, request, sc)
		}))

	updateTaskTool := mcp.NewTool("tasks_update",
		mcp.WithDescription("Update a task. Only the given fields change."),
		mcp.WithString(common.ArgAccountID,
			mcp.Required(),
			mcp.Description("ID of the connected account"),
		),
		mcp.WithString(argCategoryID,
			mcp.Required(),
			mcp.Description("ID of the task list"),
		),
		mcp.WithString(argTaskID,
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("notes",
			mcp.Description("New notes"),
		),
		mcp.WithString("due",
			mcp.Description("New due date"),
		),
		mcp.WithBoolean("completed",
			mcp.Description("Mark the task completed (true) or open (false)"),
		),
	)

	s.AddTool(updateTaskTool, common.InstrumentedToolHandler("tasks_update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateTask(ctx, request, sc)
		}))

	deleteTaskTool := mcp.NewTool("tasks_delete",
		mcp.WithDescription(fmt.Sprintf("Delete one or more tasks from a task list (up to %d deleted concurrently)", batch.MaxConcurrency)),
		mcp.WithString(common.ArgAccountID,
			mcp.Required(),
			mcp.Description("ID of the connected account"),
		),
		mcp.WithString(argCategoryID,
			mcp.Required(),
			mcp.Description("ID of the task list"),
		),
		mcp.WithString(argTaskID,
			mcp.Required(),
			mcp.Description("Task ID, or an array of task IDs"),
		),
	)

	s.AddTool(deleteTaskTool, common.InstrumentedToolHandler("tasks_delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteTasks(ctx, request, sc)
		}))

	return nil
}

func handleListCategories(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	categories, err := sc.Aggregator().ListCategories(ctx, sc.User(ctx))
	if err != nil {
		return common.ErrorResult("list task lists", err), nil
	}
	if categories == nil {
		categories = []provider.Category{}
	}
	return common.JSONResult(map[string]any{"categories": categories})
}

func handleListTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	accountID := common.String(args, common.ArgAccountID)
	categoryID := common.String(args, argCategoryID)
	if (accountID == "") != (categoryID == "") {
		return mcp.NewToolResultError("accountId and categoryId must be given together"), nil
	}

	var (
		tasks []provider.Task
		err   error
	)
	if accountID != "" {
		tasks, err = sc.Aggregator().ListCategoryTasks(ctx, sc.User(ctx), accountID, categoryID)
	} else {
		tasks, err = sc.Aggregator().ListTasks(ctx, sc.User(ctx))
	}
	if err != nil {
		return common.ErrorResult("list tasks", err), nil
	}
	if tasks == nil {
		tasks = []provider.Task{}
	}
	return common.JSONResult(map[string]any{"tasks": tasks})
}

// taskTarget reads the account and task list of a write tool.
func taskTarget(args map[string]any) (accountID, categoryID string, err error) {
	if accountID, err = common.RequiredString(args, common.ArgAccountID); err != nil {
		return "", "", err
	}
	if categoryID, err = common.RequiredString(args, argCategoryID); err != nil {
		return "", "", err
	}
	return accountID, categoryID, nil
}

// dueDate converts the due argument to the RFC 3339 midnight-UTC timestamp
// Google Tasks stores. Instants keep their own calendar date.
func dueDate(args map[string]any) (string, error) {
	v, ok, err := common.Value(args, "due")
	if err != nil || !ok {
		return "", err
	}
	return v.Date().In(time.UTC).Format(time.RFC3339), nil
}

func handleCreateTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	accountID, categoryID, err := taskTarget(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := common.RequiredString(args, "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	due, err := dueDate(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := sc.Aggregator().CreateTask(ctx, sc.User(ctx), accountID, categoryID, provider.TaskInput{
		Title:  title,
		Notes:  common.String(args, "notes"),
		Due:    due,
		Status: statusNeedsAction,
	})
	if err != nil {
		return common.ErrorResult("create task", err), nil
	}
	return common.JSONResult(map[string]any{"task": task})
}

func handleUpdateTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	accountID, categoryID, err := taskTarget(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskID, err := common.RequiredString(args, argTaskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	due, err := dueDate(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := provider.TaskInput{
		ID:    taskID,
		Title: common.String(args, "title"),
		Notes: common.String(args, "notes"),
		Due:   due,
	}
	if completed := common.OptionalBool(args, "completed"); completed != nil {
		in.Status = statusNeedsAction
		if *completed {
			in.Status = statusCompleted
		}
	}
	if in.Title == "" && in.Notes == "" && in.Due == "" && in.Status == "" {
		return mcp.NewToolResultError("no fields to update"), nil
	}

	task, err := sc.Aggregator().UpdateTask(ctx, sc.User(ctx), accountID, categoryID, in)
	if err != nil {
		return common.ErrorResult("update task", err), nil
	}
	return common.JSONResult(map[string]any{"task": task})
}

func handleDeleteTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	accountID, categoryID, err := taskTarget(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskIDs, err := batch.ParseStringOrArray(args[argTaskID], argTaskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	user := sc.User(ctx)
	summary := batch.Process(ctx, taskIDs, func(ctx context.Context, taskID string) error {
		return sc.Aggregator().DeleteTask(ctx, user, accountID, categoryID, taskID)
	})

	result, err := common.JSONResult(summary)
	if err != nil {
		return nil, err
	}
	if summary.Successful == 0 {
		result.IsError = true
	}
	return result, nil
}
