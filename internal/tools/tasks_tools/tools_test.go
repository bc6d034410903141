package tasks_tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/provider/providertest"
	"github.com/teemow/calmux/internal/registry"
	"github.com/teemow/calmux/internal/server"
	"github.com/teemow/calmux/internal/tools/batch"
)

func newTestEnv(t *testing.T) (*server.ServerContext, *providertest.Tasks) {
	t.Helper()

	fake := providertest.NewTasks(provider.Google,
		provider.Category{ID: "inbox", Provider: provider.Google, Title: "My Tasks"},
		provider.Category{ID: "errands", Provider: provider.Google, Title: "Errands"},
	).
		AddTasks("inbox", provider.Task{ID: "t1", Title: "Write report", Status: statusNeedsAction}).
		AddTasks("errands", provider.Task{ID: "t2", Title: "Buy milk"}, provider.Task{ID: "t3", Title: "Post office"})

	store := accounts.NewMemoryStore(
		accounts.Account{ID: "g", UserID: "alice", ProviderID: provider.Google, AccessToken: "a", RefreshToken: "r"},
		accounts.Account{ID: "m", UserID: "alice", ProviderID: provider.Microsoft, AccessToken: "a", RefreshToken: "r"},
	)
	reg := registry.NewWith(nil, map[provider.ID]registry.TaskConstructor{
		provider.Google: func(context.Context, string) (provider.TaskProvider, error) { return fake, nil },
	})

	sc, err := server.NewServerContext(context.Background(), server.Options{
		Store:       store,
		Registry:    reg,
		DefaultUser: "alice",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc, fake
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, r)
	require.NotEmpty(t, r.Content)
	text, ok := r.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestRegisterTasksTools(t *testing.T) {
	sc, _ := newTestEnv(t)

	ro := mcpserver.NewMCPServer("calmux", "test", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterTasksTools(ro, sc, true))
	assert.Len(t, ro.ListTools(), 2)
	assert.NotContains(t, ro.ListTools(), "tasks_delete")

	rw := mcpserver.NewMCPServer("calmux", "test", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterTasksTools(rw, sc, false))
	for _, name := range []string{"tasks_list_categories", "tasks_list", "tasks_create", "tasks_update", "tasks_delete"} {
		assert.Contains(t, rw.ListTools(), name)
	}
}

func TestListCategories_SkipsAccountsWithoutTasks(t *testing.T) {
	sc, _ := newTestEnv(t)

	result, err := handleListCategories(context.Background(), request(nil), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var body struct {
		Categories []provider.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	require.Len(t, body.Categories, 2)
	for _, c := range body.Categories {
		assert.Equal(t, "g", c.AccountID)
	}
}

func TestListTasks(t *testing.T) {
	sc, _ := newTestEnv(t)

	t.Run("all task lists", func(t *testing.T) {
		result, err := handleListTasks(context.Background(), request(map[string]any{}), sc)
		require.NoError(t, err)

		var body struct {
			Tasks []provider.Task `json:"tasks"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
		assert.Len(t, body.Tasks, 3)
	})

	t.Run("one task list", func(t *testing.T) {
		result, err := handleListTasks(context.Background(), request(map[string]any{
			"accountId":  "g",
			"categoryId": "errands",
		}), sc)
		require.NoError(t, err)

		var body struct {
			Tasks []provider.Task `json:"tasks"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
		require.Len(t, body.Tasks, 2)
		assert.Equal(t, "errands", body.Tasks[0].CategoryID)
		assert.Equal(t, "g", body.Tasks[0].AccountID)
	})

	t.Run("category without account", func(t *testing.T) {
		result, err := handleListTasks(context.Background(), request(map[string]any{"categoryId": "errands"}), sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("empty result is an array", func(t *testing.T) {
		result, err := handleListTasks(context.Background(), request(map[string]any{
			"accountId":  "g",
			"categoryId": "empty",
		}), sc)
		require.NoError(t, err)
		assert.Contains(t, resultText(t, result), `"tasks": []`)
	})
}

func TestCreateTask(t *testing.T) {
	sc, fake := newTestEnv(t)

	result, err := handleCreateTask(context.Background(), request(map[string]any{
		"accountId":  "g",
		"categoryId": "inbox",
		"title":      "Call dentist",
		"due":        "2025-03-14",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var body struct {
		Task provider.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	assert.Equal(t, "Call dentist", body.Task.Title)
	assert.Equal(t, "2025-03-14T00:00:00Z", body.Task.Due)
	assert.Equal(t, statusNeedsAction, body.Task.Status)
	assert.Equal(t, "g", body.Task.AccountID)

	tasks, err := fake.TasksForCategory(context.Background(), provider.Category{ID: "inbox"})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestCreateTask_Validation(t *testing.T) {
	sc, _ := newTestEnv(t)

	for name, args := range map[string]map[string]any{
		"missing account":  {"categoryId": "inbox", "title": "x"},
		"missing category": {"accountId": "g", "title": "x"},
		"missing title":    {"accountId": "g", "categoryId": "inbox"},
		"bad due":          {"accountId": "g", "categoryId": "inbox", "title": "x", "due": "soon"},
		"unknown account":  {"accountId": "nope", "categoryId": "inbox", "title": "x"},
	} {
		t.Run(name, func(t *testing.T) {
			result, err := handleCreateTask(context.Background(), request(args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestUpdateTask_Completed(t *testing.T) {
	sc, _ := newTestEnv(t)

	result, err := handleUpdateTask(context.Background(), request(map[string]any{
		"accountId":  "g",
		"categoryId": "inbox",
		"taskId":     "t1",
		"completed":  true,
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var body struct {
		Task provider.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	assert.Equal(t, statusCompleted, body.Task.Status)
	assert.Equal(t, "Write report", body.Task.Title)
}

func TestUpdateTask_NoFields(t *testing.T) {
	sc, _ := newTestEnv(t)

	result, err := handleUpdateTask(context.Background(), request(map[string]any{
		"accountId":  "g",
		"categoryId": "inbox",
		"taskId":     "t1",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "no fields to update", resultText(t, result))
}

func TestDeleteTasks_Batch(t *testing.T) {
	sc, fake := newTestEnv(t)

	result, err := handleDeleteTasks(context.Background(), request(map[string]any{
		"accountId":  "g",
		"categoryId": "errands",
		"taskId":     []any{"t2", "missing", "t3"},
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var summary batch.Summary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &summary))
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "missing", summary.Results[1].ID)
	assert.Equal(t, batch.StatusError, summary.Results[1].Status)

	remaining, err := fake.TasksForCategory(context.Background(), provider.Category{ID: "errands"})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDeleteTasks_AllFailed(t *testing.T) {
	sc, _ := newTestEnv(t)

	result, err := handleDeleteTasks(context.Background(), request(map[string]any{
		"accountId":  "g",
		"categoryId": "errands",
		"taskId":     "missing",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
