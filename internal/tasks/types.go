package tasks

import (
	"time"

	tasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/calmux/internal/provider"
)

// toCategory converts a Google task list
func toCategory(tl *tasks.TaskList) provider.Category {
	if tl == nil {
		return provider.Category{Provider: provider.Google}
	}
	return provider.Category{
		ID:       tl.Id,
		Provider: provider.Google,
		Title:    tl.Title,
		Updated:  tl.Updated,
	}
}

// toTask converts a Google task
func toTask(t *tasks.Task, categoryID string) provider.Task {
	if t == nil {
		return provider.Task{CategoryID: categoryID}
	}

	result := provider.Task{
		ID:         t.Id,
		Title:      t.Title,
		CategoryID: categoryID,
		Status:     t.Status,
		Notes:      t.Notes,
		Due:        dueDate(t.Due),
	}
	if t.Completed != nil {
		result.Completed = *t.Completed
	}
	return result
}

// dueDate reduces Google's midnight-UTC due timestamp to its date. Values
// that do not parse are passed through.
func dueDate(due string) string {
	ts, err := time.Parse(time.RFC3339, due)
	if err != nil {
		return due
	}
	return ts.UTC().Format(time.DateOnly)
}

func toGoogleTask(in provider.TaskInput) *tasks.Task {
	return &tasks.Task{
		Id:     in.ID,
		Title:  in.Title,
		Notes:  in.Notes,
		Status: in.Status,
		Due:    in.Due,
	}
}
