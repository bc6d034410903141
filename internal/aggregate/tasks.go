package aggregate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/provider"
)

// ListCategories returns the task lists of every account whose provider has
// the task capability. Accounts without it are left out silently.
func (a *Aggregator) ListCategories(ctx context.Context, userID string) ([]provider.Category, error) {
	return fanOutTasks(ctx, a, userID, func(ctx context.Context, p provider.TaskProvider, account accounts.Account) ([]provider.Category, error) {
		cats, err := p.Categories(ctx)
		for i := range cats {
			cats[i].AccountID = account.ID
		}
		return cats, err
	})
}

// ListTasks returns every task of every task-capable account.
func (a *Aggregator) ListTasks(ctx context.Context, userID string) ([]provider.Task, error) {
	return fanOutTasks(ctx, a, userID, func(ctx context.Context, p provider.TaskProvider, account accounts.Account) ([]provider.Task, error) {
		tasks, err := p.Tasks(ctx)
		for i := range tasks {
			tasks[i].AccountID = account.ID
		}
		return tasks, err
	})
}

func fanOutTasks[T any](ctx context.Context, a *Aggregator, userID string, fetch func(context.Context, provider.TaskProvider, accounts.Account) ([]T, error)) ([]T, error) {
	accts, err := a.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	slots := make([][]T, len(accts))
	var g errgroup.Group
	for i, account := range accts {
		if !a.registry.SupportsTasks(account.ProviderID) {
			continue
		}
		g.Go(func() error {
			p, err := a.bindTasks(ctx, account)
			if err != nil {
				a.skip(ctx, account, "", instrumentation.StageResolve, err)
				return nil
			}
			items, err := fetch(ctx, p, account)
			if err != nil {
				a.skip(ctx, account, "", instrumentation.StageFetch, err)
				return nil
			}
			slots[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var result []T
	for _, s := range slots {
		result = append(result, s...)
	}
	return result, nil
}

// ListCategoryTasks returns the tasks of one task list.
func (a *Aggregator) ListCategoryTasks(ctx context.Context, userID, accountID, categoryID string) ([]provider.Task, error) {
	p, account, err := a.tasksFor(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	tasks, err := p.TasksForCategory(ctx, provider.Category{ID: categoryID, Provider: account.ProviderID})
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].AccountID = account.ID
	}
	return tasks, nil
}

// CreateTask adds a task to a task list.
func (a *Aggregator) CreateTask(ctx context.Context, userID, accountID, categoryID string, in provider.TaskInput) (*provider.Task, error) {
	p, account, err := a.tasksFor(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	task, err := p.CreateTask(ctx, provider.Category{ID: categoryID, Provider: account.ProviderID}, in)
	if err != nil {
		return nil, err
	}
	task.AccountID = account.ID
	return task, nil
}

// UpdateTask patches the task named by in.ID.
func (a *Aggregator) UpdateTask(ctx context.Context, userID, accountID, categoryID string, in provider.TaskInput) (*provider.Task, error) {
	p, account, err := a.tasksFor(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	task, err := p.UpdateTask(ctx, provider.Category{ID: categoryID, Provider: account.ProviderID}, in)
	if err != nil {
		return nil, err
	}
	task.AccountID = account.ID
	return task, nil
}

// DeleteTask removes a task from a task list.
func (a *Aggregator) DeleteTask(ctx context.Context, userID, accountID, categoryID, taskID string) error {
	p, account, err := a.tasksFor(ctx, userID, accountID)
	if err != nil {
		return err
	}
	return p.DeleteTask(ctx, provider.Category{ID: categoryID, Provider: account.ProviderID}, taskID)
}
