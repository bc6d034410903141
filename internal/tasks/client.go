package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/calmux/internal/provider"
)

// Client is the Google Tasks adapter. Task lists are exposed as categories.
type Client struct {
	svc *tasks.Service
}

var _ provider.TaskProvider = (*Client)(nil)

// NewClient creates a Google Tasks adapter for accessToken. Extra options are
// applied after the authenticated HTTP client.
func NewClient(ctx context.Context, accessToken string, opts ...option.ClientOption) (*Client, error) {
	if accessToken == "" {
		return nil, &provider.ConfigError{Provider: provider.Google, Err: provider.ErrMissingAccessToken}
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))

	// Force HTTP/1.1 by disabling HTTP/2
	client.Transport.(*oauth2.Transport).Base = &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
	}

	svc, err := tasks.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// ProviderID returns provider.Google.
func (c *Client) ProviderID() provider.ID {
	return provider.Google
}

// Categories lists all task lists
func (c *Client) Categories(ctx context.Context) ([]provider.Category, error) {
	var categories []provider.Category
	err := c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(page *tasks.TaskLists) error {
		for _, tl := range page.Items {
			categories = append(categories, toCategory(tl))
		}
		return nil
	})
	if err != nil {
		return nil, apiError("tasklists.list", err)
	}
	return categories, nil
}

// Tasks lists the tasks of every task list
func (c *Client) Tasks(ctx context.Context) ([]provider.Task, error) {
	categories, err := c.Categories(ctx)
	if err != nil {
		return nil, err
	}

	var all []provider.Task
	for _, category := range categories {
		list, err := c.TasksForCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
	}
	return all, nil
}

// TasksForCategory lists the tasks of one task list, completed ones included
func (c *Client) TasksForCategory(ctx context.Context, category provider.Category) ([]provider.Task, error) {
	var result []provider.Task
	err := c.svc.Tasks.List(category.ID).
		ShowCompleted(true).
		MaxResults(100).
		Pages(ctx, func(page *tasks.Tasks) error {
			for _, t := range page.Items {
				result = append(result, toTask(t, category.ID))
			}
			return nil
		})
	if err != nil {
		return nil, apiError("tasks.list", err)
	}
	return result, nil
}

// CreateTask inserts a task into the category
func (c *Client) CreateTask(ctx context.Context, category provider.Category, in provider.TaskInput) (*provider.Task, error) {
	created, err := c.svc.Tasks.Insert(category.ID, toGoogleTask(in)).Context(ctx).Do()
	if err != nil {
		return nil, apiError("tasks.create", err)
	}

	result := toTask(created, category.ID)
	return &result, nil
}

// UpdateTask patches the non-empty fields of the input onto task in.ID
func (c *Client) UpdateTask(ctx context.Context, category provider.Category, in provider.TaskInput) (*provider.Task, error) {
	if in.ID == "" {
		return nil, errors.New("task id is required")
	}

	updated, err := c.svc.Tasks.Patch(category.ID, in.ID, toGoogleTask(in)).Context(ctx).Do()
	if err != nil {
		return nil, apiError("tasks.update", err)
	}

	result := toTask(updated, category.ID)
	return &result, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, category provider.Category, taskID string) error {
	if err := c.svc.Tasks.Delete(category.ID, taskID).Context(ctx).Do(); err != nil {
		return apiError("tasks.delete", err)
	}
	return nil
}

func apiError(op string, err error) error {
	apiErr := &provider.APIError{Provider: provider.Google, Op: op, Err: err}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		apiErr.StatusCode = gErr.Code
	}
	return apiErr
}
