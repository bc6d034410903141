package resources

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/server"
)

// Resource URIs.
const (
	AccountsURI  = "user://accounts"
	CalendarsURI = "user://calendars"
)

// RegisterUserResources registers the per-user resources
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	accountsResource := mcp.NewResource(
		AccountsURI,
		"Connected Accounts",
		mcp.WithResourceDescription("Calendar accounts connected by the current user"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(accountsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAccounts(ctx, request, sc)
	})

	calendarsResource := mcp.NewResource(
		CalendarsURI,
		"Calendars",
		mcp.WithResourceDescription("Calendars of every connected account. Accounts that fail are skipped."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(calendarsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCalendars(ctx, request, sc)
	})

	return nil
}

func handleAccounts(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	user, err := sc.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	list, err := sc.Store().List(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if list == nil {
		list = []accounts.Account{}
	}

	return jsonContents(request.Params.URI, map[string]any{
		"user":     user,
		"accounts": list,
	})
}

func handleCalendars(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	user, err := sc.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	cals, err := sc.Aggregator().ListCalendars(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	if cals == nil {
		cals = []provider.Calendar{}
	}

	return jsonContents(request.Params.URI, map[string]any{"calendars": cals})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
