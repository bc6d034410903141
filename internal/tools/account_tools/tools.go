package account_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/auth"
	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/server"
	"github.com/teemow/calmux/internal/tools/common"
)

const argProvider = "provider"

func providerNames() string {
	ids := provider.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

// RegisterAccountTools registers the account management tools. A nil
// connector registers accounts_list only.
func RegisterAccountTools(s *mcpserver.MCPServer, sc *server.ServerContext, connector *auth.Connector, readOnly bool) error {
	listAccountsTool := mcp.NewTool("accounts_list",
		mcp.WithDescription("List the calendar accounts connected by the current user"),
	)

	s.AddTool(listAccountsTool, common.InstrumentedToolHandler("accounts_list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAccounts(ctx, request, sc)
		}))

	if connector == nil {
		return nil
	}

	authURLTool := mcp.NewTool("accounts_auth_url",
		mcp.WithDescription("Get the OAuth consent URL for connecting a calendar account"),
		mcp.WithString(argProvider,
			mcp.Required(),
			mcp.Description("Provider to connect: "+providerNames()),
		),
		mcp.WithString("state",
			mcp.Description("Opaque state echoed back on the redirect. Generated when omitted."),
		),
	)

	s.AddTool(authURLTool, common.InstrumentedToolHandler("accounts_auth_url", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAuthURL(ctx, request, connector)
		}))

	if readOnly {
		return nil
	}

	connectTool := mcp.NewTool("accounts_connect",
		mcp.WithDescription("Complete the OAuth flow with the authorization code and store the account"),
		mcp.WithString(argProvider,
			mcp.Required(),
			mcp.Description("Provider the code was issued by: "+providerNames()),
		),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from the consent redirect"),
		),
		mcp.WithString("email",
			mcp.Description("Email address of the account, shown in listings"),
		),
	)

	s.AddTool(connectTool, common.InstrumentedToolHandler("accounts_connect", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleConnect(ctx, request, sc, connector)
		}))

	removeTool := mcp.NewTool("accounts_remove",
		mcp.WithDescription("Disconnect a calendar account and delete its stored tokens"),
		mcp.WithString(common.ArgAccountID,
			mcp.Required(),
			mcp.Description("ID of the account to remove"),
		),
	)

	s.AddTool(removeTool, common.InstrumentedToolHandler("accounts_remove", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRemove(ctx, request, sc, connector)
		}))

	return nil
}

func handleListAccounts(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	list, err := sc.Store().List(ctx, sc.User(ctx))
	if err != nil {
		return common.ErrorResult("list accounts", err), nil
	}
	if list == nil {
		list = []accounts.Account{}
	}
	return common.JSONResult(map[string]any{"accounts": list})
}

func parseProvider(args map[string]any) (provider.ID, error) {
	name, err := common.RequiredString(args, argProvider)
	if err != nil {
		return "", err
	}
	id := provider.ID(strings.ToLower(name))
	if !id.Valid() {
		return "", fmt.Errorf("unsupported provider %q (supported: %s)", name, providerNames())
	}
	return id, nil
}

func handleAuthURL(_ context.Context, request mcp.CallToolRequest, connector *auth.Connector) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, err := parseProvider(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	url, state, err := connector.AuthURL(id, common.String(args, "state"))
	if err != nil {
		return common.ErrorResult("build consent URL", err), nil
	}
	return common.JSONResult(map[string]any{
		"provider": id,
		"url":      url,
		"state":    state,
	})
}

func handleConnect(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, connector *auth.Connector) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, err := parseProvider(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code, err := common.RequiredString(args, "authCode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	account, err := connector.Connect(ctx, sc.User(ctx), id, code, common.String(args, "email"))
	if err != nil {
		return common.ErrorResult("connect account", err), nil
	}
	return common.JSONResult(map[string]any{"account": account})
}

func handleRemove(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, connector *auth.Connector) (*mcp.CallToolResult, error) {
	accountID, err := common.RequiredString(request.GetArguments(), common.ArgAccountID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := connector.Disconnect(ctx, sc.User(ctx), accountID); err != nil {
		return common.ErrorResult("remove account", err), nil
	}
	return common.JSONResult(map[string]any{"success": true})
}
