package account_tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/auth"
	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/server"
)

type testEnv struct {
	sc        *server.ServerContext
	store     *accounts.MemoryStore
	connector *auth.Connector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := accounts.NewMemoryStore(
		accounts.Account{ID: "g", UserID: "alice", ProviderID: provider.Google, Email: "alice@example.com", AccessToken: "secret-at", RefreshToken: "secret-rt"},
		accounts.Account{ID: "b", UserID: "bob", ProviderID: provider.Microsoft, AccessToken: "a", RefreshToken: "r"},
	)
	sc, err := server.NewServerContext(context.Background(), server.Options{Store: store, DefaultUser: "alice"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	connector := auth.NewConnector(auth.Config{
		GoogleClientID:    "gid",
		MicrosoftClientID: "mid",
		RedirectURL:       "http://localhost:8085/callback",
	}, store, auth.WithExchange(func(_ context.Context, _ provider.ID, code string) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "new-" + code, RefreshToken: "refresh"}, nil
	}))

	return &testEnv{sc: sc, store: store, connector: connector}
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

func TestRegisterAccountTools(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct {
		name      string
		connector *auth.Connector
		readOnly  bool
		want      []string
	}{
		{name: "no connector", want: []string{"accounts_list"}},
		{name: "read-only", connector: env.connector, readOnly: true, want: []string{"accounts_list", "accounts_auth_url"}},
		{name: "read-write", connector: env.connector, want: []string{"accounts_list", "accounts_auth_url", "accounts_connect", "accounts_remove"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := mcpserver.NewMCPServer("calmux", "test", mcpserver.WithToolCapabilities(true))
			require.NoError(t, RegisterAccountTools(s, env.sc, tc.connector, tc.readOnly))

			tools := s.ListTools()
			assert.Len(t, tools, len(tc.want))
			for _, name := range tc.want {
				assert.Contains(t, tools, name)
			}
		})
	}
}

func TestListAccounts_HidesTokens(t *testing.T) {
	env := newTestEnv(t)

	result, err := handleListAccounts(context.Background(), request(nil), env.sc)
	require.NoError(t, err)

	text := resultText(t, result)
	assert.NotContains(t, text, "secret-at")
	assert.NotContains(t, text, "secret-rt")

	var body struct {
		Accounts []accounts.Account `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &body))
	require.Len(t, body.Accounts, 1)
	assert.Equal(t, "g", body.Accounts[0].ID)
	assert.Equal(t, "alice@example.com", body.Accounts[0].Email)
}

func TestListAccounts_UserFromContext(t *testing.T) {
	env := newTestEnv(t)

	result, err := handleListAccounts(server.WithUser(context.Background(), "bob"), request(nil), env.sc)
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `"id": "b"`)

	result, err = handleListAccounts(server.WithUser(context.Background(), "carol"), request(nil), env.sc)
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `"accounts": []`)
}

func TestAuthURL(t *testing.T) {
	env := newTestEnv(t)

	result, err := handleAuthURL(context.Background(), request(map[string]any{"provider": "Microsoft", "state": "s1"}), env.connector)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var body struct {
		Provider string `json:"provider"`
		URL      string `json:"url"`
		State    string `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	assert.Equal(t, "microsoft", body.Provider)
	assert.Equal(t, "s1", body.State)
	assert.Contains(t, body.URL, "login.microsoftonline.com")

	result, err = handleAuthURL(context.Background(), request(map[string]any{"provider": "apple"}), env.connector)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestConnectAndRemove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := handleConnect(ctx, request(map[string]any{
		"provider": "microsoft",
		"authCode": "xyz",
		"email":    "alice@contoso.com",
	}), env.sc, env.connector)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.NotContains(t, resultText(t, result), "new-xyz")

	var body struct {
		Account accounts.Account `json:"account"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	require.NotEmpty(t, body.Account.ID)

	stored, err := env.store.Get(ctx, "alice", body.Account.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "new-xyz", stored.AccessToken)
	assert.Equal(t, provider.Microsoft, stored.ProviderID)

	result, err = handleRemove(ctx, request(map[string]any{"accountId": body.Account.ID}), env.sc, env.connector)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	stored, err = env.store.Get(ctx, "alice", body.Account.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRemove_OtherUsersAccount(t *testing.T) {
	env := newTestEnv(t)

	result, err := handleRemove(context.Background(), request(map[string]any{"accountId": "b"}), env.sc, env.connector)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "b")
}

func TestConnect_Validation(t *testing.T) {
	env := newTestEnv(t)

	for name, args := range map[string]map[string]any{
		"missing provider": {"authCode": "x"},
		"bad provider":     {"provider": "apple", "authCode": "x"},
		"missing code":     {"provider": "google"},
	} {
		t.Run(name, func(t *testing.T) {
			result, err := handleConnect(context.Background(), request(args), env.sc, env.connector)
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}
