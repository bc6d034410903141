package auth

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/provider"
)

func TestConnector_AuthURL(t *testing.T) {
	c := NewConnector(testConfig(), accounts.NewMemoryStore())

	raw, state, err := c.AuthURL(provider.Microsoft, "")
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, state, u.Query().Get("state"))

	_, state, err = c.AuthURL(provider.Google, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", state)

	_, _, err = c.AuthURL("apple", "")
	assert.ErrorIs(t, err, provider.ErrUnsupportedProvider)
}

func TestConnector_Connect(t *testing.T) {
	store := accounts.NewMemoryStore()
	c := NewConnector(testConfig(), store)
	expiry := time.Now().Add(time.Hour).UTC()

	var gotCode string
	c.exchange = func(_ context.Context, id provider.ID, code string) (*oauth2.Token, error) {
		gotCode = code
		return &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: expiry}, nil
	}

	account, err := c.Connect(context.Background(), "alice", provider.Google, " code-1 ", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "code-1", gotCode)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "alice", account.UserID)

	stored, err := store.Get(context.Background(), "alice", account.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "at", stored.AccessToken)
	assert.Equal(t, "rt", stored.RefreshToken)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.True(t, expiry.Equal(stored.ExpiresAt))
}

func TestConnector_ConnectErrors(t *testing.T) {
	store := accounts.NewMemoryStore()
	c := NewConnector(testConfig(), store)
	c.exchange = func(context.Context, provider.ID, string) (*oauth2.Token, error) {
		return nil, errors.New("invalid_grant")
	}

	_, err := c.Connect(context.Background(), "alice", provider.Google, "", "")
	assert.Error(t, err)

	_, err = c.Connect(context.Background(), "alice", "apple", "code", "")
	assert.ErrorIs(t, err, provider.ErrUnsupportedProvider)

	_, err = c.Connect(context.Background(), "alice", provider.Google, "code", "")
	assert.ErrorContains(t, err, "invalid_grant")

	list, err := store.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConnector_Disconnect(t *testing.T) {
	store := accounts.NewMemoryStore(accounts.Account{ID: "a1", UserID: "alice", ProviderID: provider.Microsoft})
	c := NewConnector(testConfig(), store)

	var nf *provider.NotFoundError
	err := c.Disconnect(context.Background(), "bob", "a1")
	assert.ErrorAs(t, err, &nf)

	require.NoError(t, c.Disconnect(context.Background(), "alice", "a1"))

	account, err := store.Get(context.Background(), "alice", "a1")
	require.NoError(t, err)
	assert.Nil(t, account)
}
