package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/provider"
)

// Connector completes the OAuth consent flow and manages the resulting
// accounts.
type Connector struct {
	config   Config
	store    accounts.Store
	exchange ExchangeFunc
	metrics  *instrumentation.Metrics
}

// ExchangeFunc trades an authorization code for tokens.
type ExchangeFunc func(ctx context.Context, id provider.ID, code string) (*oauth2.Token, error)

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithExchange replaces the token endpoint call.
func WithExchange(fn ExchangeFunc) ConnectorOption {
	return func(c *Connector) {
		c.exchange = fn
	}
}

// NewConnector creates a Connector storing accounts in store.
func NewConnector(config Config, store accounts.Store, opts ...ConnectorOption) *Connector {
	c := &Connector{
		config:   config,
		store:    store,
		exchange: config.Exchange,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetMetrics tracks connected accounts in m.
func (c *Connector) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

// AuthURL returns the consent URL for id. An empty state gets a random one.
func (c *Connector) AuthURL(id provider.ID, state string) (url, usedState string, err error) {
	if !id.Valid() {
		return "", "", &provider.ConfigError{Provider: id, Err: provider.ErrUnsupportedProvider}
	}
	if state == "" {
		state = uuid.NewString()
	}
	url, err = c.config.AuthURL(id, state)
	if err != nil {
		return "", "", err
	}
	return url, state, nil
}

// Connect exchanges code for tokens and stores a new account for userID.
func (c *Connector) Connect(ctx context.Context, userID string, id provider.ID, code, email string) (*accounts.Account, error) {
	if !id.Valid() {
		return nil, &provider.ConfigError{Provider: id, Err: provider.ErrUnsupportedProvider}
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("authorization code is required")
	}

	token, err := c.exchange(ctx, id, code)
	if err != nil {
		return nil, err
	}

	account := &accounts.Account{
		UserID:       userID,
		ProviderID:   id,
		Email:        strings.TrimSpace(email),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if err := c.store.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to store account: %w", err)
	}
	c.metrics.IncrementAccountsConnected(ctx, string(id))
	return account, nil
}

// Disconnect removes one of userID's accounts.
func (c *Connector) Disconnect(ctx context.Context, userID, accountID string) error {
	account, err := c.store.Get(ctx, userID, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return &provider.NotFoundError{Kind: "account", ID: accountID}
	}
	if err := c.store.Delete(ctx, userID, accountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	c.metrics.DecrementAccountsConnected(ctx, string(account.ProviderID))
	return nil
}
