package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/provider"
)

// DefaultRefreshLeeway is how long before expiry a token is refreshed.
const DefaultRefreshLeeway = 2 * time.Minute

// Refresher renews expiring access tokens and writes them back to the store.
// Adapters never refresh; this runs before an adapter is bound.
type Refresher struct {
	oauthConfig func(provider.ID) (*oauth2.Config, error)
	store       accounts.Store
	leeway      time.Duration
	now         func() time.Time
	client      *http.Client
	metrics     *instrumentation.Metrics
}

// NewRefresher creates a Refresher.
func NewRefresher(config Config, store accounts.Store) *Refresher {
	return &Refresher{
		oauthConfig: config.OAuthConfig,
		store:       store,
		leeway:      DefaultRefreshLeeway,
		now:         time.Now,
		client:      NewHTTPClient(),
	}
}

// SetMetrics records every refresh attempt in m.
func (r *Refresher) SetMetrics(m *instrumentation.Metrics) {
	r.metrics = m
}

// Refresh returns the account with a valid access token. Accounts without
// a known expiry, or not yet close to it, are returned unchanged.
func (r *Refresher) Refresh(ctx context.Context, account accounts.Account) (accounts.Account, error) {
	if account.ExpiresAt.IsZero() || account.ExpiresAt.After(r.now().Add(r.leeway)) {
		return account, nil
	}
	if account.RefreshToken == "" {
		return account, nil
	}

	conf, err := r.oauthConfig(account.ProviderID)
	if err != nil {
		return account, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)
	stale := account.Token()
	stale.Expiry = time.Unix(1, 0) // force the source to refresh
	token, err := conf.TokenSource(ctx, stale).Token()
	if err != nil {
		r.metrics.RecordTokenRefresh(ctx, string(account.ProviderID), instrumentation.RefreshResultFailure)
		return account, fmt.Errorf("failed to refresh token: %w", err)
	}
	r.metrics.RecordTokenRefresh(ctx, string(account.ProviderID), instrumentation.RefreshResultSuccess)

	if err := r.store.UpdateTokens(ctx, account.ID, token); err != nil {
		return account, fmt.Errorf("failed to store refreshed token: %w", err)
	}

	account.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		account.RefreshToken = token.RefreshToken
	}
	account.ExpiresAt = token.Expiry
	return account, nil
}
