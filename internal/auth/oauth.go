package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/teemow/calmux/internal/provider"
)

// Config holds the OAuth client registrations for every provider.
type Config struct {
	GoogleClientID        string
	GoogleClientSecret    string
	MicrosoftClientID     string
	MicrosoftClientSecret string
	// MicrosoftTenant defaults to "common"
	MicrosoftTenant string
	RedirectURL     string
}

// OAuthConfig returns the oauth2 configuration for a provider.
func (c Config) OAuthConfig(id provider.ID) (*oauth2.Config, error) {
	switch id {
	case provider.Google:
		if c.GoogleClientID == "" {
			return nil, &provider.ConfigError{Provider: id, Err: fmt.Errorf("google client id is not configured")}
		}
		return &oauth2.Config{
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  c.RedirectURL,
			Scopes:       GoogleScopes,
		}, nil
	case provider.Microsoft:
		if c.MicrosoftClientID == "" {
			return nil, &provider.ConfigError{Provider: id, Err: fmt.Errorf("microsoft client id is not configured")}
		}
		tenant := c.MicrosoftTenant
		if tenant == "" {
			tenant = "common"
		}
		return &oauth2.Config{
			ClientID:     c.MicrosoftClientID,
			ClientSecret: c.MicrosoftClientSecret,
			Endpoint:     microsoft.AzureADEndpoint(tenant),
			RedirectURL:  c.RedirectURL,
			Scopes:       MicrosoftScopes,
		}, nil
	default:
		return nil, &provider.ConfigError{Provider: id, Err: provider.ErrUnsupportedProvider}
	}
}

// AuthURL returns the consent URL for a provider. Offline access and a forced
// consent prompt make sure a refresh token is issued.
func (c Config) AuthURL(id provider.ID, state string) (string, error) {
	conf, err := c.OAuthConfig(id)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// Exchange trades an authorization code for tokens.
func (c Config) Exchange(ctx context.Context, id provider.ID, code string) (*oauth2.Token, error) {
	conf, err := c.OAuthConfig(id)
	if err != nil {
		return nil, err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, &provider.ConfigError{Provider: id, Err: fmt.Errorf("%w: no refresh token issued", provider.ErrInvalidAccount)}
	}
	return token, nil
}

// NewHTTPClient returns an HTTP/1.1 client, used for token endpoints.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		},
	}
}
