package accounts

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/calmux/internal/provider"
)

// Account is a connected third-party account with its stored credentials.
type Account struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	ProviderID   provider.ID `json:"providerId"`
	Email        string      `json:"email,omitempty"`
	AccessToken  string      `json:"-"`
	RefreshToken string      `json:"-"`
	ExpiresAt    time.Time   `json:"expiresAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Token returns the stored credentials as an oauth2 token.
func (a *Account) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		Expiry:       a.ExpiresAt,
		TokenType:    "Bearer",
	}
}

// Store persists connected accounts. Every read is scoped to one user.
type Store interface {
	// List returns the user's accounts ordered by creation time.
	List(ctx context.Context, userID string) ([]Account, error)

	// Get returns nil, nil when the user has no account with that id.
	Get(ctx context.Context, userID, id string) (*Account, error)

	// Create assigns an id and timestamps when they are empty.
	Create(ctx context.Context, account *Account) error

	// UpdateTokens replaces the stored credentials. An empty refresh token
	// keeps the previous one.
	UpdateTokens(ctx context.Context, id string, token *oauth2.Token) error

	Delete(ctx context.Context, userID, id string) error

	Ping(ctx context.Context) error
}
