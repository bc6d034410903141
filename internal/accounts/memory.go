package accounts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/calmux/internal/provider"
)

// MemoryStore is a Store kept in process memory. It is used by tests and by
// the stdio server when no database path is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store holding the given accounts.
func NewMemoryStore(seed ...Account) *MemoryStore {
	s := &MemoryStore{accounts: make(map[string]Account, len(seed))}
	for _, a := range seed {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *MemoryStore) Get(_ context.Context, userID, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) Create(_ context.Context, a *Account) error {
	if !a.ProviderID.Valid() {
		return &provider.ConfigError{Provider: a.ProviderID, Err: provider.ErrUnsupportedProvider}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = *a
	return nil
}

func (s *MemoryStore) UpdateTokens(_ context.Context, id string, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return provider.ErrMissingAccessToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return &provider.NotFoundError{Kind: "account", ID: id}
	}
	a.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		a.RefreshToken = token.RefreshToken
	}
	a.ExpiresAt = token.Expiry
	a.UpdatedAt = time.Now().UTC()
	s.accounts[id] = a
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return &provider.NotFoundError{Kind: "account", ID: id}
	}
	delete(s.accounts, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
