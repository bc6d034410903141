package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/calmux/internal/database"
	"github.com/teemow/calmux/internal/provider"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

func TestAccountCreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	expiry := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	a := &Account{
		UserID:       "u1",
		ProviderID:   provider.Google,
		Email:        "alice@example.com",
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    expiry,
	}
	if err := s.Create(ctx, a); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if a.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := s.Get(ctx, "u1", a.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got == nil {
		t.Fatal("expected account, got nil")
	}
	if got.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", got.Email, "alice@example.com")
	}
	if got.ProviderID != provider.Google {
		t.Errorf("provider = %q, want %q", got.ProviderID, provider.Google)
	}
	if !got.ExpiresAt.Equal(expiry) {
		t.Errorf("expires_at = %v, want %v", got.ExpiresAt, expiry)
	}
	if got.RefreshToken != "rt" {
		t.Errorf("refresh token = %q, want %q", got.RefreshToken, "rt")
	}
}

func TestAccountGetScopedToUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := &Account{UserID: "u1", ProviderID: provider.Microsoft, AccessToken: "at", RefreshToken: "rt"}
	if err := s.Create(ctx, a); err != nil {
		t.Fatalf("create account: %v", err)
	}

	got, err := s.Get(ctx, "someone-else", a.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for another user's account, got %+v", got)
	}
}

func TestAccountCreateRejectsUnknownProvider(t *testing.T) {
	s := setupTestStore(t)

	err := s.Create(context.Background(), &Account{UserID: "u1", ProviderID: "apple", AccessToken: "at"})
	if !errors.Is(err, provider.ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestAccountList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, email := range []string{"first@example.com", "second@example.com", "third@example.com"} {
		a := &Account{
			UserID:      "u1",
			ProviderID:  provider.Google,
			Email:       email,
			AccessToken: "at",
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if err := s.Create(ctx, a); err != nil {
			t.Fatalf("create account: %v", err)
		}
	}
	if err := s.Create(ctx, &Account{UserID: "u2", ProviderID: provider.Google, AccessToken: "at"}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	list, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].Email != "first@example.com" || list[2].Email != "third@example.com" {
		t.Errorf("unexpected order: %s, %s, %s", list[0].Email, list[1].Email, list[2].Email)
	}
}

func TestAccountUpdateTokens(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := &Account{UserID: "u1", ProviderID: provider.Google, AccessToken: "old", RefreshToken: "keep"}
	if err := s.Create(ctx, a); err != nil {
		t.Fatalf("create account: %v", err)
	}

	expiry := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	if err := s.UpdateTokens(ctx, a.ID, &oauth2.Token{AccessToken: "new", Expiry: expiry}); err != nil {
		t.Fatalf("update tokens: %v", err)
	}

	got, err := s.Get(ctx, "u1", a.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.AccessToken != "new" {
		t.Errorf("access token = %q, want %q", got.AccessToken, "new")
	}
	if got.RefreshToken != "keep" {
		t.Errorf("refresh token = %q, want %q", got.RefreshToken, "keep")
	}
	if !got.ExpiresAt.Equal(expiry) {
		t.Errorf("expires_at = %v, want %v", got.ExpiresAt, expiry)
	}

	err = s.UpdateTokens(ctx, "missing", &oauth2.Token{AccessToken: "x"})
	if !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := &Account{UserID: "u1", ProviderID: provider.Google, AccessToken: "at"}
	if err := s.Create(ctx, a); err != nil {
		t.Fatalf("create account: %v", err)
	}

	if err := s.Delete(ctx, "u2", a.ID); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting another user's account, got %v", err)
	}
	if err := s.Delete(ctx, "u1", a.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	got, err := s.Get(ctx, "u1", a.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got != nil {
		t.Error("expected account to be gone")
	}
}

func TestAccountToken(t *testing.T) {
	a := &Account{AccessToken: "at", RefreshToken: "rt"}
	tok := a.Token()
	if tok.AccessToken != "at" || tok.RefreshToken != "rt" || tok.TokenType != "Bearer" {
		t.Errorf("unexpected token %+v", tok)
	}
}
