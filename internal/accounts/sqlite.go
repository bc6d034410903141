package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/calmux/internal/provider"
)

// SQLiteStore is the Store backed by the accounts table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore returns a store over an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

const accountCols = `id, user_id, provider_id, email, access_token, refresh_token, expires_at, created_at, updated_at`

func scanAccount(scanner interface{ Scan(...any) error }) (*Account, error) {
	var (
		a                              Account
		providerID                     string
		expiresAt, createdAt, updatedAt string
	)
	err := scanner.Scan(&a.ID, &a.UserID, &providerID, &a.Email, &a.AccessToken, &a.RefreshToken,
		&expiresAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	a.ProviderID = provider.ID(providerID)

	if a.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("expires_at: %w", err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	return &a, nil
}

func (s *SQLiteStore) List(ctx context.Context, userID string) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var result []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return result, nil
}

func (s *SQLiteStore) Get(ctx context.Context, userID, id string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE user_id = ? AND id = ?`, userID, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) Create(ctx context.Context, a *Account) error {
	if !a.ProviderID.Valid() {
		return &provider.ConfigError{Provider: a.ProviderID, Err: provider.ErrUnsupportedProvider}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, string(a.ProviderID), a.Email, a.AccessToken, a.RefreshToken,
		formatTime(a.ExpiresAt), formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateTokens(ctx context.Context, id string, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return provider.ErrMissingAccessToken
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts
		 SET access_token = ?,
		     refresh_token = CASE WHEN ? = '' THEN refresh_token ELSE ? END,
		     expires_at = ?,
		     updated_at = ?
		 WHERE id = ?`,
		token.AccessToken, token.RefreshToken, token.RefreshToken,
		formatTime(token.Expiry), formatTime(s.now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &provider.NotFoundError{Kind: "account", ID: id}
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &provider.NotFoundError{Kind: "account", ID: id}
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
