package provider

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidAccount is returned when an account lacks an access or refresh token.
	ErrInvalidAccount = errors.New("invalid account")

	// ErrUnsupportedProvider is returned when no adapter exists for a provider id.
	ErrUnsupportedProvider = errors.New("provider not supported")

	// ErrMissingAccessToken is returned by adapter constructors given no token.
	ErrMissingAccessToken = errors.New("access token is required")

	// ErrPrimaryCalendar is returned when deleting the primary calendar.
	ErrPrimaryCalendar = errors.New("cannot delete primary calendar")

	// ErrNotFound matches every not-found condition, local or vendor side.
	ErrNotFound = errors.New("not found")
)

// ConfigError reports an unusable connection. It is raised before any network call.
type ConfigError struct {
	// Provider is the provider id of the offending account, if known
	Provider ID

	// AccountID identifies the offending account, if known
	AccountID string

	// Err is the underlying sentinel error
	Err error
}

func (e *ConfigError) Error() string {
	if e.AccountID != "" {
		return fmt.Sprintf("configuration error (provider: %s, account: %s): %v", e.Provider, e.AccountID, e.Err)
	}
	if e.Provider != "" {
		return fmt.Sprintf("configuration error (provider: %s): %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NotFoundError reports an unknown id referenced by a single-target operation.
type NotFoundError struct {
	// Kind is what was looked up, e.g. "account"
	Kind string

	// ID is the missing identifier
	ID string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "account" {
		return fmt.Sprintf("calendar client not found for accountId: %s", e.ID)
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// APIError wraps a failed vendor call.
type APIError struct {
	// Provider is the vendor that failed
	Provider ID

	// Op is the adapter operation, e.g. "events.list"
	Op string

	// StatusCode is the HTTP status returned by the vendor, 0 if none
	StatusCode int

	// Err is the underlying error
	Err error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed (status %d): %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches ErrNotFound for vendor 404 and 410 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && (e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone)
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
