package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"strings"
)

// Attribute keys shared by all packages.
const (
	KeyProvider = "provider"
	KeyAccount  = "account"
	KeyCalendar = "calendar"
	KeyUserHash = "user_hash"
	KeyError    = "error"
)

// Log output formats accepted by NewLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

func Provider(id string) slog.Attr {
	return slog.String(KeyProvider, id)
}

func Account(accountID string) slog.Attr {
	return slog.String(KeyAccount, accountID)
}

func Calendar(calendarID string) slog.Attr {
	return slog.String(KeyCalendar, calendarID)
}

// Err returns the error attribute. A nil err yields an empty group, which
// handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a stable, non-reversible label for an email
// address or user id, so log lines can be correlated without PII.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "user:" + hex.EncodeToString(sum[:8])
}

// UserHash returns the anonymized user attribute.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

// NewLogger builds a slog.Logger writing to w. Unknown formats fall back to
// text and unknown levels to info.
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps debug, info, warn and error to their slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
