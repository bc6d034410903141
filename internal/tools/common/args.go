package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/calmux/internal/temporal"
)

// Argument names shared by several tools.
const (
	ArgAccountID  = "accountId"
	ArgCalendarID = "calendarId"
	ArgEventID    = "eventId"
	ArgTimeZone   = "timeZone"
)

// String returns args[key] when it is a string, or "".
func String(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// RequiredString returns a non-empty string argument.
func RequiredString(args map[string]any, key string) (string, error) {
	s := strings.TrimSpace(String(args, key))
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

// OptionalString returns nil when key is absent. A present empty string
// is returned as a pointer to "".
func OptionalString(args map[string]any, key string) *string {
	s, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// OptionalBool returns nil when key is absent or not a boolean.
func OptionalBool(args map[string]any, key string) *bool {
	b, ok := args[key].(bool)
	if !ok {
		return nil
	}
	return &b
}

// Bool returns args[key] when it is a boolean, or false.
func Bool(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// StringSlice accepts a JSON array of strings or a comma-separated string.
func StringSlice(args map[string]any, key string) []string {
	var out []string
	switch v := args[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out
}

// Value parses a date, instant or zoned date-time argument. ok is false
// when the argument is absent.
func Value(args map[string]any, key string) (v temporal.Value, ok bool, err error) {
	s := strings.TrimSpace(String(args, key))
	if s == "" {
		return temporal.Value{}, false, nil
	}
	v, err = temporal.Parse(s)
	if err != nil {
		return temporal.Value{}, true, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, true, nil
}

// Instant parses a window bound. Plain dates are read as midnight in
// timeZone. Nil means the argument is absent.
func Instant(args map[string]any, key, timeZone string) (*time.Time, error) {
	v, ok, err := Value(args, key)
	if err != nil || !ok {
		return nil, err
	}
	t, err := temporal.ToInstant(v, timeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &t, nil
}
