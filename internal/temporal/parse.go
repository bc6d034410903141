package temporal

import (
	"fmt"
	"strings"
	"time"
)

// Parse reads a Value from one of:
//
//	2025-03-14                              plain date
//	2025-03-14T09:30:00Z                    instant (any RFC 3339 offset)
//	2025-03-14T09:30:00+01:00[Europe/Paris] zoned date-time
func Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, ErrEmptyValue
	}

	if len(s) == len(DateLayout) {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return Value{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return Value{kind: KindPlainDate, date: DateOf(t)}, nil
	}

	if strings.HasSuffix(s, "]") {
		open := strings.LastIndexByte(s, '[')
		if open < 0 {
			return Value{}, fmt.Errorf("invalid zoned date-time %q: missing zone", s)
		}
		loc, err := LoadLocation(s[open+1 : len(s)-1])
		if err != nil {
			return Value{}, err
		}
		t, err := time.Parse(time.RFC3339Nano, s[:open])
		if err != nil {
			return Value{}, fmt.Errorf("invalid zoned date-time %q: %w", s, err)
		}
		return Zoned(t.In(loc)), nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Value{}, fmt.Errorf("invalid instant %q: %w", s, err)
	}
	return Instant(t), nil
}

// ParseInZone reads a wall-clock date-time without offset (as returned by
// vendors that send the zone separately) and attaches timeZone. Inputs that
// already carry an offset are converted to timeZone.
func ParseInZone(s, timeZone string) (Value, error) {
	loc, err := LoadLocation(timeZone)
	if err != nil {
		return Value{}, err
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Zoned(t.In(loc)), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, loc)
	if err != nil {
		return Value{}, fmt.Errorf("invalid date-time %q: %w", s, err)
	}
	return Zoned(t), nil
}

// MarshalText encodes v in the format accepted by Parse.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes the format produced by MarshalText. Empty input
// leaves v empty.
func (v *Value) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*v = Value{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
