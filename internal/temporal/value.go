package temporal

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Kind identifies which representation a Value holds.
type Kind int

const (
	KindInstant Kind = iota + 1
	KindZoned
	KindPlainDate
)

func (k Kind) String() string {
	switch k {
	case KindInstant:
		return "instant"
	case KindZoned:
		return "zoned"
	case KindPlainDate:
		return "date"
	default:
		return "unset"
	}
}

// ErrEmptyValue is returned when a zero Value is converted.
var ErrEmptyValue = errors.New("temporal value is empty")

// Value is an immutable instant, zoned date-time or plain date.
// The zero Value is empty and every conversion on it fails.
type Value struct {
	kind Kind
	t    time.Time
	date Date
}

// Instant returns an instant Value for t. The location of t is dropped.
func Instant(t time.Time) Value {
	return Value{kind: KindInstant, t: t.UTC()}
}

// Zoned returns a zoned date-time Value that keeps t's location.
func Zoned(t time.Time) Value {
	return Value{kind: KindZoned, t: t}
}

// PlainDate returns a plain date Value. Out of range components are
// normalized the way time.Date normalizes them.
func PlainDate(year int, month time.Month, day int) Value {
	return Value{kind: KindPlainDate, date: DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))}
}

// FromDate returns a plain date Value for d.
func FromDate(d Date) Value {
	return PlainDate(d.Year, d.Month, d.Day)
}

// Kind returns the representation held by v.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the empty Value.
func (v Value) IsZero() bool { return v.kind == 0 }

// IsDate reports whether v is a plain date.
func (v Value) IsDate() bool { return v.kind == KindPlainDate }

// Time returns the underlying time of an instant or zoned value. For a plain
// date it returns midnight UTC of that date.
func (v Value) Time() time.Time {
	if v.kind == KindPlainDate {
		return v.date.In(time.UTC)
	}
	return v.t
}

// Date returns the date of a plain date value, or the wall-clock date of an
// instant or zoned value in its own location.
func (v Value) Date() Date {
	if v.kind == KindPlainDate {
		return v.date
	}
	return DateOf(v.t)
}

// Location returns the zone a zoned value was expressed in, or nil.
func (v Value) Location() *time.Location {
	if v.kind != KindZoned {
		return nil
	}
	return v.t.Location()
}

// Equal reports whether v and o hold the same representation and moment.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindPlainDate:
		return v.date == o.date
	case KindZoned:
		return v.t.Equal(o.t) && v.t.Location().String() == o.t.Location().String()
	case KindInstant:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindPlainDate:
		return v.date.String()
	case KindInstant:
		return v.t.Format(time.RFC3339Nano)
	case KindZoned:
		return v.t.Format(time.RFC3339Nano) + "[" + v.t.Location().String() + "]"
	default:
		return ""
	}
}

// ToInstant returns the absolute instant of v seen from timeZone. Instants and
// zoned values keep their moment; a plain date becomes midnight in timeZone.
func ToInstant(v Value, timeZone string) (time.Time, error) {
	loc, err := LoadLocation(timeZone)
	if err != nil {
		return time.Time{}, err
	}

	switch v.kind {
	case KindInstant, KindZoned:
		return v.t.In(loc), nil
	case KindPlainDate:
		return v.date.In(loc), nil
	default:
		return time.Time{}, ErrEmptyValue
	}
}

// ToPlainDate returns the calendar date of v in timeZone. A plain date is
// returned unchanged.
func ToPlainDate(v Value, timeZone string) (Date, error) {
	loc, err := LoadLocation(timeZone)
	if err != nil {
		return Date{}, err
	}

	switch v.kind {
	case KindPlainDate:
		return v.date, nil
	case KindInstant, KindZoned:
		return DateOf(v.t.In(loc)), nil
	default:
		return Date{}, ErrEmptyValue
	}
}

// ToYearMonth returns the year and month of v in timeZone.
func ToYearMonth(v Value, timeZone string) (YearMonth, error) {
	d, err := ToPlainDate(v, timeZone)
	if err != nil {
		return YearMonth{}, err
	}
	return d.YearMonth(), nil
}

// IsSameDay reports whether a and b fall on the same calendar date in timeZone.
func IsSameDay(a, b Value, timeZone string) (bool, error) {
	da, db, err := bothDates(a, b, timeZone)
	if err != nil {
		return false, err
	}
	return da == db, nil
}

// IsSameMonth reports whether a and b fall in the same year and month in timeZone.
func IsSameMonth(a, b Value, timeZone string) (bool, error) {
	da, db, err := bothDates(a, b, timeZone)
	if err != nil {
		return false, err
	}
	return da.YearMonth() == db.YearMonth(), nil
}

// IsSameYear reports whether a and b fall in the same Gregorian year in
// timeZone. Non-Gregorian calendar systems are not taken into account.
func IsSameYear(a, b Value, timeZone string) (bool, error) {
	da, db, err := bothDates(a, b, timeZone)
	if err != nil {
		return false, err
	}
	return da.Year == db.Year, nil
}

// Compare orders a and b by their instant in timeZone.
func Compare(a, b Value, timeZone string) (int, error) {
	ta, err := ToInstant(a, timeZone)
	if err != nil {
		return 0, err
	}
	tb, err := ToInstant(b, timeZone)
	if err != nil {
		return 0, err
	}
	return ta.Compare(tb), nil
}

// FormatDate renders the calendar date of v in timeZone as YYYY-MM-DD.
func FormatDate(v Value, timeZone string) (string, error) {
	d, err := ToPlainDate(v, timeZone)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

func bothDates(a, b Value, timeZone string) (Date, Date, error) {
	da, err := ToPlainDate(a, timeZone)
	if err != nil {
		return Date{}, Date{}, err
	}
	db, err := ToPlainDate(b, timeZone)
	if err != nil {
		return Date{}, Date{}, err
	}
	return da, db, nil
}

var locations sync.Map

// LoadLocation returns the location for an IANA zone name. The empty name and
// "UTC" resolve to time.UTC. Loaded zones are cached for the process lifetime.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "UTC" || name == "Z" {
		return time.UTC, nil
	}
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	actual, _ := locations.LoadOrStore(name, loc)
	return actual.(*time.Location), nil
}
