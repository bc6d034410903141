// Package temporal normalizes the three date representations calendar vendors
// hand back into one comparable form.
//
// A Value is exactly one of:
//   - an instant: an absolute point in time with no attached zone
//   - a zoned date-time: an instant carrying the IANA zone it was expressed in
//   - a plain date: a calendar date without a time of day (all-day events)
//
// Every conversion takes the time zone the caller is looking from. A plain
// date is always read as wall-clock midnight in that zone, never in UTC, so an
// all-day event keeps its day when viewed from a different zone.
//
// # Usage
//
//	start := temporal.PlainDate(2025, time.March, 14)
//	at, err := temporal.ToInstant(start, "Europe/Berlin")
//	// at == 2025-03-14T00:00:00+01:00
//
//	same, err := temporal.IsSameDay(start, temporal.Instant(at), "Europe/Berlin")
//	// same == true
//
// # Limitations
//
// Year and month comparisons use the proleptic Gregorian calendar. Other
// calendar systems are not modelled.
package temporal
