// Package export writes merged calendar events as iCalendar (RFC 5545).
package export
