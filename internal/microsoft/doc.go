// Package microsoft is the Microsoft Graph calendar adapter.
//
// It talks to Graph v1.0 over plain REST with a bearer token and asks for all
// date-times in UTC (Prefer: outlook.timezone="UTC"). The primary calendar
// alias maps to /me/calendar, every other id to /me/calendars/{id}.
//
// Graph has no per-event color. The first event category carries the
// normalized color in both directions. Graph calendars have no description or
// time zone, so those calendar fields are not written.
package microsoft
