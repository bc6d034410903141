// Package resources provides MCP resources describing the calling user's
// connected accounts and calendars. Resources are read-only and scoped to
// the user resolved from the request context.
package resources
