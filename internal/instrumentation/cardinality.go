package instrumentation

import "strings"

// Label values derived from requests, users or accounts are collapsed to a
// small fixed set before they reach a metric.

const labelOther = "other"

var (
	knownProviders = map[string]bool{"google": true, "microsoft": true}
	knownPaths     = map[string]bool{"/mcp": true, "/healthz": true, "/readyz": true, "/healthz/detailed": true}
)

// ExtractUserDomain returns the lower-cased domain of an email address, or
// "unknown" for anything that is not one.
func ExtractUserDomain(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "unknown"
	}
	return strings.ToLower(domain)
}

// ProviderLabel keeps the known provider ids and maps the rest to "other".
func ProviderLabel(id string) string {
	if knownProviders[id] {
		return id
	}
	return labelOther
}

// PathLabel keeps the served routes and maps the rest to "other", so that
// probing random URLs cannot grow the series count.
func PathLabel(path string) string {
	if knownPaths[path] {
		return path
	}
	return labelOther
}

// Provider operation names used as the operation label.
const (
	OperationCalendars      = "calendars"
	OperationCreateCalendar = "create_calendar"
	OperationUpdateCalendar = "update_calendar"
	OperationDeleteCalendar = "delete_calendar"
	OperationEvents         = "events"
	OperationCreateEvent    = "create_event"
	OperationUpdateEvent    = "update_event"
	OperationDeleteEvent    = "delete_event"
	OperationCategories     = "categories"
	OperationTasks          = "tasks"
	OperationCreateTask     = "create_task"
	OperationUpdateTask     = "update_task"
	OperationDeleteTask     = "delete_task"
)

// Fan-out stages used as the stage label of branch failures.
const (
	StageResolve  = "resolve"
	StageDiscover = "discover"
	StageFetch    = "fetch"
)
