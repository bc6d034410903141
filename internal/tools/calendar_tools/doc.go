// Package calendar_tools provides MCP tools for events and calendars across
// every account a user has connected.
//
// events_list merges all accounts into one list ordered by start. The write
// tools target exactly one account, named by accountId. Write tools are not
// registered in read-only mode.
package calendar_tools
