// Package cmd implements the command-line interface for calmux.
//
// This package provides the following commands:
//   - serve: Start the MCP server (stdio or streamable HTTP)
//   - accounts: Connect, import, list and remove calendar accounts
//   - events: List merged events or export them as iCalendar
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
package cmd
