// Package tasks_tools provides MCP tools for the task lists of connected
// accounts.
//
// # Available Tools
//
//   - tasks_list_categories: List the task lists of every task-capable account
//   - tasks_list: List tasks across accounts, or of one task list
//   - tasks_create: Create a task in one task list
//   - tasks_update: Update a task
//   - tasks_delete: Delete one or more tasks
//
// Accounts whose provider has no task capability are left out of the merged
// listings. Write tools are not registered in read-only mode.
package tasks_tools
