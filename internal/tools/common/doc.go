// Package common provides shared helpers for the MCP tool packages:
// argument decoding, JSON results, error mapping and the instrumented
// handler wrapper.
package common
