// Package server provides the MCP server context and the HTTP plumbing
// around it for calmux.
//
// ServerContext carries the account store, the provider registry and the
// aggregator to every tool handler, together with optional metrics and an
// audit logger. The calling user is resolved per request: over HTTP the
// X-Calmux-User header is copied into the context, over stdio the
// configured default user applies.
//
// HTTPServer exposes the MCP streamable HTTP transport on /mcp next to the
// Kubernetes health endpoints. MetricsServer serves Prometheus metrics on a
// separate port.
package server
