// Package account_tools provides MCP tools for connecting and managing the
// calendar accounts of the calling user.
//
// # Available Tools
//
//   - accounts_list: List the connected accounts (tokens are never returned)
//   - accounts_auth_url: Get the consent URL for Google or Microsoft
//   - accounts_connect: Exchange an authorization code and store the account
//   - accounts_remove: Disconnect an account
//
// accounts_connect and accounts_remove are not registered in read-only mode.
package account_tools
