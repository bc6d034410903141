// Package accounts stores the third-party accounts a user has connected,
// together with the OAuth credentials the provider adapters are bound to.
package accounts
