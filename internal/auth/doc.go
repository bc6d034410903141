// Package auth holds the OAuth client configuration for every provider, the
// authorization code exchange used to connect accounts, and the token
// refresher the account layer runs before binding an adapter.
package auth
