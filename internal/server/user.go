package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// UserHeader names the calling user on the HTTP transport. Authentication
// happens in front of calmux; the proxy sets this header.
const UserHeader = "X-Calmux-User"

// ErrNoUser is returned when a request must name a user and does not.
var ErrNoUser = errors.New("request names no user: set the " + UserHeader + " header")

type userKey struct{}

// WithUser returns a context acting for user.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user set by WithUser.
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(userKey{}).(string)
	if !ok || user == "" {
		return "", false
	}
	return user, true
}

// UserFromRequest copies the UserHeader value into the request context. It
// matches the mcp-go HTTP context function signature.
func UserFromRequest(ctx context.Context, r *http.Request) context.Context {
	user := strings.TrimSpace(r.Header.Get(UserHeader))
	if user == "" {
		return ctx
	}
	return WithUser(ctx, user)
}
