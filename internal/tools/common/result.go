package common

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/calmux/internal/provider"
)

// JSONResult encodes v as an indented JSON text result.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ErrorResult turns err into a tool error. Missing accounts and
// configuration problems keep their own message; other failures are
// prefixed with action.
func ErrorResult(action string, err error) *mcp.CallToolResult {
	var nf *provider.NotFoundError
	if errors.As(err, &nf) || provider.IsConfigError(err) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
}
