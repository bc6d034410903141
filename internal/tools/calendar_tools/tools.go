package calendar_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calmux/internal/server"
)

// RegisterCalendarTools registers all event and calendar tools with the MCP server
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	if err := RegisterCalendarListTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}

	return nil
}
