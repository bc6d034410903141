package cmd

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := map[string]string{
		"events_list":           "Event Tools",
		"calendars_delete":      "Calendar Tools",
		"tasks_list_categories": "Task Tools",
		"accounts_auth_url":     "Account Tools",
		"unknown":               "Other",
	}
	for name, want := range tests {
		assert.Equal(t, want, getCategoryFromToolName(name), name)
	}
}

func TestDocumentedTools_MarksWrites(t *testing.T) {
	tools, readOnly, err := documentedTools()
	require.NoError(t, err)

	assert.Len(t, tools, len(readTools)+len(writeTools))
	for _, name := range readTools {
		assert.True(t, readOnly[name], name)
	}
	for _, name := range writeTools {
		assert.False(t, readOnly[name], name)
	}
}

func TestGenerateToolsMarkdown(t *testing.T) {
	tools, readOnly, err := documentedTools()
	require.NoError(t, err)

	md := generateToolsMarkdown(tools, readOnly)

	assert.True(t, strings.HasPrefix(md, "# MCP Tools Reference"))
	assert.Contains(t, md, "- [Event Tools](#event-tools)")
	assert.Contains(t, md, "### events_create\n\n*write*\n\n")
	assert.NotContains(t, md, "### events_list\n\n*write*")
	assert.Contains(t, md, "- `accountId` (required): ")
	assert.Contains(t, md, "- `timeZone` (optional): ")
	assert.NotContains(t, md, "## Other")

	// Sections follow the fixed category order.
	assert.Less(t, strings.Index(md, "## Event Tools"), strings.Index(md, "## Calendar Tools"))
	assert.Less(t, strings.Index(md, "## Task Tools"), strings.Index(md, "## Account Tools"))
	assert.Less(t, strings.Index(md, "### events_create"), strings.Index(md, "### events_delete"))
}

func TestGenerateToolsMarkdown_Other(t *testing.T) {
	md := generateToolsMarkdown([]mcp.Tool{mcp.NewTool("ping")}, map[string]bool{"ping": true})

	assert.Contains(t, md, "## Other")
	assert.Contains(t, md, "### ping\n\n")
	assert.NotContains(t, md, "*write*\n\n")
}
