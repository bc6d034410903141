package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/auth"
	"github.com/teemow/calmux/internal/server"
)

// toolCategories lists the documented sections in output order, keyed by
// tool name prefix.
var toolCategories = []struct {
	prefix string
	title  string
}{
	{"events", "Event Tools"},
	{"calendars", "Calendar Tools"},
	{"tasks", "Task Tools"},
	{"accounts", "Account Tools"},
}

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate a markdown reference of every MCP tool from the registered
tool definitions. Tools that --read-only removes are marked as writes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, readOnly, err := documentedTools()
			if err != nil {
				return err
			}
			markdown := generateToolsMarkdown(tools, readOnly)

			if outputFile == "" || outputFile == "-" {
				_, err := io.WriteString(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// documentedServer registers every tool against an empty in-memory store.
func documentedServer(readOnly bool) (*mcpserver.MCPServer, func(), error) {
	store := accounts.NewMemoryStore()
	serverContext, err := server.NewServerContext(context.Background(), server.Options{Store: store})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create server context: %w", err)
	}

	mcpSrv := mcpserver.NewMCPServer("calmux", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	connector := auth.NewConnector(auth.Config{}, store)
	if err := registerAllTools(mcpSrv, serverContext, connector, readOnly); err != nil {
		_ = serverContext.Shutdown()
		return nil, nil, err
	}
	return mcpSrv, func() { _ = serverContext.Shutdown() }, nil
}

// documentedTools returns all tools and the names of those that stay
// registered in read-only mode.
func documentedTools() ([]mcp.Tool, map[string]bool, error) {
	full, cleanup, err := documentedServer(false)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()

	ro, cleanupRO, err := documentedServer(true)
	if err != nil {
		return nil, nil, err
	}
	defer cleanupRO()

	tools := make([]mcp.Tool, 0, len(full.ListTools()))
	for _, st := range full.ListTools() {
		tools = append(tools, st.Tool)
	}
	readOnly := make(map[string]bool)
	for name := range ro.ListTools() {
		readOnly[name] = true
	}
	return tools, readOnly, nil
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	for _, c := range toolCategories {
		if c.prefix == prefix {
			return c.title
		}
	}
	return "Other"
}

func anchor(title string) string {
	return strings.ToLower(strings.ReplaceAll(title, " ", "-"))
}

func generateToolsMarkdown(tools []mcp.Tool, readOnly map[string]bool) string {
	byCategory := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		c := getCategoryFromToolName(tool.Name)
		byCategory[c] = append(byCategory[c], tool)
	}

	titles := make([]string, 0, len(toolCategories)+1)
	for _, c := range toolCategories {
		if len(byCategory[c.title]) > 0 {
			titles = append(titles, c.title)
		}
	}
	if len(byCategory["Other"]) > 0 {
		titles = append(titles, "Other")
	}

	var sb strings.Builder
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools served by `calmux serve`. Generated from the tool definitions by `calmux generate-docs`.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, title := range titles {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", title, anchor(title))
	}
	sb.WriteString("\n")

	sb.WriteString("## Users and Accounts\n\n")
	sb.WriteString("Every tool acts for one user: the `X-Calmux-User` header over HTTP, or the configured default user over stdio.\n\n")
	sb.WriteString("- Merged listings (`events_list`, `calendars_list`, `tasks_list`) read every connected account and skip failing ones\n")
	sb.WriteString("- Writes name their target with `accountId` (see `accounts_list`)\n")
	sb.WriteString("- Tools marked *write* are not registered with `--read-only`\n\n")

	for _, title := range titles {
		group := byCategory[title]
		slices.SortFunc(group, func(a, b mcp.Tool) int { return strings.Compare(a.Name, b.Name) })

		fmt.Fprintf(&sb, "## %s\n\n", title)
		for _, tool := range group {
			writeToolMarkdown(&sb, tool, !readOnly[tool.Name])
		}
	}
	return sb.String()
}

func writeToolMarkdown(sb *strings.Builder, tool mcp.Tool, write bool) {
	fmt.Fprintf(sb, "### %s\n\n", tool.Name)
	if write {
		sb.WriteString("*write*\n\n")
	}
	if tool.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", tool.Description)
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)

	sb.WriteString("**Arguments:**\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}

		required := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "required"
		}

		desc, _ := prop["description"].(string)
		if desc == "" {
			typ, _ := prop["type"].(string)
			desc = strings.TrimSpace(typ + " parameter")
		}
		fmt.Fprintf(sb, "- `%s` (%s): %s\n", name, required, desc)
	}
	sb.WriteString("\n")
}
