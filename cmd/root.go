package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calmux application
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calmux",
		Short: "Merge Google and Microsoft calendars and Google Tasks behind one API",
		Long: `calmux connects Google and Microsoft calendar accounts and Google Tasks,
normalizes their events and serves them as one merged, time-ordered view.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants (serve)
  - A CLI for managing accounts and listing or exporting events

Configuration is read from CALMUX_* environment variables and an optional
.env file in the working directory. Flags override both.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("user", "", "User whose accounts are used (default: CALMUX_DEFAULT_USER)")
	flags.String("db", "", "Path to the account database (default: CALMUX_DB_PATH)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (default: CALMUX_LOG_LEVEL)")
	flags.String("log-format", "", "Log format: text or json (default: CALMUX_LOG_FORMAT)")
	flags.String("time-zone", "", "IANA time zone for plain dates (default: CALMUX_TIME_ZONE)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAccountsCmd())
	cmd.AddCommand(newEventsCmd())
	cmd.AddCommand(newGenerateDocsCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calmux version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
