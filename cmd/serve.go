package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/calmux/internal/auth"
	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/logging"
	"github.com/teemow/calmux/internal/resources"
	"github.com/teemow/calmux/internal/server"
	"github.com/teemow/calmux/internal/temporal"
	"github.com/teemow/calmux/internal/tools/account_tools"
	"github.com/teemow/calmux/internal/tools/calendar_tools"
	"github.com/teemow/calmux/internal/tools/tasks_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// serveOptions holds the serve flags that have no environment counterpart
// or override one.
type serveOptions struct {
	transport        string
	httpAddr         string
	readOnly         bool
	disableStreaming bool
	metricsEnabled   bool
	metricsAddr      string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing the merged
calendars, events and tasks of the connected accounts.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

User identity:
  Over stdio every call acts for CALMUX_DEFAULT_USER (or --user).
  Over HTTP the X-Calmux-User header selects the user; authenticate
  callers in front of calmux.

Read-only mode:
  --read-only (or CALMUX_READ_ONLY=true) registers only the listing tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", "", "HTTP server address (default: CALMUX_HTTP_ADDR)")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Only register tools that do not modify calendars, tasks or accounts")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Serve Prometheus metrics on a dedicated port (HTTP transport only)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Metrics server address (default: CALMUX_METRICS_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	if opts.transport != transportStdio && opts.transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if opts.httpAddr != "" {
		cfg.HTTPAddr = opts.httpAddr
	}
	if opts.metricsAddr != "" {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if cmd.Flags().Changed("read-only") {
		cfg.ReadOnly = opts.readOnly
	}
	if opts.transport == transportStreamableHTTP && !cmd.Flags().Changed("log-format") && os.Getenv("CALMUX_LOG_FORMAT") == "" {
		cfg.LogFormat = logging.FormatJSON
	}
	if _, err := temporal.LoadLocation(cfg.TimeZone); err != nil {
		return fmt.Errorf("invalid default time zone: %w", err)
	}

	// stop on SIGINT/SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig, err := instrumentation.LoadConfig()
	if err != nil {
		return err
	}
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	a, err := newApp(cfg, metrics)
	if err != nil {
		return err
	}
	logger := a.logger
	slog.SetDefault(logger)

	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
		if err := a.Close(); err != nil {
			logger.Warn("closing account database failed", logging.Err(err))
		}
	}()

	// Metrics are only served next to the HTTP transport
	var metricsServer *server.MetricsServer
	if opts.transport != transportStdio && opts.metricsEnabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(cfg.MetricsAddr, provider, logger)
		if err != nil {
			return err
		}
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	serverContext, err := server.NewServerContext(shutdownCtx, server.Options{
		Store:       a.store,
		Registry:    a.registry,
		Aggregator:  a.aggregator,
		Logger:      logger,
		DefaultUser: cfg.DefaultUser,
		RequireUser: opts.transport == transportStreamableHTTP,
		TimeZone:    cfg.TimeZone,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	// tools pick these up through the server context
	if provider.Enabled() {
		serverContext.SetMetrics(metrics)
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	mcpSrv := mcpserver.NewMCPServer("calmux", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	if err := registerAllTools(mcpSrv, serverContext, a.connector, cfg.ReadOnly); err != nil {
		return err
	}

	logger.Info("starting calmux MCP server",
		"transport", opts.transport,
		"read_only", cfg.ReadOnly,
		"default_user", cfg.DefaultUser,
		"tools", len(mcpSrv.ListTools()))

	switch opts.transport {
	case transportStreamableHTTP:
		httpSrv := server.NewHTTPServer(mcpSrv, opts.disableStreaming)
		httpSrv.SetMetrics(metrics)
		return runStreamableHTTPServer(shutdownCtx, httpSrv, server.NewHealthChecker(serverContext), cfg.HTTPAddr, logger)
	default:
		return runStdioServer(mcpSrv)
	}
}

func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(addr, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}
	if err := metricsServer.Listen(); err != nil {
		return nil, err
	}

	go func() {
		if err := metricsServer.Serve(); err != nil {
			logger.Error("metrics server stopped", logging.Err(err))
		}
	}()
	return metricsServer, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, httpSrv *server.HTTPServer, health *server.HealthChecker, addr string, logger *slog.Logger) error {
	httpSrv.SetHealthChecker(health)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		logger.Info("HTTP server listening", "addr", addr, "endpoint", server.MCPEndpoint)
		if err := httpSrv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		health.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		return nil
	}
}

// registerAllTools registers the tools and resources. Write tools are skipped
// when readOnly is set.
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, connector *auth.Connector, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Tasks",
			register: func() error {
				return tasks_tools.RegisterTasksTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Accounts",
			register: func() error {
				return account_tools.RegisterAccountTools(mcpSrv, ctx, connector, readOnly)
			},
		},
		{
			name: "User Resources",
			register: func() error {
				return resources.RegisterUserResources(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}
