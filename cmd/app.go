package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/calmux/internal/accounts"
	"github.com/teemow/calmux/internal/aggregate"
	"github.com/teemow/calmux/internal/auth"
	"github.com/teemow/calmux/internal/config"
	"github.com/teemow/calmux/internal/database"
	"github.com/teemow/calmux/internal/instrumentation"
	"github.com/teemow/calmux/internal/logging"
	"github.com/teemow/calmux/internal/registry"
)

// app bundles the dependencies every command builds from the configuration.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *sql.DB
	store      accounts.Store
	registry   *registry.Registry
	refresher  *auth.Refresher
	aggregator *aggregate.Aggregator
	connector  *auth.Connector
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("user") {
		cfg.DefaultUser, _ = flags.GetString("user")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("time-zone") {
		cfg.TimeZone, _ = flags.GetString("time-zone")
	}
	return cfg, nil
}

// newApp opens the account store and wires the provider stack. metrics may
// be nil.
func newApp(cfg *config.Config, metrics *instrumentation.Metrics) (*app, error) {
	logger := logging.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open account database %s: %w", cfg.DBPath, err)
	}
	store := accounts.NewSQLiteStore(db)

	reg := registry.New(registry.WithMetrics(metrics))

	refresher := auth.NewRefresher(cfg.OAuth(), store)
	refresher.SetMetrics(metrics)

	connector := auth.NewConnector(cfg.OAuth(), store)
	connector.SetMetrics(metrics)

	agg := aggregate.New(store, reg,
		aggregate.WithRefresher(refresher),
		aggregate.WithLogger(logging.NewSlogAdapter(logger)),
		aggregate.WithMetrics(metrics),
	)

	return &app{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		store:      store,
		registry:   reg,
		refresher:  refresher,
		aggregator: agg,
		connector:  connector,
	}, nil
}

// setupApp is the common entry of the account and event commands.
func setupApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, nil)
}

func (a *app) Close() error {
	return a.db.Close()
}

// user returns the user the command acts for.
func (a *app) user() string {
	return a.cfg.DefaultUser
}

func (a *app) context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
