package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/labelprint/orderexport/internal/app"
	"github.com/labelprint/orderexport/internal/config"
	"github.com/labelprint/orderexport/internal/repository/postgres"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "exportctl",
	Short: "Order export command line tool",
	Long: `exportctl runs partner CSV exports against the local order mirror,
syncs orders from Shopify and inspects export history.

Configuration is read from the environment (and .env) like the server.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// openApp loads configuration, connects to the database and wires the services.
// The returned func releases the database and flushes the logger.
func openApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if !verbose {
		cfg.LogLevel = "warn"
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a, err := app.New(ctx, cfg, db, logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		db.Close()
		_ = logger.Sync()
	}
	return a, cleanup, nil
}
