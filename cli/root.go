// Package cli provides the pacas command line: the HTTP server and the
// maintenance commands that share its configuration.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pacas-inventario/app"
	"pacas-inventario/config"
	"pacas-inventario/logging"
)

type rootOptions struct {
	envFile string
	verbose bool
}

// NewRootCmd builds the pacas command tree. Running it without a subcommand starts the server.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "pacas",
		Short: "Inventory and pricing tracker for merchandise bundles",
		Long: `pacas records bundles (pacas) of merchandise with their cost, expenses and
classification, and computes suggested prices and profits per quality grade.

Examples:
  pacas serve
  pacas migrate
  pacas import --bundles data/bundles.json --config data/config.json
  pacas backup
  pacas metrics 3`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", ".env file loaded outside production")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newImportCmd(opts))
	rootCmd.AddCommand(newBackupCmd(opts))
	rootCmd.AddCommand(newMetricsCmd(opts))

	return rootCmd
}

// Execute runs the CLI
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads configuration and initializes logging
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if o.verbose {
		level = "debug"
	}
	if err := logging.Initialize(logging.Config{Level: level, Format: cfg.LogFormat, Output: cfg.LogOutput}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}

	if cfg.EnvFileLoaded {
		logging.Sugar.Infof("Loaded environment variables from %s (overriding system variables)", o.envFile)
	}
	return cfg, nil
}

// initApp loads configuration and wires the application
func (o *rootOptions) initApp(ctx context.Context) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Initialize(ctx, cfg)
}
