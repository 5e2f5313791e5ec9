// Package cmd implements the Scriptdeck CLI commands using Cobra.
// It provides commands for listing configured scripts, running them with
// full output handling, and reading execution logs.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmgilman/scriptdeck/internal/alert"
	"github.com/jmgilman/scriptdeck/internal/config"
	"github.com/jmgilman/scriptdeck/internal/execution"
	"github.com/jmgilman/scriptdeck/internal/logging"
	"github.com/jmgilman/scriptdeck/internal/script"
	"github.com/jmgilman/scriptdeck/internal/slogger"
)

// appConfig holds the loaded application configuration.
var appConfig *config.Config

// configLoader is the shared configuration loader.
var configLoader *config.Loader

// verbosity counts -v flags for log level selection.
var verbosity int

var rootCmd = &cobra.Command{
	Use:   "scriptdeck",
	Short: "Run predefined scripts with managed output",
	Long: `Scriptdeck runs predefined scripts as managed processes.

Script output is captured live, persisted to log files, checked for
failures worth alerting on, and searched for downloadable result files.
Secret parameter values never reach logs or alert destinations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := slogger.New(slogger.Config{Verbosity: verbosity})

		ctx := cmd.Context()
		ctx = slogger.WithLogger(ctx, logger)
		ctx = WithConfig(ctx, appConfig)
		ctx = WithLoader(ctx, configLoader)
		if appConfig != nil {
			ctx = WithEngine(ctx, buildEngine(appConfig, logger))
		}
		cmd.SetContext(ctx)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
}

func initConfig() {
	loader, err := config.NewLoader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
		return
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config validation failed: %v\n", err)
	}

	appConfig = cfg
	configLoader = loader
}

// buildEngine wires the execution engine from the loaded configuration.
func buildEngine(cfg *config.Config, logger *slog.Logger) *Engine {
	destinations := make([]alert.Destination, 0, len(cfg.Alerts.Webhooks))
	for _, wh := range cfg.Alerts.Webhooks {
		destinations = append(destinations, alert.NewWebhook(wh.Name, wh.URL, nil))
	}

	return &Engine{
		Scripts:    script.NewLoader(cfg.Storage.Scripts),
		Registry:   execution.NewRegistry(logger),
		Paths:      logging.NewPathManager(cfg.Storage.Logs),
		Dispatcher: alert.NewDispatcher(destinations, logger),
		Logger:     logger,
	}
}
