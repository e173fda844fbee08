// Package commands implements the diagnostic command line tool.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-diagnostic/internal/config"
	"github.com/goliatone/go-diagnostic/internal/logging"
)

// app carries the resolved configuration and logger into subcommands.
type app struct {
	configPath string
	logLevel   string
	storeDSN   string
	endpoint   string

	cfg    *config.Config
	logger *zap.Logger
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the diagnostic command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:          "diagnostic",
		Short:        "Grammar MasterClass Session 0 diagnostic",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (YAML)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.storeDSN, "store", "", `fallback store: "memory", a SQLite path or a postgres:// URL`)
	flags.StringVar(&a.endpoint, "endpoint", "", "form service endpoint")

	root.AddCommand(runCmd(a), serveCmd(a), backupCmd(a), definitionCmd(a))
	return root
}

// setup loads the config file, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("store") {
		cfg.Store.DSN = a.storeDSN
	}
	if flags.Changed("endpoint") {
		cfg.Sink.Endpoint = a.endpoint
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}
