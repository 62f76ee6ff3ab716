// Package cli implements the urlindex command tree.
package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/urlindex/internal/config"
	"github.com/rshade/urlindex/internal/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
	logLevel   string
	logFormat  string
}

// app is the per-invocation state built by the root command before a
// subcommand runs.
type app struct {
	opts rootOptions

	// cfg is the configuration loaded from defaults, file and environment.
	// cfgErr is kept rather than returned so that commands such as
	// `config init` still work when the existing file is broken.
	cfg    config.Config
	cfgErr error

	logger    zerolog.Logger
	logResult *logging.LogPathResult
}

// config returns the loaded configuration with o applied.
func (a *app) config(o config.Overrides) (config.Config, error) {
	if a.cfgErr != nil {
		return config.Config{}, a.cfgErr
	}
	return a.cfg.WithOverrides(o), nil
}

// closeLog releases the log file opened for this invocation, if any.
func (a *app) closeLog() error {
	return a.logResult.Close()
}

// Execute builds the command tree and runs it with ctx. The log file is closed
// whether or not the command succeeds.
func Execute(ctx context.Context, ver string) error {
	a := newApp()
	return execute(ctx, a, newRootCmd(a, ver))
}

func execute(ctx context.Context, a *app, cmd *cobra.Command) error {
	defer func() { _ = a.closeLog() }()
	return cmd.ExecuteContext(ctx)
}

func newApp() *app {
	return &app{logger: zerolog.Nop()}
}

// NewRootCmd creates the root Cobra command for the urlindex CLI.
func NewRootCmd(ver string) *cobra.Command {
	return newRootCmd(newApp(), ver)
}

func newRootCmd(a *app, ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urlindex",
		Short: "Submit URLs from a CSV file to an indexing backend",
		Long: `urlindex reads URLs from a CSV file and submits each one to an indexing
API, pausing between batches to respect the backend's rate limit.`,
		Version:      ver,
		Example:      rootCmdExample,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg, a.cfgErr = config.Load(config.LoadOptions{Path: a.opts.configPath})
			result := setupLogging(cmd, a)
			a.logResult = &result
			return nil
		},
		// Skipped by cobra when RunE fails; Execute closes the file in that case.
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.closeLog()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "",
		"config file (default "+config.DefaultConfigFile+" in the working directory, if present)")
	flags.BoolVar(&a.opts.debug, "debug", false, "enable debug logging")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&a.opts.logFormat, "log-format", "", "log format (console, json)")

	cmd.AddCommand(newRunCmd(a), newTestURLCmd(a), newCountCmd(a), newConfigCmd(a))

	return cmd
}

// newConfigCmd creates the config command group.
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	cmd.AddCommand(NewConfigInitCmd(a), NewConfigValidateCmd(a))
	return cmd
}

const rootCmdExample = `  # Create a starter configuration
  urlindex config init

  # Check how many URLs a file contains
  urlindex count urls.csv

  # Try a single URL and inspect the payload
  urlindex test-url https://example.com/learning-center/page

  # Index everything, 100 URLs every 3 minutes
  urlindex run urls.csv

  # Index the first 20 URLs with a short pause
  urlindex run urls.csv --limit 20 --batch-size 10 --rate-limit 5`
