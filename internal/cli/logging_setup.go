package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/urlindex/internal/config"
	"github.com/rshade/urlindex/internal/logging"
)

// setupLogging configures logging from the loaded config and the persistent
// flags, then stores the logger and a fresh run ID in the command context.
func setupLogging(cmd *cobra.Command, a *app) logging.LogPathResult {
	loggingCfg := config.Default().Logging
	if a.cfgErr == nil {
		loggingCfg = a.cfg.Logging
	}

	if a.opts.logLevel != "" {
		loggingCfg.Level = a.opts.logLevel
	}
	if a.opts.logFormat != "" {
		loggingCfg.Format = a.opts.logFormat
	}
	if a.opts.debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	}

	output := logging.OutputStderr
	if loggingCfg.File != "" {
		output = logging.OutputFile
	}

	result := logging.NewLoggerWithPath(logging.Config{
		Level:  loggingCfg.Level,
		Format: loggingCfg.Format,
		Output: output,
		File:   loggingCfg.File,
		Caller: a.opts.debug,
		Out:    cmd.ErrOrStderr(),
	})

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	runID := logging.GetOrGenerateRunID(ctx)
	ctx = logging.ContextWithRunID(ctx, runID)

	a.logger = logging.ComponentLogger(result.Logger, "cli").With().Str("run_id", runID).Logger()
	ctx = result.Logger.With().Str("run_id", runID).Logger().WithContext(ctx)
	cmd.SetContext(ctx)

	if a.cfgErr != nil {
		a.logger.Debug().Err(a.cfgErr).Msg("configuration could not be loaded")
	}
	a.logger.Debug().Str("command", cmd.Name()).Msg("command started")

	return result
}
