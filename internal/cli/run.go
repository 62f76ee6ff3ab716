package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rshade/urlindex/internal/config"
	"github.com/rshade/urlindex/internal/engine"
	"github.com/rshade/urlindex/internal/ingest"
	"github.com/rshade/urlindex/internal/logging"
	"github.com/rshade/urlindex/internal/submit"
	"github.com/rshade/urlindex/internal/tui"
)

// errNoCSV is returned when neither an argument nor run.csv_path names the input.
var errNoCSV = errors.New("no CSV file given: pass it as an argument or set run.csv_path")

// runFlags holds the flags of the run command.
type runFlags struct {
	api             apiFlags
	batchSize       int
	rateLimit       float64
	limit           int
	stopOnAuthError bool
}

func (f *runFlags) overrides(cmd *cobra.Command, args []string) config.Overrides {
	var o config.Overrides
	if len(args) > 0 {
		o.CSVPath = &args[0]
	}
	f.api.apply(cmd, &o)
	if cmd.Flags().Changed("batch-size") {
		o.BatchSize = &f.batchSize
	}
	if cmd.Flags().Changed("rate-limit") {
		o.RateLimitSeconds = &f.rateLimit
	}
	if cmd.Flags().Changed("limit") {
		o.Limit = &f.limit
	}
	if cmd.Flags().Changed("stop-on-auth-error") {
		o.StopOnAuthError = &f.stopOnAuthError
	}
	return o
}

// newRunCmd creates the run command, the indexing pipeline itself.
func newRunCmd(a *app) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [csv]",
		Short: "Submit every URL in a CSV file to the indexing API",
		Long: `Loads URLs from a CSV file with Title, URL and Date columns and submits them
one at a time. After each batch the run pauses for the rate limit window.
Failed submissions are recorded and the run continues.

Exit codes: 0 when every batch ran (individual failures included), 1 on a
setup error or when --stop-on-auth-error ends the run, 130 when interrupted.`,
		Example: `  # Use run.csv_path from the config file
  urlindex run

  # Smaller batches with a shorter pause
  urlindex run urls.csv --batch-size 25 --rate-limit 60`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config(flags.overrides(cmd, args))
			if err != nil {
				return setupError("loading configuration", err)
			}
			return runIndex(cmd, a, cfg)
		},
	}

	flags.api.register(cmd)
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", config.DefaultBatchSize, "URLs submitted between rate limit pauses")
	cmd.Flags().Float64Var(&flags.rateLimit, "rate-limit", config.DefaultRateLimitSeconds, "seconds to wait between batches")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "submit at most this many URLs (0 = all)")
	cmd.Flags().BoolVar(&flags.stopOnAuthError, "stop-on-auth-error", false, "end the run when the API rejects the token")

	return cmd
}

func runIndex(cmd *cobra.Command, a *app, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return setupError("invalid configuration", err)
	}
	if cfg.Run.CSVPath == "" {
		return setupError("", errNoCSV)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	logger := logging.FromContext(ctx)

	loader := ingest.NewLoader(
		ingest.WithLimit(cfg.Run.Limit),
		ingest.WithLogger(logger),
	)
	load, err := loader.Load(ctx, cfg.Run.CSVPath)
	if err != nil {
		if ctx.Err() != nil {
			return &ExitError{Code: ExitInterrupted, Reason: "interrupted while loading URLs", Err: context.Cause(ctx)}
		}
		return setupError("loading URLs", err)
	}

	switch {
	case load.Len() == 0:
		fmt.Fprintln(out, "No URLs found. Exiting.")
		return nil
	case load.Truncated:
		fmt.Fprintf(out, "Found URLs - limiting to %d for this run\n\n", load.Len())
	default:
		fmt.Fprintf(out, "Found %d URLs to index\n\n", load.Len())
	}
	if load.Skipped() > 0 {
		fmt.Fprintf(out, "Skipped %d rows (%s)\n\n", load.Skipped(), formatSkips(load))
	}

	client := submit.NewClient(cfg.API, submit.WithLogger(logger))
	runner, err := engine.NewRunner(client, engine.Options{
		BatchSize:       cfg.Run.BatchSize,
		RateLimit:       cfg.RateLimit(),
		StopOnAuthError: cfg.Run.StopOnAuthError,
	}, engine.WithReporter(tui.NewReporter(out)))
	if err != nil {
		return setupError("creating runner", err)
	}

	fmt.Fprintln(out, "Starting indexing process...")
	fmt.Fprintln(out)

	summary, runErr := runner.RunLoad(ctx, load)
	if err := tui.RenderSummary(out, summary); err != nil {
		a.logger.Warn().Err(err).Msg("could not render summary")
	}

	return runOutcome(ctx, runErr)
}

// runOutcome maps the runner's error to the command's exit behaviour.
func runOutcome(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrInterrupted):
		return &ExitError{Code: ExitInterrupted, Reason: "process interrupted", Err: context.Cause(ctx)}
	case errors.Is(err, engine.ErrAuthAborted):
		return &ExitError{Code: ExitFailure, Reason: "authentication token expired, update the token and restart"}
	default:
		return &ExitError{Code: ExitFailure, Reason: "run failed", Err: err}
	}
}

func formatSkips(load *ingest.LoadResult) string {
	by := load.SkippedBy()
	parts := make([]string, 0, len(by))
	for _, reason := range []ingest.SkipReason{ingest.SkipMissingURL, ingest.SkipInvalidURL, ingest.SkipParseError} {
		if n := by[reason]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", reason, n))
		}
	}
	return strings.Join(parts, ", ")
}
