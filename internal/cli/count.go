package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/urlindex/internal/config"
	"github.com/rshade/urlindex/internal/ingest"
	"github.com/rshade/urlindex/internal/logging"
)

// newCountCmd creates the count command. It runs the loader only; nothing is sent.
func newCountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count [csv]",
		Short: "Count the valid URLs in a CSV file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var o config.Overrides
			if len(args) > 0 {
				o.CSVPath = &args[0]
			}
			cfg, err := a.config(o)
			if err != nil {
				return setupError("loading configuration", err)
			}
			if cfg.Run.CSVPath == "" {
				return setupError("", errNoCSV)
			}

			ctx := cmd.Context()
			load, err := ingest.NewLoader(
				ingest.WithLogger(logging.FromContext(ctx)),
			).Load(ctx, cfg.Run.CSVPath)
			if err != nil {
				return setupError("loading URLs", err)
			}

			cmd.Printf("Found %d URLs in %s\n", load.Len(), cfg.Run.CSVPath)
			if load.Skipped() > 0 {
				cmd.Printf("Skipped %d rows (%s)\n", load.Skipped(), formatSkips(load))
				for _, row := range load.SkippedRows {
					a.logger.Debug().Int("line", row.Line).Str("reason", string(row.Reason)).Msg(row.Detail)
				}
			}
			return nil
		},
	}
	return cmd
}
