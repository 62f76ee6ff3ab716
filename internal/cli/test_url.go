package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/urlindex/internal/config"
	"github.com/rshade/urlindex/internal/ingest"
	"github.com/rshade/urlindex/internal/logging"
	"github.com/rshade/urlindex/internal/submit"
)

const banner = 60

// newTestURLCmd creates the test-url command, which submits one URL and shows
// exactly what was sent.
func newTestURLCmd(a *app) *cobra.Command {
	var flags apiFlags

	cmd := &cobra.Command{
		Use:   "test-url <url>",
		Short: "Submit a single URL and print the payload and result",
		Long: `Submits one URL using the configured API settings, printing the JSON payload
before sending it. Use it to check credentials and the widget ID before a full run.`,
		Example: `  urlindex test-url https://example.com/learning-center/getting-started`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var o config.Overrides
			flags.apply(cmd, &o)
			cfg, err := a.config(o)
			if err != nil {
				return setupError("loading configuration", err)
			}
			return runTestURL(cmd, cfg, args[0])
		},
	}

	flags.register(cmd)
	return cmd
}

func runTestURL(cmd *cobra.Command, cfg config.Config, rawURL string) error {
	if err := cfg.Validate(); err != nil {
		return setupError("invalid configuration", err)
	}

	ctx := cmd.Context()
	client := submit.NewClient(cfg.API,
		submit.WithLogger(logging.FromContext(ctx)))
	rec := ingest.Record{URL: rawURL}

	rule := strings.Repeat("=", banner)
	cmd.Println(rule)
	cmd.Println("Testing single URL indexing")
	cmd.Println(rule)
	cmd.Printf("URL: %s\n", rawURL)
	cmd.Printf("API: %s\n\n", cfg.API.URL)

	payload, err := json.MarshalIndent(client.Payload(rec), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	cmd.Println("Payload:")
	cmd.Println(string(payload))
	cmd.Println()
	cmd.Println("Sending request...")

	res := client.Submit(ctx, rec)

	outcome := "SUCCESS"
	if !res.Success {
		outcome = "FAILED"
	}
	cmd.Println()
	cmd.Println(rule)
	cmd.Printf("Result: %s\n", outcome)
	cmd.Printf("Message: %s\n", res.Message)
	if res.StatusCode != 0 {
		cmd.Printf("Status: %d\n", res.StatusCode)
	}
	cmd.Printf("Duration: %s\n", res.Duration.Round(time.Millisecond))
	cmd.Println(rule)

	if !res.Success {
		return &ExitError{Code: ExitFailure, Reason: "submission failed: " + res.Message}
	}
	return nil
}
