package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/urlindex/internal/config"
)

// NewConfigValidateCmd creates the config validate command.
func NewConfigValidateCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Long: `Loads the configuration from defaults, the config file, .env and URLINDEX_*
environment variables, checks it and prints the result with the token masked.`,
		Example: `  urlindex config validate
  URLINDEX_AUTH_TOKEN=abc123 urlindex config validate --quiet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config(config.Overrides{})
			if err != nil {
				return setupError("loading configuration", err)
			}
			if err := cfg.Validate(); err != nil {
				return setupError("configuration validation failed", err)
			}

			cmd.Println("Configuration is valid")
			if quiet {
				return nil
			}

			data, err := cfg.Redacted().YAML()
			if err != nil {
				return err
			}
			cmd.Println()
			cmd.Print(string(data))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report whether the configuration is valid")

	return cmd
}
