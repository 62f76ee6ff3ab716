package cli

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/urlindex/internal/config"
)

// NewConfigInitCmd creates the config init command for writing a starter configuration.
func NewConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Writes a starter configuration file with the defaults and placeholder API
settings, readable only by the current user. The file and .env are added to the
.gitignore in the same directory since they hold the bearer token.`,
		Example: `  # Create urlindex.yaml in the working directory
  urlindex config init

  # Write to a different file, overwriting it
  urlindex config init --config ./configs/prod.yaml --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.opts.configPath
			if path == "" {
				path = config.DefaultConfigFile
			}

			if err := config.WriteDefault(path, force); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					return setupError(path, err)
				}
				return setupError("failed to save configuration", err)
			}

			dir := filepath.Dir(path)
			added, err := config.EnsureGitignore(dir, config.DefaultDotEnvFile, filepath.Base(path))
			if err != nil {
				return setupError("failed to update .gitignore", err)
			}

			cmd.Printf("Configuration initialized at %s\n", path)
			if len(added) > 0 {
				cmd.Printf("Added %v to %s\n", added, filepath.Join(dir, ".gitignore"))
			}
			cmd.Println("Set api.url, api.widget_id and api.auth_token, then run 'urlindex config validate'.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}
