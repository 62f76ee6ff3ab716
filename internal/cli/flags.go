package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/urlindex/internal/config"
)

// apiFlags are the backend flags shared by run and test-url.
type apiFlags struct {
	url      string
	widgetID string
	token    string
}

func (f *apiFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "api-url", "", "indexing API endpoint (overrides api.url)")
	cmd.Flags().StringVar(&f.widgetID, "widget-id", "", "widget ID sent with every URL (overrides api.widget_id)")
	cmd.Flags().StringVar(&f.token, "token", "", "bearer token (overrides api.auth_token; prefer URLINDEX_AUTH_TOKEN)")
}

// apply sets the overrides for the flags the user actually passed.
func (f *apiFlags) apply(cmd *cobra.Command, o *config.Overrides) {
	if cmd.Flags().Changed("api-url") {
		o.APIURL = &f.url
	}
	if cmd.Flags().Changed("widget-id") {
		o.WidgetID = &f.widgetID
	}
	if cmd.Flags().Changed("token") {
		o.AuthToken = &f.token
	}
}
