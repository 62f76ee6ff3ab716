// Command urlindex submits URLs from a CSV file to an indexing API.
package main

import (
	"context"
	"os"

	"github.com/rshade/urlindex/internal/cli"
	"github.com/rshade/urlindex/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	return extractExitCode(cli.Execute(context.Background(), version.GetVersion()))
}

// extractExitCode maps a command error to the process exit code. Errors
// carrying a *cli.ExitError use its code; any other error exits 1.
func extractExitCode(err error) int {
	return cli.ExitCode(err)
}
