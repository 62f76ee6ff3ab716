// Package version exposes the build version of the urlindex binary.
package version

import (
	"github.com/Masterminds/semver/v3"
)

// devVersion is reported when the build did not inject a valid version.
const devVersion = "0.0.0-dev"

// version is set at build time via
// -ldflags "-X github.com/rshade/urlindex/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Overwritten by the linker.
var version = ""

// GetVersion returns the semver-normalised build version without a leading "v".
// Unparseable or empty build versions are reported as "0.0.0-dev".
func GetVersion() string {
	return normalize(version)
}

// UserAgent returns the User-Agent header value sent to the indexing backend.
func UserAgent() string {
	return "urlindex/" + GetVersion()
}

func normalize(raw string) string {
	if raw == "" {
		return devVersion
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return devVersion
	}
	return v.String()
}
