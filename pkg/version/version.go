// Package version exposes build metadata injected at link time.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const productName = "pagesel"

//nolint:gochecknoglobals // Set via -ldflags at build time.
var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the semantic version of the binary.
func GetVersion() string {
	return version
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

// Parse parses a version string, accepting an optional leading "v".
func Parse(v string) (*semver.Version, error) {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", v, err)
	}
	return parsed, nil
}

// IsDevelopment reports whether v is a pre-release or unparsable build.
func IsDevelopment(v string) bool {
	parsed, err := Parse(v)
	if err != nil {
		return true
	}
	return parsed.Prerelease() != ""
}

// UserAgentToken returns the product token sent to the collection API,
// e.g. "pagesel/1.2.0".
func UserAgentToken(v string) string {
	parsed, err := Parse(v)
	if err != nil {
		return productName + "/unknown"
	}
	return productName + "/" + parsed.String()
}

// Template renders the output of --version.
func Template() string {
	return fmt.Sprintf("{{.Name}} version {{.Version}} (commit %s, built %s)\n", GetGitCommit(), GetBuildDate())
}
