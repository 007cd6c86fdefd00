// Package version exposes the build version stamped in via ldflags.
package version

// version is overridden at build time with
// -ldflags "-X github.com/bkyoung/issuegraph/internal/version.version=v1.2.3".
var version = "dev"

// Value returns the version string for this build.
func Value() string {
	return version
}
