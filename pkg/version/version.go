// Package version holds build-time version information, injected via ldflags.
package version

var (
	// Version is the semver of this build, e.g. v1.2.3.
	Version = "dev"
	// GitCommit is the git commit hash of this build.
	GitCommit = ""
)
