// Package version exposes build-time version information.
// The variables are overridden at link time:
//
//	go build -ldflags "-X github.com/kokoro-app/kokoro/common/version.Version=v0.3.0"
package version

var (
	// Version is the semantic version of this build.
	Version = "dev"
	// GitCommit is the short commit hash the binary was built from.
	GitCommit = "unknown"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)
