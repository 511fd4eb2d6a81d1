// Package version exposes the build version of the pitchclip binaries.
package version

// Version is the semantic version of the build. Overridden at release time
// via -ldflags "-X github.com/trackside-data/pitchclip/internal/version.Version=...".
var Version = "0.1.0-dev"
