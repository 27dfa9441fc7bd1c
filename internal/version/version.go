// Package version holds build metadata, overridable with
// -ldflags "-X github.com/aioracle/aioracle/internal/version.Version=...".
package version

// Version is the release version of the binaries.
var Version = "0.1.0"
