// Package version carries the build identity stamped in by the linker.
package version

import "fmt"

var (
	// Version is the release version, overridden at build time.
	Version = "dev"
	// GitSHA is the git commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String formats the build identity for -version output.
func String() string {
	return fmt.Sprintf("coolant %s (%s, built %s)", Version, GitSHA, BuildTime)
}
