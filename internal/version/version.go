package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns a single-line version banner for tool startup logs.
func String() string {
	return fmt.Sprintf("robolink %s (%s, built %s)", Version, GitSHA, BuildTime)
}
