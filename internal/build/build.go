// Package build carries version metadata stamped at build time.
package build

import "fmt"

// Set via -ldflags at release build time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// String returns a single human-readable build info string.
func String() string {
	return fmt.Sprintf("mailroom %s (commit %s, built %s)", Version, CommitSHA, BuildDate)
}
