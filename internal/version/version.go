package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/MrSnakeDoc/navspec/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// String formats the build info on one line.
func String() string {
	return fmt.Sprintf("navspec %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
