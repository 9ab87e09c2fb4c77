package contracts

import (
	"fmt"
	"runtime"
)

// Version is the application version
const Version = "0.3.0"

// Build metadata, set with -ldflags "-X trendpulse/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// GetFullVersionString returns the line printed by trendpulse --version
func GetFullVersionString() string {
	return fmt.Sprintf("%s (built %s, commit %s, %s %s/%s)",
		Version, BuildTime, GitCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
