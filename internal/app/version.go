package app

import "fmt"

// Build metadata, stamped via ldflags:
//
//	go build -ldflags "-X github.com/snappword/snappword-backend/internal/app.Version=1.4.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion is what the startup log and /api/health report.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
