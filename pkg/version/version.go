package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags "-X github.com/highbelief/solar-monitor-go/pkg/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// ServiceName is reported by /health and the status endpoint
const ServiceName = "solar-monitor-go"

// BuildInfo contains all build-related information
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// GetVersion returns the release version, or dev-<short commit> for local builds
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if GitCommit == "" || GitCommit == "unknown" {
		return "dev-unknown"
	}
	if len(GitCommit) > 8 {
		return "dev-" + GitCommit[:8]
	}
	return "dev-" + GitCommit
}

// GetFullVersion returns a detailed version string
func GetFullVersion() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		ServiceName, GetVersion(), GitCommit, BuildDate, GoVersion)
}

// GetBuildInfo returns all build information
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Service:   ServiceName,
		Version:   GetVersion(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
	}
}
