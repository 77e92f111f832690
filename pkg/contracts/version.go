package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	// Version is the current version of the application
	Version = "1.0.0"

	// OutputFormatVersion is bumped whenever a CSV layout changes
	OutputFormatVersion = "v1"
)

// GitCommit may be set with -ldflags; otherwise the VCS revision recorded
// by the Go toolchain is used
var GitCommit = ""

// GetVersionString returns the program name and version
func GetVersionString() string {
	return fmt.Sprintf("sessionreports v%s", Version)
}

// GetFullVersionString adds the commit, toolchain, platform and CSV layout
// version
func GetFullVersionString() string {
	return fmt.Sprintf("%s (commit: %s, go: %s, os: %s/%s, output: %s)",
		GetVersionString(),
		commit(debug.ReadBuildInfo),
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
		OutputFormatVersion,
	)
}

// commit resolves the revision to print, shortened to 12 characters
func commit(readBuildInfo func() (*debug.BuildInfo, bool)) string {
	rev := GitCommit
	if rev == "" {
		if info, ok := readBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					rev = s.Value
				}
			}
		}
	}
	if rev == "" {
		return "unknown"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev
}
