// Package version carries the build identity of the uilogstat binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X" at release build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	vcsRevision = "vcs.revision"
	vcsTime     = "vcs.time"
	shortHash   = 12
)

// InitBinaryVersion fills unset fields from the module build info.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case vcsRevision:
			if Commit == "none" {
				Commit = s.Value[:min(shortHash, len(s.Value))]
			}
		case vcsTime:
			if Date == "unknown" {
				Date = s.Value
			}
		}
	}
}

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("uilogstat %s (commit: %s, built: %s)", Version, Commit, Date)
}
