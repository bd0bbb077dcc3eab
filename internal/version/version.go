// Package version reports build information for git-switch.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build information set at compile time via ldflags.
var (
	// Version is the semantic version of the application.
	Version = "dev"
	// Commit is the git commit SHA.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// Info contains all version information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current version information. Builds without ldflags, such
// as `go install`, fall back to the module version and VCS stamps embedded
// by the toolchain.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}
	return info
}

func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = shortCommit(s.Value)
			}
		case "vcs.time":
			if info.Date == "unknown" && s.Value != "" {
				info.Date = s.Value
			}
		}
	}
}

func shortCommit(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

// String returns a formatted version string.
func (i Info) String() string {
	return fmt.Sprintf("git-switch %s (%s) built on %s with %s for %s",
		i.Version, i.Commit, i.Date, i.GoVersion, i.Platform)
}

// Short returns a short version string.
func (i Info) Short() string {
	return fmt.Sprintf("git-switch %s", i.Version)
}
