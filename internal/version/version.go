package version

import (
	"runtime"
	"runtime/debug"
)

// Set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build description printed by `streak version --json` and
// served on /health.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Get returns the current build description.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date, Go: runtime.Version()}
}

func Full() string {
	return Version + " (" + Commit + ") " + Date
}

func Short() string {
	return Version
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	backfillFromBuildInfo(info)
}

// backfillFromBuildInfo fills whichever of Version, Commit and Date still
// hold their ldflags defaults, so `go install` builds report real values.
func backfillFromBuildInfo(info *debug.BuildInfo) {
	if info == nil {
		return
	}

	// "(devel)" is an untagged build; keep "dev".
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" && len(s.Value) >= 7 {
				Commit = s.Value[:7]
			} else if Commit == "none" && s.Value != "" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == "unknown" && s.Value != "" {
				Date = s.Value
			}
		}
	}
}
