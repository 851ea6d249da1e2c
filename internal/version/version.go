// Package version holds build information for wordsmith.
package version

import "runtime"

// Overridden at build time:
// go build -ldflags "-X wordsmith/internal/version.Version=1.2.0 -X wordsmith/internal/version.Commit=$(git rev-parse HEAD)"
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Build is the structured form of the build information
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

// Current returns the build information of the running binary
func Current() Build {
	return Build{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// Short returns the version with an abbreviated commit when one is known
func Short() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns multi-line version information for --version
func Full() string {
	b := Current()
	return "wordsmith " + b.Version + "\n" +
		"commit: " + b.Commit + "\n" +
		"built:  " + b.BuildDate + "\n" +
		"go:     " + b.GoVersion
}
