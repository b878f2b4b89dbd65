// Package version reports which ded build is running.
//
// Release builds inject the values below via -ldflags. Binaries built with
// "go install github.com/hupe1980/ded/cmd/ded@<version>" carry no ldflags, so
// the module version and VCS stamp recorded by the Go toolchain are used
// instead.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time values injected via -ldflags.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetInfo returns the current build information.
func GetInfo() Info {
	bi, _ := debug.ReadBuildInfo()

	return resolve(version, gitCommit, buildDate, bi)
}

// resolve fills values that were not injected at link time from bi.
func resolve(ver, commit, date string, bi *debug.BuildInfo) Info {
	if bi != nil {
		if ver == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			ver = bi.Main.Version
		}

		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "none" {
					commit = s.Value
				}
			case "vcs.time":
				if date == "unknown" {
					date = s.Value
				}
			}
		}
	}

	return Info{
		Version:   ver,
		GitCommit: shortCommit(commit),
		BuildDate: date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a single line such as
// "ded version v0.3.0 (commit 1a2b3c4, built 2026-01-02T15:04:05Z, go1.25.6 linux/amd64)".
func (i Info) String() string {
	return fmt.Sprintf("ded version %s (commit %s, built %s, %s %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// JSON returns the version info as indented JSON.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}

	return string(data), nil
}

// shortCommit truncates a commit SHA to 7 characters.
func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}

	return commit
}
