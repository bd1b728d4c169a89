// Package version carries build-time version information.
package version

import "fmt"

// Info holds values injected via ldflags at build time.
type Info struct {
	Version   string // semantic version from git tags
	GitCommit string // short commit hash
	BuildTime string // RFC3339 build timestamp
}

// String formats the info for the -version flag.
func (i Info) String() string {
	version := i.Version
	if version == "" {
		version = "dev"
	}
	commit := i.GitCommit
	if commit == "" {
		commit = "unknown"
	}
	built := i.BuildTime
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, built)
}
