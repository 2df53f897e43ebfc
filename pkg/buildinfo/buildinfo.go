// Package buildinfo exposes version information stamped at build time.
package buildinfo

import "runtime"

// These vars are set at build time via ldflags:
// -X github.com/igorlobovc/claimsift/pkg/buildinfo.Version=v0.3.1
// -X github.com/igorlobovc/claimsift/pkg/buildinfo.Commit=b806fe7
// -X github.com/igorlobovc/claimsift/pkg/buildinfo.BuildTime=2026-08-14T10:30:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds the binary's build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the binary's build info.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a human-readable one-liner like "v0.3.1 (b806fe7, 2026-08-14T10:30:00Z)"
func String() string {
	return Version + " (" + Commit + ", " + BuildTime + ")"
}
