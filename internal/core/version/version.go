// Package version reports build metadata stamped with -ldflags, e.g.
//
//	-X enscheck/internal/core/version.version=v0.1.0 -X enscheck/internal/core/version.commit=abcd
package version

import "runtime/debug"

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// BuildInfo is the build metadata served by /meta/version
type BuildInfo struct {
	Service string `json:"service" example:"enscheck"`
	Version string `json:"version" example:"v0.1.0"`
	Commit  string `json:"commit"  example:"3f2a9c1"`
	Date    string `json:"date"    example:"2026-01-03T12:00:00Z"`
}

// Info returns the stamped values. Unstamped commit and date fall back to
// the vcs settings the go toolchain embeds, then to "none" and "unknown"
func Info() BuildInfo {
	c, d := commit, date
	if c == "" || d == "" {
		vc, vd := vcs()
		c, d = or(c, vc, "none"), or(d, vd, "unknown")
	}
	return BuildInfo{Service: "enscheck", Version: version, Commit: c, Date: d}
}

func vcs() (rev, at string) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.time":
			at = s.Value
		}
	}
	return rev, at
}

func or(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
