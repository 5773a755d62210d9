// Package buildinfo exposes build-time version metadata for the adw binary.
//
// The package-level variables are overridden at build time via ldflags:
//
//	go build -ldflags "-X github.com/AbdelazizMoustafa10m/adw/internal/buildinfo.Version=1.0.0"
package buildinfo

import "fmt"

// Version is the semantic version of the build. Defaults to "dev".
var Version = "dev"

// Commit is the short git commit SHA of the build. Defaults to "unknown".
var Commit = "unknown"

// Date is the RFC3339 build timestamp. Defaults to "unknown".
var Date = "unknown"

// Info holds structured build information suitable for JSON serialization.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// GetInfo returns the current build information as a structured type.
func GetInfo() Info {
	return Info{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
	}
}

// String returns a human-readable version string.
// Example: "adw v1.0.0 (commit: a1b2c3d, built: 2026-02-17T10:00:00Z)"
func (i Info) String() string {
	return fmt.Sprintf("adw v%s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}
