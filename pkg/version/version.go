// pkg/version/version.go
// Package version provides version metadata for the application.
package version

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the current version of penkit.
	Version = "dev"
	// Commit holds the current version commit of penkit.
	Commit = "none"
	// BuildDate holds the build date of penkit.
	BuildDate = "unknown"
	// StartDate holds the start date of penkit.
	StartDate = time.Now()
)

// Struct returns version information in a structured format.
type Struct struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("PenKit %s (commit: %s, date: %s)", Version, Commit, BuildDate)
}

// Get returns version information as a Struct.
func Get() Struct {
	return Struct{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}
}

// canonical normalizes a version string to the "vX.Y.Z" form semver expects.
// Development builds ("dev", empty) have no canonical form and return "".
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == "dev" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// AtLeast reports whether the running build satisfies the given minimum
// version. Development builds satisfy every minimum so locally built
// binaries can load any manifest.
func AtLeast(minimum string) bool {
	minV := canonical(minimum)
	if minV == "" {
		return true
	}
	curV := canonical(Version)
	if curV == "" {
		return true
	}
	return semver.Compare(curV, minV) >= 0
}

// IsPrerelease reports whether the running build carries a prerelease tag.
func IsPrerelease() bool {
	v := canonical(Version)
	if v == "" {
		return true
	}
	return semver.Prerelease(v) != ""
}
