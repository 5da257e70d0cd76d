// Package version holds build metadata injected through ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/soyeahso/plugkit/internal/version.Version=1.0.0
//	  -X github.com/soyeahso/plugkit/internal/version.Commit=abc123
//	  -X github.com/soyeahso/plugkit/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("plugkit %s (commit: %s, built: %s, %s/%s)",
		Version, short(Commit), Date, runtime.GOOS, runtime.GOARCH)
}

// Generator identifies plugkit in generated files, e.g. "plugkit 1.0.0 (abc1234)".
func Generator() string {
	if Commit == "unknown" || Commit == "" {
		return "plugkit " + Version
	}
	return fmt.Sprintf("plugkit %s (%s)", Version, short(Commit))
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
