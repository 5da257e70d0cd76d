package config

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/soyeahso/plugkit/pkg/logging"
	"github.com/soyeahso/plugkit/pkg/plugin"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.-]+)?$`)

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Plugin validation
	if cfg.Plugin.Slug == "" {
		issues = append(issues, ValidationIssue{
			Path:    "plugin.slug",
			Message: "slug is required",
		})
	} else if !plugin.ValidSlug(cfg.Plugin.Slug) {
		issues = append(issues, ValidationIssue{
			Path:    "plugin.slug",
			Message: fmt.Sprintf("must be lowercase words separated by dashes, got %q", cfg.Plugin.Slug),
		})
	}

	if !versionPattern.MatchString(cfg.Plugin.Version) {
		issues = append(issues, ValidationIssue{
			Path:    "plugin.version",
			Message: fmt.Sprintf("must be a semantic version, got %q", cfg.Plugin.Version),
		})
	}

	// Hooks validation
	if n := cfg.Hooks.DefaultAcceptedArgs; n != nil && *n < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "hooks.defaultAcceptedArgs",
			Message: fmt.Sprintf("must be >= 0, got %d", *n),
		})
	}

	// Logging validation
	if cfg.Logging.Level != "" && !logging.ValidLevel(cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("unknown level %q", cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "compact", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}
