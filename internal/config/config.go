package config

import (
	"fmt"
	"path/filepath"

	"github.com/soyeahso/plugkit/pkg/plugin"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Plugin: PluginConfig{
			Version:    "1.0.0",
			License:    "GPL-2.0+",
			LicenseURI: "http://www.gnu.org/licenses/gpl-2.0.txt",
			DomainPath: "/languages",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// Options converts the plugin section into plugin.Options. The text
// domain defaults to the slug.
func (p PluginConfig) Options() plugin.Options {
	domain := p.TextDomain
	if domain == "" {
		domain = p.Slug
	}
	return plugin.Options{
		Slug:       p.Slug,
		Name:       p.Name,
		Version:    p.Version,
		TextDomain: domain,
		Dir:        p.Dir,
		URL:        p.URL,
	}
}

// LanguagesDir returns the directory translation catalogs live in.
func (p PluginConfig) LanguagesDir() string {
	return filepath.Join(p.Dir, filepath.FromSlash(p.DomainPath))
}
