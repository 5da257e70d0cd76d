package config

import "github.com/soyeahso/plugkit/pkg/loader"

// Config is the root configuration for plugkit.
type Config struct {
	Plugin   PluginConfig   `yaml:"plugin,omitempty"`
	Hooks    HooksConfig    `yaml:"hooks,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Scaffold ScaffoldConfig `yaml:"scaffold,omitempty"`
}

// PluginConfig holds the plugin metadata and construction options.
type PluginConfig struct {
	Name        string `yaml:"name,omitempty"`
	Slug        string `yaml:"slug,omitempty"`
	URI         string `yaml:"uri,omitempty"`
	Description string `yaml:"description,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Author      string `yaml:"author,omitempty"`
	AuthorURI   string `yaml:"authorUri,omitempty"`
	License     string `yaml:"license,omitempty"`
	LicenseURI  string `yaml:"licenseUri,omitempty"`
	TextDomain  string `yaml:"textDomain,omitempty"`
	DomainPath  string `yaml:"domainPath,omitempty"` // relative to dir, e.g. "/languages"
	Namespace   string `yaml:"namespace,omitempty"`
	Package     string `yaml:"package,omitempty"`
	Dir         string `yaml:"dir,omitempty"`
	URL         string `yaml:"url,omitempty"`
}

// HooksConfig sets the loader defaults. Pointers distinguish "unset"
// from an explicit zero.
type HooksConfig struct {
	DefaultPriority     *int `yaml:"defaultPriority,omitempty"`
	DefaultAcceptedArgs *int `yaml:"defaultAcceptedArgs,omitempty"`
}

// LoaderDefaults resolves the configured defaults, falling back to
// loader.StockDefaults for unset fields.
func (h HooksConfig) LoaderDefaults() loader.Defaults {
	d := loader.StockDefaults()
	if h.DefaultPriority != nil {
		d.Priority = *h.DefaultPriority
	}
	if h.DefaultAcceptedArgs != nil {
		d.AcceptedArgs = *h.DefaultAcceptedArgs
	}
	return d
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// ScaffoldConfig controls `plugkit new`.
type ScaffoldConfig struct {
	Template string `yaml:"template,omitempty"` // template directory; empty uses the built-in template
	Force    bool   `yaml:"force,omitempty"`    // overwrite existing files
}
