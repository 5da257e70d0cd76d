package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandLocations lets author details and filesystem locations reference
// the environment, e.g. dir: ${HOME}/src/my-plugin.
func expandLocations(cfg *Config) {
	p := &cfg.Plugin
	p.Author = expandEnvVars(p.Author)
	p.AuthorURI = expandEnvVars(p.AuthorURI)
	p.URI = expandEnvVars(p.URI)
	p.Dir = expandEnvVars(p.Dir)
	p.URL = expandEnvVars(p.URL)
	cfg.Scaffold.Template = expandEnvVars(cfg.Scaffold.Template)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandLocations(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Plugin.Version == "" {
		cfg.Plugin.Version = "1.0.0"
	}
	if cfg.Plugin.DomainPath == "" {
		cfg.Plugin.DomainPath = "/languages"
	}
	if cfg.Plugin.TextDomain == "" {
		cfg.Plugin.TextDomain = cfg.Plugin.Slug
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads PLUGKIT_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PLUGKIT_PLUGIN_SLUG"); v != "" {
		cfg.Plugin.Slug = v
	}
	if v := os.Getenv("PLUGKIT_PLUGIN_VERSION"); v != "" {
		cfg.Plugin.Version = v
	}
	if v := os.Getenv("PLUGKIT_PLUGIN_DIR"); v != "" {
		cfg.Plugin.Dir = v
	}
	if v := os.Getenv("PLUGKIT_HOOKS_DEFAULT_PRIORITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Hooks.DefaultPriority = &n
		}
	}
	if v := os.Getenv("PLUGKIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
