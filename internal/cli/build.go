package cli

import (
	"fmt"
	"strings"

	"github.com/soyeahso/plugkit/internal/config"
	"github.com/soyeahso/plugkit/pkg/logging"
	"github.com/soyeahso/plugkit/pkg/plugin"
)

// buildPlugin constructs the configured plugin with its built-in components.
func buildPlugin(cfg config.Config, log *logging.Logger) (*plugin.Plugin, *plugin.I18n, error) {
	if issues := config.Validate(&cfg); len(issues) > 0 {
		msgs := make([]string, len(issues))
		for i, issue := range issues {
			msgs[i] = issue.String()
		}
		return nil, nil, &config.ConfigError{Message: "invalid config: " + strings.Join(msgs, "; ")}
	}

	opts := cfg.Plugin.Options()
	i18n := plugin.NewI18n(opts.TextDomain, cfg.Plugin.LanguagesDir(), log)

	defaults := cfg.Hooks.LoaderDefaults()
	p, err := plugin.New(plugin.Definition{
		Options:  opts,
		Defaults: &defaults,
		Public:   []plugin.Component{i18n},
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("building plugin: %w", err)
	}
	return p, i18n, nil
}
