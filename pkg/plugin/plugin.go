// Package plugin provides the plugin core object, its activation
// lifecycle, and a registry for running several plugins against one
// dispatcher.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/soyeahso/plugkit/pkg/loader"
	"github.com/soyeahso/plugkit/pkg/logging"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a lowercase, dash-separated identifier.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Options carries the values a plugin needs at construction time.
type Options struct {
	Slug       string // unique identifier, e.g. "my-plugin"
	Name       string // display name
	Version    string
	TextDomain string
	Dir        string // plugin root on disk
	URL        string // public base URL of the plugin assets
}

// Validate checks the fields New depends on.
func (o Options) Validate() error {
	if !ValidSlug(o.Slug) {
		return fmt.Errorf("invalid plugin slug %q", o.Slug)
	}
	if o.Version == "" {
		return errors.New("plugin version is required")
	}
	return nil
}

// Component declares hook bindings on a plugin's loader.
type Component interface {
	DefineHooks(l *loader.Loader) error
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(l *loader.Loader) error

func (f ComponentFunc) DefineHooks(l *loader.Loader) error { return f(l) }

// Lifecycle holds the code run when a plugin is activated or deactivated.
// Nil functions are no-ops.
type Lifecycle struct {
	Activator   func(ctx context.Context) error
	Deactivator func(ctx context.Context) error
}

// Definition is everything New needs to build a Plugin.
type Definition struct {
	Options   Options
	Defaults  *loader.Defaults // nil means loader.StockDefaults
	Admin     []Component
	Public    []Component
	Lifecycle Lifecycle
}

// Plugin owns a loader populated from its admin and public components.
type Plugin struct {
	opts      Options
	loader    *loader.Loader
	lifecycle Lifecycle
	log       *logging.Logger
}

// New validates the options, creates the loader and lets every admin
// component, then every public component, declare its hooks. No binding
// is live until Run.
func New(def Definition, log *logging.Logger) (*Plugin, error) {
	if err := def.Options.Validate(); err != nil {
		return nil, err
	}

	defaults := loader.StockDefaults()
	if def.Defaults != nil {
		defaults = *def.Defaults
	}

	plog := log.Sub("plugin").With("plugin", def.Options.Slug)
	p := &Plugin{
		opts:      def.Options,
		loader:    loader.New(defaults, plog),
		lifecycle: def.Lifecycle,
		log:       plog,
	}

	if err := p.define("admin", def.Admin); err != nil {
		return nil, err
	}
	if err := p.define("public", def.Public); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plugin) define(area string, components []Component) error {
	for i, c := range components {
		if err := c.DefineHooks(p.loader); err != nil {
			return fmt.Errorf("define %s hooks (component %d) for %s: %w", area, i, p.opts.Slug, err)
		}
	}
	return nil
}

// Run commits every recorded binding to d.
func (p *Plugin) Run(d loader.Dispatcher) error {
	p.log.Info().Str("version", p.opts.Version).Msg("running plugin")
	return p.loader.Run(d)
}

// Activate runs the activator, if any.
func (p *Plugin) Activate(ctx context.Context) error {
	if p.lifecycle.Activator == nil {
		return nil
	}
	if err := p.lifecycle.Activator(ctx); err != nil {
		return fmt.Errorf("activate %s: %w", p.opts.Slug, err)
	}
	return nil
}

// Deactivate runs the deactivator, if any.
func (p *Plugin) Deactivate(ctx context.Context) error {
	if p.lifecycle.Deactivator == nil {
		return nil
	}
	if err := p.lifecycle.Deactivator(ctx); err != nil {
		return fmt.Errorf("deactivate %s: %w", p.opts.Slug, err)
	}
	return nil
}

// Name returns the slug that uniquely identifies the plugin.
func (p *Plugin) Name() string { return p.opts.Slug }

// Title returns the display name, falling back to the slug.
func (p *Plugin) Title() string {
	if p.opts.Name != "" {
		return p.opts.Name
	}
	return p.opts.Slug
}

func (p *Plugin) Version() string { return p.opts.Version }
func (p *Plugin) Options() Options { return p.opts }
func (p *Plugin) Loader() *loader.Loader { return p.loader }
