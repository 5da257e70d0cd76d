package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/soyeahso/plugkit/pkg/hooks"
	"github.com/soyeahso/plugkit/pkg/logging"
)

// ErrNotFound is returned for operations on an unregistered slug.
var ErrNotFound = errors.New("plugin not found")

// Registry manages plugin lifecycle against one hook manager.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]*Plugin
	order   []string // insertion order for deterministic lifecycle
	active  map[string]bool
	loaded  map[string]bool
	hooks   *hooks.Manager
	log     *logging.Logger
}

// NewRegistry creates a plugin registry.
func NewRegistry(hm *hooks.Manager, log *logging.Logger) *Registry {
	return &Registry{
		plugins: make(map[string]*Plugin),
		active:  make(map[string]bool),
		loaded:  make(map[string]bool),
		hooks:   hm,
		log:     log.Sub("plugins"),
	}
}

// Register adds a plugin without activating or running it.
func (r *Registry) Register(p *Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[p.Name()]; exists {
		return fmt.Errorf("plugin already registered: %s", p.Name())
	}

	r.plugins[p.Name()] = p
	r.order = append(r.order, p.Name())

	r.log.Info().
		Str("slug", p.Name()).
		Str("name", p.Title()).
		Str("version", p.Version()).
		Msg("plugin registered")
	return nil
}

// Activate runs the plugin's activator and fires activate_<slug>.
// Activating an active plugin does nothing.
func (r *Registry) Activate(ctx context.Context, slug string) error {
	r.mu.Lock()
	p, ok := r.plugins[slug]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	if r.active[slug] {
		r.mu.Unlock()
		return nil
	}
	// Claim the slot so a concurrent Activate does not run the activator too.
	r.active[slug] = true
	r.mu.Unlock()

	if err := p.Activate(ctx); err != nil {
		r.mu.Lock()
		delete(r.active, slug)
		r.mu.Unlock()
		return err
	}

	r.log.Info().Str("slug", slug).Msg("plugin activated")
	r.hooks.DoAction(ctx, hooks.ActivateHook(slug))
	return nil
}

// Deactivate runs the plugin's deactivator and fires deactivate_<slug>.
// Deactivating an inactive plugin does nothing. Bindings already committed
// to the hook manager stay registered.
func (r *Registry) Deactivate(ctx context.Context, slug string) error {
	r.mu.Lock()
	p, ok := r.plugins[slug]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	if !r.active[slug] {
		r.mu.Unlock()
		return nil
	}
	delete(r.active, slug)
	r.mu.Unlock()

	if err := p.Deactivate(ctx); err != nil {
		r.mu.Lock()
		r.active[slug] = true
		r.mu.Unlock()
		return err
	}

	r.log.Info().Str("slug", slug).Msg("plugin deactivated")
	r.hooks.DoAction(ctx, hooks.DeactivateHook(slug))
	return nil
}

// RunAll activates every plugin in registration order, commits each
// plugin's bindings once, then fires plugins_loaded and init.
func (r *Registry) RunAll(ctx context.Context) error {
	for _, slug := range r.List() {
		if err := r.Activate(ctx, slug); err != nil {
			return err
		}

		r.mu.Lock()
		p, loaded := r.plugins[slug], r.loaded[slug]
		r.loaded[slug] = true
		r.mu.Unlock()

		if loaded {
			continue
		}
		if err := p.Run(r.hooks); err != nil {
			return fmt.Errorf("run plugin %s: %w", slug, err)
		}
	}

	r.hooks.DoAction(ctx, hooks.HookPluginsLoaded)
	r.hooks.DoAction(ctx, hooks.HookInit)
	return nil
}

// DeactivateAll deactivates active plugins in reverse registration order,
// then fires shutdown. Deactivation errors are logged.
func (r *Registry) DeactivateAll(ctx context.Context) {
	slugs := r.List()
	for i := len(slugs) - 1; i >= 0; i-- {
		if err := r.Deactivate(ctx, slugs[i]); err != nil {
			r.log.Error().Err(err).Str("slug", slugs[i]).Msg("plugin deactivate error")
		}
	}
	r.hooks.DoAction(ctx, hooks.HookShutdown)
}

// Get returns a plugin by slug, or nil if not found.
func (r *Registry) Get(slug string) *Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plugins[slug]
}

// IsActive reports whether slug is currently active.
func (r *Registry) IsActive(slug string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active[slug]
}

// List returns all registered slugs in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// Info returns summary information about all registered plugins.
func (r *Registry) Info() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, slug := range r.order {
		p := r.plugins[slug]
		infos = append(infos, Info{
			Slug:    slug,
			Name:    p.Title(),
			Version: p.Version(),
			Active:  r.active[slug],
			Actions: len(p.Loader().Actions()),
			Filters: len(p.Loader().Filters()),
		})
	}
	return infos
}

// Info holds summary data about a plugin.
type Info struct {
	Slug    string `json:"slug" yaml:"slug"`
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Active  bool   `json:"active" yaml:"active"`
	Actions int    `json:"actions" yaml:"actions"`
	Filters int    `json:"filters" yaml:"filters"`
}
