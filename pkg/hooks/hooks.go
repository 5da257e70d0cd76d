// Package hooks provides the in-process action and filter dispatcher that
// plugin loaders commit their bindings to.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/soyeahso/plugkit/pkg/loader"
	"github.com/soyeahso/plugkit/pkg/logging"
)

// Hook names fired by the plugin core.
const (
	HookInit          = "init"
	HookPluginsLoaded = "plugins_loaded"
	HookShutdown      = "shutdown"
)

// ActivateHook returns the action fired when the plugin with slug is activated.
func ActivateHook(slug string) string { return "activate_" + slug }

// DeactivateHook returns the action fired when the plugin with slug is deactivated.
func DeactivateHook(slug string) string { return "deactivate_" + slug }

// ErrInvalidHandler is returned when a registration has no name or no callback.
var ErrInvalidHandler = errors.New("invalid handler")

// Manager stores registered handlers and dispatches actions and filters.
// It is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	actions map[string][]entry
	filters map[string][]entry
	fired   map[string]int
	seq     uint64
	log     *logging.Logger
}

type entry struct {
	id           string
	seq          uint64
	cb           loader.Callback
	priority     int
	acceptedArgs int
}

var _ loader.Dispatcher = (*Manager)(nil)

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		actions: make(map[string][]entry),
		filters: make(map[string][]entry),
		fired:   make(map[string]int),
		log:     log.Sub("hooks"),
	}
}

// RegisterAction adds an action handler.
func (m *Manager) RegisterAction(name string, cb loader.Callback, priority, acceptedArgs int) error {
	_, err := m.add(m.actions, loader.KindAction, name, cb, priority, acceptedArgs)
	return err
}

// RegisterFilter adds a filter handler.
func (m *Manager) RegisterFilter(name string, cb loader.Callback, priority, acceptedArgs int) error {
	_, err := m.add(m.filters, loader.KindFilter, name, cb, priority, acceptedArgs)
	return err
}

// AddAction registers an action handler and returns its registration ID
// for later removal.
func (m *Manager) AddAction(name string, cb loader.Callback, priority, acceptedArgs int) (string, error) {
	return m.add(m.actions, loader.KindAction, name, cb, priority, acceptedArgs)
}

// AddFilter registers a filter handler and returns its registration ID.
func (m *Manager) AddFilter(name string, cb loader.Callback, priority, acceptedArgs int) (string, error) {
	return m.add(m.filters, loader.KindFilter, name, cb, priority, acceptedArgs)
}

func (m *Manager) add(table map[string][]entry, kind loader.Kind, name string, cb loader.Callback, priority, acceptedArgs int) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty %s name", ErrInvalidHandler, kind)
	}
	if cb == nil {
		return "", fmt.Errorf("%w: nil callback for %s %q", ErrInvalidHandler, kind, name)
	}
	if acceptedArgs < 0 {
		acceptedArgs = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	e := entry{
		id:           uuid.NewString(),
		seq:          m.seq,
		cb:           cb,
		priority:     priority,
		acceptedArgs: acceptedArgs,
	}

	// Keep the slice ordered by priority; equal priorities stay in
	// registration order because seq only grows.
	list := append(table[name], e)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].seq < list[j].seq
	})
	table[name] = list

	m.log.Debug().
		Str("kind", kind.String()).
		Str("hook", name).
		Str("id", e.id).
		Int("priority", priority).
		Msg("hook registered")
	return e.id, nil
}

// RemoveAction removes the action registration with the given ID.
// It reports whether anything was removed.
func (m *Manager) RemoveAction(name, id string) bool {
	return m.remove(m.actions, name, id)
}

// RemoveFilter removes the filter registration with the given ID.
func (m *Manager) RemoveFilter(name, id string) bool {
	return m.remove(m.filters, name, id)
}

func (m *Manager) remove(table map[string][]entry, name, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := table[name]
	filtered := make([]entry, 0, len(list))
	for _, e := range list {
		if e.id != id {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == len(list) {
		return false
	}
	if len(filtered) == 0 {
		delete(table, name)
	} else {
		table[name] = filtered
	}
	return true
}

func (m *Manager) snapshot(table map[string][]entry, name string) []entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entry, len(table[name]))
	copy(out, table[name])
	return out
}

// DoAction runs the action handlers for name synchronously in priority
// order. Handler errors are logged and do not stop later handlers.
// It returns the number of handlers run.
func (m *Manager) DoAction(ctx context.Context, name string, args ...any) int {
	handlers := m.snapshot(m.actions, name)

	m.mu.Lock()
	m.fired[name]++
	m.mu.Unlock()

	for _, h := range handlers {
		if _, err := h.cb(ctx, trim(args, h.acceptedArgs)...); err != nil {
			m.log.Warn().
				Err(err).
				Str("hook", name).
				Str("id", h.id).
				Msg("action handler error")
		}
	}
	return len(handlers)
}

// DoActionAsync runs the action handlers for name concurrently and
// returns immediately; handler errors are logged.
func (m *Manager) DoActionAsync(ctx context.Context, name string, args ...any) {
	handlers := m.snapshot(m.actions, name)

	m.mu.Lock()
	m.fired[name]++
	m.mu.Unlock()

	for _, h := range handlers {
		go func(h entry) {
			if _, err := h.cb(ctx, trim(args, h.acceptedArgs)...); err != nil {
				m.log.Warn().
					Err(err).
					Str("hook", name).
					Str("id", h.id).
					Msg("async action handler error")
			}
		}(h)
	}
}

// ApplyFilters threads value through the filter handlers for name in
// priority order. The value is always the first argument a handler sees
// and counts toward its accepted args. The first handler error aborts.
func (m *Manager) ApplyFilters(ctx context.Context, name string, value any, args ...any) (any, error) {
	handlers := m.snapshot(m.filters, name)

	for _, h := range handlers {
		all := append([]any{value}, args...)
		out, err := h.cb(ctx, trim(all, max(h.acceptedArgs, 1))...)
		if err != nil {
			return value, fmt.Errorf("filter %q: %w", name, err)
		}
		value = out
	}
	return value, nil
}

func trim(args []any, n int) []any {
	if n >= len(args) {
		return args
	}
	return args[:n]
}

// Count returns the number of handlers registered for name of the given kind.
func (m *Manager) Count(kind loader.Kind, name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if kind == loader.KindFilter {
		return len(m.filters[name])
	}
	return len(m.actions[name])
}

// Did returns how many times the action name has been fired.
func (m *Manager) Did(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fired[name]
}

// Events returns the sorted hook names that have at least one action or
// filter handler registered.
func (m *Manager) Events() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool, len(m.actions)+len(m.filters))
	for name, list := range m.actions {
		if len(list) > 0 {
			seen[name] = true
		}
	}
	for name, list := range m.filters {
		if len(list) > 0 {
			seen[name] = true
		}
	}

	events := make([]string, 0, len(seen))
	for name := range seen {
		events = append(events, name)
	}
	sort.Strings(events)
	return events
}
