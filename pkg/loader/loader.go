// Package loader collects hook bindings during plugin setup and commits
// them to a Dispatcher in one pass.
//
// Declaring every binding before any of them can fire means a handler
// registered late in setup never misses an event dispatched earlier in
// setup. A Loader is written and read by the goroutine that builds the
// owning plugin; it is not safe for concurrent use.
package loader

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/soyeahso/plugkit/pkg/logging"
)

// Dispatcher is the live event system bindings are committed to.
type Dispatcher interface {
	RegisterAction(name string, cb Callback, priority, acceptedArgs int) error
	RegisterFilter(name string, cb Callback, priority, acceptedArgs int) error
}

// Defaults supplies the priority and arity used when AddAction or
// AddFilter is called without options.
type Defaults struct {
	Priority     int
	AcceptedArgs int
}

// DefaultPriority and DefaultAcceptedArgs are the stock Defaults.
const (
	DefaultPriority     = 10
	DefaultAcceptedArgs = 1
)

// StockDefaults returns priority 10 and one accepted argument.
func StockDefaults() Defaults {
	return Defaults{Priority: DefaultPriority, AcceptedArgs: DefaultAcceptedArgs}
}

// Option overrides a Defaults value for a single binding.
type Option func(*Binding)

// WithPriority sets the binding priority. Lower runs earlier.
func WithPriority(p int) Option {
	return func(b *Binding) { b.Priority = p }
}

// WithAcceptedArgs sets how many positional arguments the dispatcher
// passes to the callback.
func WithAcceptedArgs(n int) Option {
	return func(b *Binding) { b.AcceptedArgs = n }
}

// Loader records action and filter bindings in declaration order.
type Loader struct {
	defaults Defaults
	actions  []Binding
	filters  []Binding
	log      *logging.Logger
}

// New creates an empty loader.
func New(defaults Defaults, log *logging.Logger) *Loader {
	return &Loader{
		defaults: defaults,
		log:      log.Sub("loader"),
	}
}

// AddAction records an action binding. It fails with ErrInvalidBinding
// if hook is empty or target does not resolve, leaving the loader unchanged.
func (l *Loader) AddAction(hook string, target Target, opts ...Option) error {
	b, err := l.bind(KindAction, hook, target, opts)
	if err != nil {
		return err
	}
	l.actions = append(l.actions, b)
	return nil
}

// AddFilter records a filter binding under the same rules as AddAction.
func (l *Loader) AddFilter(hook string, target Target, opts ...Option) error {
	b, err := l.bind(KindFilter, hook, target, opts)
	if err != nil {
		return err
	}
	l.filters = append(l.filters, b)
	return nil
}

func (l *Loader) bind(kind Kind, hook string, target Target, opts []Option) (Binding, error) {
	if hook == "" {
		return Binding{}, &BindingError{Kind: kind, Hook: hook, Reason: "hook name is empty"}
	}

	cb, label, err := target.resolve()
	if err != nil {
		return Binding{}, &BindingError{Kind: kind, Hook: hook, Reason: err.Error()}
	}

	b := Binding{
		ID:           uuid.NewString(),
		Kind:         kind,
		Hook:         hook,
		Handler:      label,
		Callback:     cb,
		Priority:     l.defaults.Priority,
		AcceptedArgs: l.defaults.AcceptedArgs,
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.AcceptedArgs < 0 {
		return Binding{}, &BindingError{
			Kind:   kind,
			Hook:   hook,
			Reason: fmt.Sprintf("accepted args must be >= 0, got %d", b.AcceptedArgs),
		}
	}

	l.log.Debug().
		Str("kind", kind.String()).
		Str("hook", hook).
		Str("handler", label).
		Int("priority", b.Priority).
		Int("accepted_args", b.AcceptedArgs).
		Msg("binding recorded")
	return b, nil
}

// Run registers every action, then every filter, with d in the order they
// were added. The first dispatcher error stops the run and is returned.
//
// Run does not guard against being called twice; a second call registers
// every binding again.
func (l *Loader) Run(d Dispatcher) error {
	for _, b := range l.actions {
		if err := d.RegisterAction(b.Hook, b.Callback, b.Priority, b.AcceptedArgs); err != nil {
			return fmt.Errorf("register action %q (%s): %w", b.Hook, b.Handler, err)
		}
	}
	for _, b := range l.filters {
		if err := d.RegisterFilter(b.Hook, b.Callback, b.Priority, b.AcceptedArgs); err != nil {
			return fmt.Errorf("register filter %q (%s): %w", b.Hook, b.Handler, err)
		}
	}

	l.log.Info().
		Int("actions", len(l.actions)).
		Int("filters", len(l.filters)).
		Msg("bindings committed")
	return nil
}

// Actions returns a copy of the recorded action bindings.
func (l *Loader) Actions() []Binding {
	out := make([]Binding, len(l.actions))
	copy(out, l.actions)
	return out
}

// Filters returns a copy of the recorded filter bindings.
func (l *Loader) Filters() []Binding {
	out := make([]Binding, len(l.filters))
	copy(out, l.filters)
	return out
}

// Len returns the total number of recorded bindings.
func (l *Loader) Len() int {
	return len(l.actions) + len(l.filters)
}
