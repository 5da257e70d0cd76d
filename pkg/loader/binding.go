package loader

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Kind distinguishes the two dispatch categories a host exposes.
type Kind int

const (
	KindAction Kind = iota
	KindFilter
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindFilter:
		return "filter"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Callback is a resolved hook handler. Actions ignore the returned value;
// filters receive the value being filtered as args[0] and return the
// replacement.
type Callback func(ctx context.Context, args ...any) (any, error)

// Binding is one recorded hook registration. Bindings are never mutated
// after they are recorded.
type Binding struct {
	ID           string
	Kind         Kind
	Hook         string
	Handler      string // human-readable label of the resolved target
	Callback     Callback
	Priority     int
	AcceptedArgs int
}

// ErrInvalidBinding is returned (wrapped in a *BindingError) when a hook
// name is empty or a target cannot be resolved to a callable.
var ErrInvalidBinding = errors.New("invalid binding")

// BindingError describes why AddAction or AddFilter rejected a binding.
type BindingError struct {
	Kind   Kind
	Hook   string
	Reason string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("invalid %s binding %q: %s", e.Kind, e.Hook, e.Reason)
}

func (e *BindingError) Unwrap() error { return ErrInvalidBinding }

// Target identifies the code a binding runs. Build one with Func or Method;
// the zero value is unresolvable.
type Target struct {
	fn     Callback
	owner  any
	method string
}

// Func targets a plain function value.
func Func(fn Callback) Target {
	return Target{fn: fn}
}

// Method targets a named method on owner. The method is looked up when the
// binding is added, not when the hook fires.
//
// Supported method signatures:
//
//	func(ctx context.Context, args ...any) (any, error)
//	func(ctx context.Context) error
func Method(owner any, method string) Target {
	return Target{owner: owner, method: method}
}

var (
	callbackType = reflect.TypeOf((func(context.Context, ...any) (any, error))(nil))
	simpleType   = reflect.TypeOf((func(context.Context) error)(nil))
)

// resolve turns the target into a Callback and a label for logging.
func (t Target) resolve() (Callback, string, error) {
	if t.fn != nil {
		return t.fn, funcName(t.fn), nil
	}
	if t.owner == nil {
		return nil, "", errors.New("target has no function or owner")
	}
	if t.method == "" {
		return nil, "", errors.New("method name is empty")
	}

	label := fmt.Sprintf("%T.%s", t.owner, t.method)
	m := reflect.ValueOf(t.owner).MethodByName(t.method)
	if !m.IsValid() {
		return nil, label, fmt.Errorf("%T has no exported method %q", t.owner, t.method)
	}

	switch m.Type() {
	case callbackType:
		fn := m.Interface().(func(context.Context, ...any) (any, error))
		return Callback(fn), label, nil
	case simpleType:
		fn := m.Interface().(func(context.Context) error)
		return func(ctx context.Context, _ ...any) (any, error) {
			return nil, fn(ctx)
		}, label, nil
	default:
		return nil, label, fmt.Errorf("method %s has unsupported signature %s", label, m.Type())
	}
}

func funcName(fn Callback) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
