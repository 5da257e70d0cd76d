package loader

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/plugkit/pkg/logging"
)

type registration struct {
	kind         Kind
	name         string
	cb           Callback
	priority     int
	acceptedArgs int
}

// recordingDispatcher captures every registration in call order.
type recordingDispatcher struct {
	calls  []registration
	failOn string
}

func (d *recordingDispatcher) RegisterAction(name string, cb Callback, priority, acceptedArgs int) error {
	return d.record(KindAction, name, cb, priority, acceptedArgs)
}

func (d *recordingDispatcher) RegisterFilter(name string, cb Callback, priority, acceptedArgs int) error {
	return d.record(KindFilter, name, cb, priority, acceptedArgs)
}

func (d *recordingDispatcher) record(kind Kind, name string, cb Callback, priority, acceptedArgs int) error {
	if name == d.failOn {
		return errors.New("dispatcher rejected " + name)
	}
	d.calls = append(d.calls, registration{kind, name, cb, priority, acceptedArgs})
	return nil
}

func (d *recordingDispatcher) count(kind Kind) int {
	n := 0
	for _, c := range d.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func testLoader() *Loader {
	return New(StockDefaults(), logging.New(nil, "silent"))
}

func noop(_ context.Context, _ ...any) (any, error) { return nil, nil }

func samePointer(a, b Callback) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

type widget struct{ calls int }

func (w *widget) Render(_ context.Context, args ...any) (any, error) {
	w.calls++
	return len(args), nil
}

func (w *widget) Boot(_ context.Context) error {
	w.calls++
	return nil
}

func (w *widget) Wrong(s string) string { return s }

func TestLoader_InitScenario(t *testing.T) {
	l := testLoader()
	require.NoError(t, l.AddAction("init", Func(noop), WithPriority(10), WithAcceptedArgs(1)))

	d := &recordingDispatcher{}
	require.NoError(t, l.Run(d))

	require.Len(t, d.calls, 1)
	got := d.calls[0]
	assert.Equal(t, KindAction, got.kind)
	assert.Equal(t, "init", got.name)
	assert.Equal(t, 10, got.priority)
	assert.Equal(t, 1, got.acceptedArgs)
	assert.True(t, samePointer(noop, got.cb))
}

func TestLoader_Defaults(t *testing.T) {
	l := testLoader()
	require.NoError(t, l.AddFilter("the_title", Func(noop)))

	b := l.Filters()[0]
	assert.Equal(t, DefaultPriority, b.Priority)
	assert.Equal(t, DefaultAcceptedArgs, b.AcceptedArgs)
	assert.NotEmpty(t, b.ID)
	assert.Contains(t, b.Handler, "noop")
}

func TestLoader_CustomDefaults(t *testing.T) {
	l := New(Defaults{Priority: 50, AcceptedArgs: 3}, logging.New(nil, "silent"))
	require.NoError(t, l.AddAction("init", Func(noop)))
	require.NoError(t, l.AddAction("init", Func(noop), WithPriority(1)))

	actions := l.Actions()
	assert.Equal(t, 50, actions[0].Priority)
	assert.Equal(t, 3, actions[0].AcceptedArgs)
	assert.Equal(t, 1, actions[1].Priority)
	assert.Equal(t, 3, actions[1].AcceptedArgs)
}

func TestLoader_Run_PreservesOrderRegardlessOfPriority(t *testing.T) {
	l := testLoader()
	require.NoError(t, l.AddAction("b1", Func(noop), WithPriority(99)))
	require.NoError(t, l.AddAction("b2", Func(noop), WithPriority(1)))
	require.NoError(t, l.AddAction("b3", Func(noop), WithPriority(50)))

	d := &recordingDispatcher{}
	require.NoError(t, l.Run(d))

	var names []string
	for _, c := range d.calls {
		names = append(names, c.name)
	}
	assert.Equal(t, []string{"b1", "b2", "b3"}, names)
}

func TestLoader_Run_ActionsThenFilters(t *testing.T) {
	l := testLoader()
	require.NoError(t, l.AddFilter("f1", Func(noop)))
	require.NoError(t, l.AddAction("a1", Func(noop)))
	require.NoError(t, l.AddFilter("f2", Func(noop)))

	d := &recordingDispatcher{}
	require.NoError(t, l.Run(d))

	require.Len(t, d.calls, 3)
	assert.Equal(t, "a1", d.calls[0].name)
	assert.Equal(t, "f1", d.calls[1].name)
	assert.Equal(t, "f2", d.calls[2].name)
}

func TestLoader_Run_NoCrossContamination(t *testing.T) {
	tests := []struct {
		actions int
		filters int
	}{
		{0, 0},
		{1, 0},
		{0, 1},
		{3, 2},
		{5, 7},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_actions_%d_filters", tt.actions, tt.filters), func(t *testing.T) {
			l := testLoader()
			for i := 0; i < tt.actions; i++ {
				require.NoError(t, l.AddAction(fmt.Sprintf("action_%d", i), Func(noop)))
			}
			for i := 0; i < tt.filters; i++ {
				require.NoError(t, l.AddFilter(fmt.Sprintf("filter_%d", i), Func(noop)))
			}

			d := &recordingDispatcher{}
			require.NoError(t, l.Run(d))
			assert.Equal(t, tt.actions, d.count(KindAction))
			assert.Equal(t, tt.filters, d.count(KindFilter))
			assert.Equal(t, tt.actions+tt.filters, l.Len())
		})
	}
}

func TestLoader_InvalidBinding_LeavesLoaderUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		hook   string
		target Target
		opts   []Option
	}{
		{"empty hook", "", Func(noop), nil},
		{"nil func", "init", Func(nil), nil},
		{"zero target", "init", Target{}, nil},
		{"nil owner", "init", Method(nil, "Render"), nil},
		{"empty method", "init", Method(&widget{}, ""), nil},
		{"missing method", "init", Method(&widget{}, "Missing"), nil},
		{"unexported method", "init", Method(&widget{}, "render"), nil},
		{"bad signature", "init", Method(&widget{}, "Wrong"), nil},
		{"negative args", "init", Func(noop), []Option{WithAcceptedArgs(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := testLoader()
			require.NoError(t, l.AddAction("existing", Func(noop)))
			before := l.Len()

			err := l.AddAction(tt.hook, tt.target, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidBinding)
			var be *BindingError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, KindAction, be.Kind)

			err = l.AddFilter(tt.hook, tt.target, tt.opts...)
			assert.ErrorIs(t, err, ErrInvalidBinding)

			assert.Equal(t, before, l.Len())
		})
	}
}

func TestLoader_Method(t *testing.T) {
	w := &widget{}
	l := testLoader()
	require.NoError(t, l.AddAction("render", Method(w, "Render"), WithAcceptedArgs(2)))
	require.NoError(t, l.AddAction("boot", Method(w, "Boot")))

	actions := l.Actions()
	assert.Equal(t, "*loader.widget.Render", actions[0].Handler)

	out, err := actions[0].Callback(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, out)

	out, err = actions[1].Callback(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 2, w.calls)
}

func TestLoader_Run_Twice_RegistersTwice(t *testing.T) {
	l := testLoader()
	require.NoError(t, l.AddAction("init", Func(noop)))
	require.NoError(t, l.AddFilter("the_content", Func(noop)))

	d := &recordingDispatcher{}
	require.NoError(t, l.Run(d))
	require.NoError(t, l.Run(d))

	assert.Equal(t, 2, d.count(KindAction))
	assert.Equal(t, 2, d.count(KindFilter))
}

func TestLoader_Run_DispatcherError(t *testing.T) {
	l := testLoader()
	require.NoError(t, l.AddAction("first", Func(noop)))
	require.NoError(t, l.AddAction("broken", Func(noop)))
	require.NoError(t, l.AddAction("never", Func(noop)))

	d := &recordingDispatcher{failOn: "broken"}
	err := l.Run(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	require.Len(t, d.calls, 1)
	assert.Equal(t, "first", d.calls[0].name)
}

func TestLoader_Accessors_ReturnCopies(t *testing.T) {
	l := testLoader()
	require.NoError(t, l.AddAction("init", Func(noop)))

	actions := l.Actions()
	actions[0].Hook = "mutated"
	assert.Equal(t, "init", l.Actions()[0].Hook)
}

func TestLoader_SharedHookName(t *testing.T) {
	l := testLoader()
	require.NoError(t, l.AddAction("init", Func(noop)))
	require.NoError(t, l.AddAction("init", Func(noop)))

	actions := l.Actions()
	require.Len(t, actions, 2)
	assert.NotEqual(t, actions[0].ID, actions[1].ID)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "action", KindAction.String())
	assert.Equal(t, "filter", KindFilter.String())
	assert.Equal(t, "kind(7)", Kind(7).String())
}
