package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/plugkit/internal/config"
	"github.com/soyeahso/plugkit/pkg/hooks"
	"github.com/soyeahso/plugkit/pkg/logging"
	"github.com/soyeahso/plugkit/pkg/plugin"
)

// execute runs the root command with args against an isolated home.
func execute(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PLUGKIT_HOME", home)
	cfgFile, logLevel = "", ""

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "silent"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(body), 0o600))
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "plugkit")
}

func TestConfigSetGetUnset(t *testing.T) {
	home := t.TempDir()

	out, err := execute(t, home, "config", "set", "plugin.slug", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Set plugin.slug = demo")

	_, err = execute(t, home, "config", "set", "hooks.defaultPriority", "5")
	require.NoError(t, err)

	out, err = execute(t, home, "config", "get", "plugin.slug")
	require.NoError(t, err)
	assert.Equal(t, "demo\n", out)

	out, err = execute(t, home, "config", "get", "hooks")
	require.NoError(t, err)
	assert.Contains(t, out, "defaultPriority: 5")

	_, err = execute(t, home, "config", "unset", "plugin.slug")
	require.NoError(t, err)

	_, err = execute(t, home, "config", "get", "plugin.slug")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestConfigPathCmd(t *testing.T) {
	home := t.TempDir()
	out, err := execute(t, home, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.yaml")+"\n", out)
}

func TestHooksCmd(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "plugin:\n  slug: demo\n  dir: "+home+"\n")

	out, err := execute(t, home, "hooks")
	require.NoError(t, err)
	assert.Contains(t, out, "plugins_loaded")
	assert.Contains(t, out, "*plugin.I18n.LoadTextDomain")
	assert.Contains(t, out, "1 action(s), 0 filter(s)")
}

func TestBuildPlugin_ZeroDefaults(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "plugin:\n  slug: demo\n  dir: "+home+"\nhooks:\n  defaultPriority: 0\n  defaultAcceptedArgs: 0\n")

	cfg, err := config.Load(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)

	p, _, err := buildPlugin(cfg, logging.New(nil, "silent"))
	require.NoError(t, err)

	actions := p.Loader().Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, 0, actions[0].Priority)
}

func TestHooksCmd_InvalidConfig(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "plugin:\n  slug: Not Valid\n")

	_, err := execute(t, home, "hooks")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin.slug")
}

func TestRunCmd(t *testing.T) {
	home := t.TempDir()
	langs := filepath.Join(home, "languages")
	require.NoError(t, os.MkdirAll(langs, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(langs, "demo-fr_FR.mo"), nil, 0o600))
	writeConfig(t, home, "plugin:\n  slug: demo\n  version: 2.0.0\n  dir: "+home+"\n")

	out, err := execute(t, home, "run", "--fire", "custom_event", "--filter", "the_title", "--value", "hi")
	require.NoError(t, err)
	assert.Contains(t, out, "fired custom_event: 0 handler(s)")
	assert.Contains(t, out, `the_title("hi") = hi`)
	assert.Contains(t, out, "demo 2.0.0: active=true actions=1 filters=0")
	assert.Contains(t, out, "locales: [fr_FR]")
	assert.Contains(t, out, "hooks: [plugins_loaded]")
}

func TestStartPlugins_RollsBackOnFailure(t *testing.T) {
	silent := logging.New(nil, "silent")
	var deactivated []string

	lifecycle := func(slug string, activateErr error) plugin.Lifecycle {
		return plugin.Lifecycle{
			Activator: func(context.Context) error { return activateErr },
			Deactivator: func(context.Context) error {
				deactivated = append(deactivated, slug)
				return nil
			},
		}
	}
	newPlugin := func(slug string, activateErr error) *plugin.Plugin {
		p, err := plugin.New(plugin.Definition{
			Options:   plugin.Options{Slug: slug, Version: "1.0.0"},
			Lifecycle: lifecycle(slug, activateErr),
		}, silent)
		require.NoError(t, err)
		return p
	}

	hm := hooks.NewManager(silent)
	reg, err := startPlugins(context.Background(), hm, silent,
		newPlugin("first", nil), newPlugin("second", assert.AnError))
	require.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, reg)
	assert.Equal(t, []string{"first"}, deactivated)
	assert.Equal(t, 1, hm.Did(hooks.HookShutdown))
}

func TestNewCmd(t *testing.T) {
	home := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, home, "new", dest, "--slug", "acme-forms", "--name", "Acme Forms")
	require.NoError(t, err)
	assert.Contains(t, out, "created     acme-forms.go")
	assert.FileExists(t, filepath.Join(dest, "languages", "acme-forms.pot"))

	_, err = execute(t, home, "new", dest, "--slug", "acme-forms")
	require.Error(t, err)

	out, err = execute(t, home, "new", dest, "--slug", "acme-forms", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "overwritten plugin.yaml")
}

func TestNewCmd_RequiresSlug(t *testing.T) {
	_, err := execute(t, t.TempDir(), "new", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin.slug")
}

func TestStatusCmd(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "plugin:\n  slug: demo\nhooks:\n  defaultAcceptedArgs: 3\n")

	out, err := execute(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "defaultPriority=10 defaultAcceptedArgs=3")
	assert.Contains(t, out, "slug: demo")
	assert.NotContains(t, out, "Validation issues")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"FALSE", false},
		{"42", 42},
		{"-3", -3},
		{"1.5", 1.5},
		{"1.0.0", "1.0.0"},
		{"demo", "demo"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}
