package plugin

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/soyeahso/plugkit/pkg/hooks"
	"github.com/soyeahso/plugkit/pkg/loader"
	"github.com/soyeahso/plugkit/pkg/logging"
)

// I18n discovers the translation catalogs shipped with a plugin once
// plugins_loaded fires. Catalogs are files named <domain>-<locale>.mo.
type I18n struct {
	Domain string
	Dir    string // languages directory

	mu      sync.Mutex
	locales []string
	log     *logging.Logger
}

// NewI18n creates the component for the given text domain and directory.
func NewI18n(domain, dir string, log *logging.Logger) *I18n {
	return &I18n{Domain: domain, Dir: dir, log: log.Sub("i18n")}
}

// DefineHooks binds LoadTextDomain to plugins_loaded.
func (i *I18n) DefineHooks(l *loader.Loader) error {
	return l.AddAction(hooks.HookPluginsLoaded, loader.Method(i, "LoadTextDomain"), loader.WithAcceptedArgs(0))
}

// LoadTextDomain scans the languages directory. A missing directory means
// no translations and is not an error.
func (i *I18n) LoadTextDomain(_ context.Context) error {
	entries, err := os.ReadDir(i.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			i.log.Debug().Str("dir", i.Dir).Msg("no languages directory")
			return nil
		}
		return err
	}

	prefix := i.Domain + "-"
	var locales []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".mo" || !strings.HasPrefix(name, prefix) {
			continue
		}
		locales = append(locales, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".mo"))
	}
	sort.Strings(locales)

	i.mu.Lock()
	i.locales = locales
	i.mu.Unlock()

	i.log.Info().Str("domain", i.Domain).Strs("locales", locales).Msg("text domain loaded")
	return nil
}

// Locales returns the locales found by the last LoadTextDomain.
func (i *I18n) Locales() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]string, len(i.locales))
	copy(out, i.locales)
	return out
}
