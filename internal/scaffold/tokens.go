// Package scaffold renders a plugin skeleton by replacing {{TOKEN}}
// placeholders in file names and contents.
package scaffold

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/soyeahso/plugkit/internal/config"
	"github.com/soyeahso/plugkit/internal/version"
)

// Token names understood by Replace.
const (
	TokenPluginName        = "PLUGIN_NAME"
	TokenPluginSlug        = "PLUGIN_SLUG"
	TokenPluginURI         = "PLUGIN_URI"
	TokenPluginDescription = "PLUGIN_DESCRIPTION"
	TokenPluginVersion     = "PLUGIN_VERSION"
	TokenAuthorName        = "AUTHOR_NAME"
	TokenAuthorURI         = "AUTHOR_URI"
	TokenTextDomain        = "TEXT_DOMAIN"
	TokenPackageName       = "PACKAGE_NAME"
	TokenConstantPrefix    = "CONSTANT_PREFIX"
	TokenFunctionPrefix    = "FUNCTION_PREFIX"
	TokenNamespace         = "NAMESPACE"
	TokenGoPackage         = "GO_PACKAGE"
	TokenGenerator         = "GENERATOR"
)

var tokenPattern = regexp.MustCompile(`\{\{([A-Z][A-Z0-9_]*)\}\}`)

// UnknownTokenError reports a placeholder with no value.
type UnknownTokenError struct {
	Token string
	File  string
}

func (e *UnknownTokenError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("unknown token {{%s}}", e.Token)
	}
	return fmt.Sprintf("unknown token {{%s}} in %s", e.Token, e.File)
}

// Tokens maps placeholder names to replacement values.
type Tokens map[string]string

// NewTokens derives the full token set from the plugin config. Prefixes,
// namespace and package names are computed from the slug when not set.
func NewTokens(p config.PluginConfig) Tokens {
	namespace := p.Namespace
	if namespace == "" {
		namespace = camel(p.Slug)
	}
	pkg := p.Package
	if pkg == "" {
		pkg = namespace
	}
	domain := p.TextDomain
	if domain == "" {
		domain = p.Slug
	}
	name := p.Name
	if name == "" {
		name = title(p.Slug)
	}

	return Tokens{
		TokenPluginName:        name,
		TokenPluginSlug:        p.Slug,
		TokenPluginURI:         p.URI,
		TokenPluginDescription: p.Description,
		TokenPluginVersion:     p.Version,
		TokenAuthorName:        p.Author,
		TokenAuthorURI:         p.AuthorURI,
		TokenTextDomain:        domain,
		TokenPackageName:       pkg,
		TokenConstantPrefix:    strings.ToUpper(snake(p.Slug)),
		TokenFunctionPrefix:    strings.ToLower(snake(p.Slug)),
		TokenNamespace:         namespace,
		TokenGoPackage:         strings.ReplaceAll(strings.ToLower(p.Slug), "-", ""),
		TokenGenerator:         version.Generator(),
	}
}

// Replace substitutes every {{TOKEN}} in s.
func (t Tokens) Replace(s string) (string, error) {
	var unknown string
	out := tokenPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-2]
		val, ok := t[name]
		if !ok {
			if unknown == "" {
				unknown = name
			}
			return match
		}
		return val
	})
	if unknown != "" {
		return "", &UnknownTokenError{Token: unknown}
	}
	return out, nil
}

// Names returns the token names in sorted order.
func (t Tokens) Names() []string {
	names := make([]string, 0, len(t))
	for k := range t {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func words(slug string) []string {
	return strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
}

func snake(slug string) string {
	return strings.Join(words(slug), "_")
}

func camel(slug string) string {
	var b strings.Builder
	for _, w := range words(slug) {
		b.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}
	return b.String()
}

func title(slug string) string {
	ws := words(slug)
	for i, w := range ws {
		ws[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(ws, " ")
}
