package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/soyeahso/plugkit/pkg/logging"
)

//go:embed all:template
var builtin embed.FS

// Builtin returns the template shipped with plugkit.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtin, "template")
	if err != nil {
		panic(err)
	}
	return sub
}

// templateSuffix is stripped from rendered file names so template sources
// are not picked up by tooling in their raw form.
const templateSuffix = ".tmpl"

// ErrExists is returned when a rendered file would overwrite an existing
// one and Force is not set.
var ErrExists = errors.New("file already exists")

// Report lists the files Render wrote, relative to the destination.
type Report struct {
	Created     []string
	Overwritten []string
}

// Renderer writes a template tree with tokens substituted.
type Renderer struct {
	Tokens Tokens
	Force  bool
	log    *logging.Logger
}

// NewRenderer creates a renderer for the given tokens.
func NewRenderer(tokens Tokens, force bool, log *logging.Logger) *Renderer {
	return &Renderer{Tokens: tokens, Force: force, log: log.Sub("scaffold")}
}

type rendered struct {
	rel    string
	data   []byte
	mode   fs.FileMode
	exists bool
}

// Render renders every file in src into dest. All files are rendered and
// checked before any is written, so a bad token or a conflict leaves dest
// untouched.
func (r *Renderer) Render(src fs.FS, dest string) (Report, error) {
	var files []rendered
	sources := make(map[string]string) // rendered path -> template path

	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := r.Tokens.Replace(strings.TrimSuffix(p, templateSuffix))
		if err != nil {
			return withFile(err, p)
		}
		if !filepath.IsLocal(filepath.FromSlash(rel)) || path.Clean(rel) != rel {
			return fmt.Errorf("rendered path %q for %s escapes destination", rel, p)
		}
		if prev, dup := sources[rel]; dup {
			return fmt.Errorf("%s and %s both render to %q", prev, p, rel)
		}
		sources[rel] = p

		raw, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		content, err := r.Tokens.Replace(string(raw))
		if err != nil {
			return withFile(err, p)
		}

		mode := fs.FileMode(0o644)
		if info, err := d.Info(); err == nil && info.Mode().Perm()&0o111 != 0 {
			mode = 0o755
		}

		target := filepath.Join(dest, filepath.FromSlash(rel))
		_, statErr := os.Stat(target)
		exists := statErr == nil
		if exists && !r.Force {
			return fmt.Errorf("%w: %s", ErrExists, target)
		}

		files = append(files, rendered{rel: rel, data: []byte(content), mode: mode, exists: exists})
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })

	var report Report
	for _, f := range files {
		target := filepath.Join(dest, filepath.FromSlash(f.rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return report, fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, f.data, f.mode); err != nil {
			return report, fmt.Errorf("writing %s: %w", target, err)
		}
		if f.exists {
			report.Overwritten = append(report.Overwritten, f.rel)
		} else {
			report.Created = append(report.Created, f.rel)
		}
		r.log.Debug().Str("file", f.rel).Bool("overwrite", f.exists).Msg("file rendered")
	}

	r.log.Info().
		Str("dest", dest).
		Int("created", len(report.Created)).
		Int("overwritten", len(report.Overwritten)).
		Msg("scaffold rendered")
	return report, nil
}

func withFile(err error, file string) error {
	var ute *UnknownTokenError
	if errors.As(err, &ute) {
		return &UnknownTokenError{Token: ute.Token, File: file}
	}
	return err
}
