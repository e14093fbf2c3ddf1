package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"ipdl/checker-go/pkg/ast"
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// Fs defaults to the host filesystem.
	Fs afero.Fs
	// SearchPaths are tried in order after the including document's own
	// directory.
	SearchPaths []string
	Logger      logrus.FieldLogger
}

// Loader reads tree documents and links their includes. Every document is
// decoded once per Loader, so diamond and cyclic includes share one
// *ast.TranslationUnit.
type Loader struct {
	fs     afero.Fs
	paths  []string
	log    logrus.FieldLogger
	units  map[string]*ast.TranslationUnit
	misses map[string]bool
}

// NewLoader returns a loader over opts.Fs.
func NewLoader(opts LoaderOptions) *Loader {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	paths := make([]string, 0, len(opts.SearchPaths))
	seen := make(map[string]bool, len(opts.SearchPaths))
	for _, p := range opts.SearchPaths {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return &Loader{
		fs:     fs,
		paths:  paths,
		log:    log.WithField("component", "loader"),
		units:  make(map[string]*ast.TranslationUnit),
		misses: make(map[string]bool),
	}
}

// SearchPaths returns the deduplicated search path list.
func (l *Loader) SearchPaths() []string {
	return append([]string(nil), l.paths...)
}

// Load reads the document at path and, transitively, everything it
// includes. An include that no search path can satisfy is left with a nil
// Unit for the checker to report. Malformed documents are errors.
func (l *Loader) Load(path string) (*ast.TranslationUnit, error) {
	if path == "" {
		return nil, fmt.Errorf("loader: empty path")
	}
	return l.load(filepath.Clean(path))
}

func (l *Loader) load(path string) (*ast.TranslationUnit, error) {
	if tu, ok := l.units[path]; ok {
		return tu, nil
	}
	file, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	tu, err := DecodeDocument(file, path)
	file.Close()
	if err != nil {
		return nil, err
	}
	// Registered before its includes so cycles terminate.
	l.units[path] = tu
	l.log.WithField("unit", tu.Name).Debugf("loaded %s", path)

	dir := filepath.Dir(path)
	for _, inc := range tu.Includes {
		found, ok := l.Resolve(inc.Name, inc.Protocol, dir)
		if !ok {
			l.log.WithField("unit", tu.Name).Debugf("include %s not found", inc.Name)
			continue
		}
		unit, err := l.load(found)
		if err != nil {
			return nil, err
		}
		inc.Unit = unit
	}
	return tu, nil
}

// Resolve finds the document for an included unit, looking in dir first
// and then along the search paths.
func (l *Loader) Resolve(name string, protocol bool, dir string) (string, bool) {
	docName := DocumentName(name, protocol)
	candidates := make([]string, 0, len(l.paths)+1)
	if dir != "" {
		candidates = append(candidates, dir)
	}
	candidates = append(candidates, l.paths...)
	for _, base := range candidates {
		candidate := filepath.Join(base, docName)
		if _, ok := l.units[candidate]; ok {
			return candidate, true
		}
		if l.misses[candidate] {
			continue
		}
		info, err := l.fs.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true
		}
		if err != nil && !os.IsNotExist(err) {
			l.log.WithError(err).Debugf("stat %s", candidate)
		}
		l.misses[candidate] = true
	}
	return "", false
}

// Units returns every document loaded so far, keyed by path.
func (l *Loader) Units() map[string]*ast.TranslationUnit {
	out := make(map[string]*ast.TranslationUnit, len(l.units))
	for k, v := range l.units {
		out[k] = v
	}
	return out
}
