package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project manifest looked up from the working
// directory upwards.
const ManifestFileName = "ipdl.yml"

// ErrManifestNotFound is returned by FindManifest when no directory up to
// the filesystem root holds a manifest.
var ErrManifestNotFound = errors.New("ipdl.yml not found")

// Manifest represents the parsed contents of ipdl.yml.
type Manifest struct {
	Path         string
	Name         string
	IncludePaths []string
	GitIncludes  map[string]*GitInclude
	BuiltinTypes []string
	CTypes       []string
	ProcessTypes []string
	CacheDir     string
}

// GitInclude is an include root fetched from a git repository.
type GitInclude struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
	// Subdir is the directory inside the checkout that holds documents.
	Subdir string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses ipdl.yml from fs, returning a validated manifest.
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := fs.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks from start up to the root looking for ipdl.yml.
func FindManifest(fs afero.Fs, start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := fs.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		info, err := fs.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ManifestFileName, origin, ErrManifestNotFound)
		}
		dir = parent
	}
}

// Dir is the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// SearchPaths resolves include_paths against the manifest directory.
func (m *Manifest) SearchPaths() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.IncludePaths))
	for _, p := range m.IncludePaths {
		out = append(out, m.resolve(p))
	}
	return out
}

// ResolvedCacheDir is cache_dir relative to the manifest, or "" when unset.
func (m *Manifest) ResolvedCacheDir() string {
	if m == nil || m.CacheDir == "" {
		return ""
	}
	return m.resolve(m.CacheDir)
}

// GitIncludeNames returns the git include names in sorted order.
func (m *Manifest) GitIncludeNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.GitIncludes))
	for name := range m.GitIncludes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Dir(), p)
}

var (
	identPattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	qualifiedPattern = regexp.MustCompile(`^(::)?[A-Za-z_][A-Za-z0-9_]*(::[A-Za-z_][A-Za-z0-9_]*)*$`)
)

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	} else if sanitizeSegment(m.Name) != m.Name {
		errs.Issues = append(errs.Issues, "name may only contain letters, digits, '.', '-' and '_'")
	}
	for i, p := range m.IncludePaths {
		if p == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("include_paths[%d] must be a non-empty string", i))
		}
	}
	checkNames := func(key string, items []string, pattern *regexp.Regexp) {
		seen := make(map[string]bool, len(items))
		for i, item := range items {
			switch {
			case !pattern.MatchString(item):
				errs.Issues = append(errs.Issues, fmt.Sprintf("%s[%d]: invalid name %q", key, i, item))
			case seen[item]:
				errs.Issues = append(errs.Issues, fmt.Sprintf("%s[%d]: duplicate name %q", key, i, item))
			}
			seen[item] = true
		}
	}
	checkNames("builtin_types", m.BuiltinTypes, qualifiedPattern)
	checkNames("c_types", m.CTypes, identPattern)
	checkNames("process_types", m.ProcessTypes, identPattern)

	for _, name := range m.GitIncludeNames() {
		if sanitizeSegment(name) != name {
			errs.Issues = append(errs.Issues, fmt.Sprintf("git_includes.%s: name may only contain letters, digits, '.', '-' and '_'", name))
		}
		for _, issue := range m.GitIncludes[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("git_includes.%s: %s", name, issue))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (g *GitInclude) validate() []string {
	var errs []string
	if g == nil {
		return []string{"must be a mapping"}
	}
	if g.Git == "" {
		errs = append(errs, "git URL must be provided")
	}
	pins := 0
	for _, v := range []string{g.Rev, g.Tag, g.Branch} {
		if v != "" {
			pins++
		}
	}
	switch {
	case pins == 0:
		errs = append(errs, "must specify rev, tag, or branch")
	case pins > 1:
		errs = append(errs, "rev, tag and branch are mutually exclusive")
	}
	if filepath.IsAbs(filepath.FromSlash(g.Subdir)) || strings.HasPrefix(filepath.Clean(filepath.FromSlash(g.Subdir)), "..") {
		errs = append(errs, fmt.Sprintf("subdir %q must stay inside the checkout", g.Subdir))
	}
	return errs
}

// sanitizeSegment keeps names usable as a single path element.
func sanitizeSegment(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

type manifestFile struct {
	Name         string                   `yaml:"name"`
	IncludePaths stringList               `yaml:"include_paths"`
	GitIncludes  map[string]gitIncludeDoc `yaml:"git_includes"`
	BuiltinTypes stringList               `yaml:"builtin_types"`
	CTypes       stringList               `yaml:"c_types"`
	ProcessTypes stringList               `yaml:"process_types"`
	CacheDir     string                   `yaml:"cache_dir"`
}

type gitIncludeDoc struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Subdir string `yaml:"subdir"`
}

type stringList []string

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:         path,
		Name:         strings.TrimSpace(mf.Name),
		IncludePaths: []string(mf.IncludePaths),
		GitIncludes:  make(map[string]*GitInclude, len(mf.GitIncludes)),
		BuiltinTypes: []string(mf.BuiltinTypes),
		CTypes:       []string(mf.CTypes),
		ProcessTypes: []string(mf.ProcessTypes),
		CacheDir:     strings.TrimSpace(mf.CacheDir),
	}
	for name, doc := range mf.GitIncludes {
		result.GitIncludes[strings.TrimSpace(name)] = &GitInclude{
			Git:    strings.TrimSpace(doc.Git),
			Rev:    strings.TrimSpace(doc.Rev),
			Tag:    strings.TrimSpace(doc.Tag),
			Branch: strings.TrimSpace(doc.Branch),
			Subdir: strings.TrimSpace(doc.Subdir),
		}
	}
	return result
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}
