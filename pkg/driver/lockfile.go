package driver

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// LockFileName sits next to ipdl.yml.
const LockFileName = "ipdl.lock"

// Lockfile models the ipdl.lock contents.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Roots     []*LockedRoot
}

// LockedRoot pins one git include root to a commit.
type LockedRoot struct {
	Name     string
	Version  string
	Source   string
	Subdir   string
	Checksum string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      sanitizeSegment(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Roots:     []*LockedRoot{},
	}
}

// LockfilePath is the lockfile location for m.
func LockfilePath(m *Manifest) string {
	return filepath.Join(m.Dir(), LockFileName)
}

// LoadLockfile parses ipdl.lock. A missing file surfaces as an error
// satisfying os.IsNotExist.
func LoadLockfile(fs afero.Fs, path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := fs.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile back to fs, refreshing metadata.
func WriteLockfile(fs afero.Fs, lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := afero.WriteFile(fs, abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the locked entry for name.
func (l *Lockfile) Find(name string) (*LockedRoot, bool) {
	if l == nil {
		return nil, false
	}
	name = sanitizeSegment(name)
	for _, root := range l.Roots {
		if root != nil && root.Name == name {
			return root, true
		}
	}
	return nil, false
}

// Put replaces or adds the entry for root.Name. It reports whether the
// lockfile changed.
func (l *Lockfile) Put(root *LockedRoot) bool {
	root.Name = sanitizeSegment(root.Name)
	if existing, ok := l.Find(root.Name); ok {
		if *existing == *root {
			return false
		}
		*existing = *root
		return true
	}
	l.Roots = append(l.Roots, root)
	l.normalize()
	return true
}

// Prune drops entries whose names are not in keep and reports whether any
// were removed.
func (l *Lockfile) Prune(keep []string) bool {
	wanted := make(map[string]bool, len(keep))
	for _, k := range keep {
		wanted[sanitizeSegment(k)] = true
	}
	out := l.Roots[:0]
	for _, root := range l.Roots {
		if root != nil && wanted[root.Name] {
			out = append(out, root)
		}
	}
	changed := len(out) != len(l.Roots)
	l.Roots = out
	return changed
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Root = sanitizeSegment(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	sort.SliceStable(l.Roots, func(i, j int) bool {
		return l.Roots[i].Name < l.Roots[j].Name
	})
	for _, root := range l.Roots {
		if root == nil {
			continue
		}
		root.Name = sanitizeSegment(root.Name)
		root.Version = strings.TrimSpace(root.Version)
		root.Source = strings.TrimSpace(root.Source)
		root.Subdir = strings.TrimSpace(root.Subdir)
		root.Checksum = strings.TrimSpace(root.Checksum)
	}
}

func (l *Lockfile) toDisk() lockfileDisk {
	roots := make([]lockfileRoot, 0, len(l.Roots))
	for _, root := range l.Roots {
		if root == nil {
			continue
		}
		roots = append(roots, lockfileRoot{
			Name:     root.Name,
			Version:  root.Version,
			Source:   root.Source,
			Subdir:   root.Subdir,
			Checksum: root.Checksum,
		})
	}
	return lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
		Roots:     roots,
	}
}

type lockfileDisk struct {
	Root      string         `yaml:"root"`
	Generated string         `yaml:"generated"`
	Tool      string         `yaml:"tool"`
	Roots     []lockfileRoot `yaml:"roots"`
}

type lockfileRoot struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Subdir   string `yaml:"subdir,omitempty"`
	Checksum string `yaml:"checksum"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Root:      d.Root,
		Generated: strings.TrimSpace(d.Generated),
		Tool:      d.Tool,
		Roots:     make([]*LockedRoot, 0, len(d.Roots)),
	}
	for _, root := range d.Roots {
		lock.Roots = append(lock.Roots, &LockedRoot{
			Name:     root.Name,
			Version:  root.Version,
			Source:   root.Source,
			Subdir:   root.Subdir,
			Checksum: root.Checksum,
		})
	}
	lock.normalize()
	return lock
}
