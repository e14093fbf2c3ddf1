package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// RootFetcher materializes a git include root and pins it.
type RootFetcher interface {
	Fetch(ctx context.Context, name string, spec *GitInclude) (*LockedRoot, error)
}

// GitFetcherOptions configures a GitFetcher.
type GitFetcherOptions struct {
	CacheDir string
	// Fs defaults to the host filesystem. Clones always land on the host
	// filesystem; Fs is used for cache lookups and checksums.
	Fs     afero.Fs
	Logger logrus.FieldLogger
}

// GitFetcher checks out include roots under <cache>/roots/<name>/<version>.
type GitFetcher struct {
	cacheDir string
	fs       afero.Fs
	log      logrus.FieldLogger
}

func NewGitFetcher(opts GitFetcherOptions) *GitFetcher {
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
	return &GitFetcher{cacheDir: opts.CacheDir, fs: fs, log: log.WithField("component", "git")}
}

// RootDir is where a locked root's documents live.
func RootDir(cacheDir string, root *LockedRoot) string {
	dir := filepath.Join(cacheDir, "roots", sanitizeSegment(root.Name), sanitizePathSegment(root.Version))
	if root.Subdir != "" {
		dir = filepath.Join(dir, filepath.FromSlash(root.Subdir))
	}
	return dir
}

// LockedSearchPaths lists the document directories of every locked root.
func LockedSearchPaths(cacheDir string, lock *Lockfile) []string {
	if lock == nil || cacheDir == "" {
		return nil
	}
	out := make([]string, 0, len(lock.Roots))
	for _, root := range lock.Roots {
		if root != nil {
			out = append(out, RootDir(cacheDir, root))
		}
	}
	return out
}

func (g *GitFetcher) Fetch(ctx context.Context, name string, spec *GitInclude) (*LockedRoot, error) {
	if g == nil || g.cacheDir == "" {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("git include %q: git URL required", name)
	}

	baseDir := filepath.Join(g.cacheDir, "roots", sanitizeSegment(name))
	version, commit, err := g.ensureCheckout(ctx, baseDir, url, spec)
	if err != nil {
		return nil, fmt.Errorf("git include %q: %w", name, err)
	}

	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(g.fs, checkoutDir)
	if err != nil {
		return nil, fmt.Errorf("git include %q: checksum %s: %w", name, checkoutDir, err)
	}
	g.log.WithField("root", name).Debugf("checked out %s at %s", url, commit)

	return &LockedRoot{
		Name:     sanitizeSegment(name),
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Subdir:   filepath.ToSlash(spec.Subdir),
		Checksum: checksum,
	}, nil
}

func (g *GitFetcher) ensureCheckout(ctx context.Context, baseDir, url string, spec *GitInclude) (string, string, error) {
	if err := g.fs.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(rev))
		if _, err := g.fs.Stat(existing); err == nil {
			return rev, rev, nil
		}
	}

	tmpDir, err := afero.TempDir(g.fs, baseDir, "git-fetch-")
	if err != nil {
		return "", "", err
	}
	if err := g.fs.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		_ = g.fs.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = g.fs.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := g.fs.Stat(targetDir); err == nil {
		_ = g.fs.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = g.fs.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); err != nil {
		_ = g.fs.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := g.fs.Rename(tmpDir, targetDir); err != nil {
		_ = g.fs.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *GitInclude) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git includes require rev, tag, or branch")
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	if result := sanitizeSegment(segment); result != "" {
		return result
	}
	return "head"
}

// dirChecksum hashes file names and contents under path, skipping git
// metadata.
func dirChecksum(fs afero.Fs, path string) (string, error) {
	h := sha256.New()
	err := afero.Walk(fs, path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := afero.ReadFile(fs, p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// InstallGitIncludes brings lock in line with the manifest's git includes,
// fetching every root that is missing, moved, or absent from the cache. It
// returns whether the lockfile changed and one progress line per root.
func InstallGitIncludes(ctx context.Context, fetcher RootFetcher, fs afero.Fs, cacheDir string, m *Manifest, lock *Lockfile) (bool, []string, error) {
	var logs []string
	changed := false
	for _, name := range m.GitIncludeNames() {
		spec := m.GitIncludes[name]
		if locked, ok := lock.Find(name); ok && lockedMatches(locked, spec) {
			if _, err := fs.Stat(RootDir(cacheDir, locked)); err == nil {
				logs = append(logs, fmt.Sprintf("%s: up to date (%s)", name, locked.Version))
				continue
			}
		}
		root, err := fetcher.Fetch(ctx, name, spec)
		if err != nil {
			return changed, logs, err
		}
		if lock.Put(root) {
			changed = true
		}
		logs = append(logs, fmt.Sprintf("%s: fetched %s", name, root.Version))
	}
	if lock.Prune(m.GitIncludeNames()) {
		changed = true
	}
	return changed, logs, nil
}

// lockedMatches reports whether a lock entry was produced from spec.
func lockedMatches(locked *LockedRoot, spec *GitInclude) bool {
	if !strings.HasPrefix(locked.Source, "git+"+spec.Git+"@") {
		return false
	}
	if locked.Subdir != filepath.ToSlash(spec.Subdir) {
		return false
	}
	_, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return false
	}
	return locked.Version == descriptor || strings.HasPrefix(locked.Version, descriptor+"@")
}
