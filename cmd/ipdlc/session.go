package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/driver"
	"ipdl/checker-go/pkg/typechecker"
)

// session wires the manifest, the loader and one checker for a command run.
type session struct {
	manifest *driver.Manifest
	loader   *driver.Loader
	checker  *typechecker.Checker
}

func (a *app) newSession(firstInput string) (*session, error) {
	manifest, err := a.findManifest(filepath.Dir(firstInput))
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, p := range append(append([]string{}, a.includes...), a.settings.IncludePath...) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve include path %q: %w", p, err)
		}
		paths = append(paths, abs)
	}
	if manifest != nil {
		paths = append(paths, manifest.SearchPaths()...)
		rootPaths, err := a.lockedRootPaths(manifest)
		if err != nil {
			return nil, err
		}
		paths = append(paths, rootPaths...)
	}

	opts := typechecker.Options{Logger: a.logger}
	if manifest != nil {
		opts.CTypes = manifest.CTypes
		opts.ExtraBuiltinTypes = manifest.BuiltinTypes
		opts.ExtraProcessTypes = manifest.ProcessTypes
	}
	loader := driver.NewLoader(driver.LoaderOptions{Fs: a.fs, SearchPaths: paths, Logger: a.logger})
	a.logger.WithField("paths", loader.SearchPaths()).Debug("include search path")
	return &session{
		manifest: manifest,
		loader:   loader,
		checker:  typechecker.New(opts),
	}, nil
}

// findManifest honors --manifest, else searches upwards from dir. No
// manifest at all is fine.
func (a *app) findManifest(dir string) (*driver.Manifest, error) {
	path := a.manifestPath
	if path == "" {
		found, err := driver.FindManifest(a.fs, dir)
		if errors.Is(err, driver.ErrManifestNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}
	return driver.LoadManifest(a.fs, path)
}

func (a *app) lockedRootPaths(m *driver.Manifest) ([]string, error) {
	if len(m.GitIncludes) == 0 {
		return nil, nil
	}
	lock, err := driver.LoadLockfile(a.fs, driver.LockfilePath(m))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s missing for %q; run `ipdlc deps install`", driver.LockFileName, m.Name)
		}
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	cacheDir, err := driver.ResolveCacheDir(a.settings, m)
	if err != nil {
		return nil, err
	}
	return driver.LockedSearchPaths(cacheDir, lock), nil
}

// check loads and checks one document.
func (s *session) check(path string) (*ast.TranslationUnit, *typechecker.Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	tu, err := s.loader.Load(abs)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.checker.Check(tu)
	if err != nil {
		return nil, nil, err
	}
	return tu, res, nil
}
