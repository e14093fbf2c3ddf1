package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitRevisionFromSpec(t *testing.T) {
	rev, desc, err := gitRevisionFromSpec(&GitInclude{Tag: "v1.0"})
	require.NoError(t, err)
	assert.Equal(t, plumbing.Revision("refs/tags/v1.0"), rev)
	assert.Equal(t, "v1.0", desc)

	rev, desc, err = gitRevisionFromSpec(&GitInclude{Branch: "main"})
	require.NoError(t, err)
	assert.Equal(t, plumbing.Revision("refs/heads/main"), rev)
	assert.Equal(t, "main", desc)

	_, _, err = gitRevisionFromSpec(&GitInclude{})
	require.Error(t, err)

	assert.Equal(t, "v1.0@abc", gitPinnedVersion("v1.0", "abc"))
	assert.Equal(t, "abc", gitPinnedVersion("abc", "abc"))
	assert.Equal(t, "head", sanitizePathSegment(" "))
	assert.Equal(t, "main_abc", sanitizePathSegment("main@abc"))
}

func TestDirChecksumIgnoresGitMetadata(t *testing.T) {
	a := memFs(t, map[string]string{
		"/r/Types.ipdlh.yaml": sharedDoc,
		"/r/.git/HEAD":        "ref: refs/heads/main",
	})
	b := memFs(t, map[string]string{
		"/r/Types.ipdlh.yaml": sharedDoc,
		"/r/.git/HEAD":        "ref: refs/heads/other",
	})
	c := memFs(t, map[string]string{
		"/r/Types.ipdlh.yaml": sharedDoc + "\n# changed\n",
	})

	sumA, err := dirChecksum(a, "/r")
	require.NoError(t, err)
	sumB, err := dirChecksum(b, "/r")
	require.NoError(t, err)
	sumC, err := dirChecksum(c, "/r")
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB)
	assert.NotEqual(t, sumA, sumC)
}

func TestGitFetcherReusesPinnedCheckout(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/cache/roots/shared/abc123/include/Types.ipdlh.yaml": sharedDoc,
	})
	f := NewGitFetcher(GitFetcherOptions{CacheDir: "/cache", Fs: fs})

	root, err := f.Fetch(context.Background(), "shared", &GitInclude{Git: "https://example.com/s.git", Rev: "abc123", Subdir: "include"})
	require.NoError(t, err)
	assert.Equal(t, "shared", root.Name)
	assert.Equal(t, "abc123", root.Version)
	assert.Equal(t, "git+https://example.com/s.git@abc123", root.Source)
	assert.NotEmpty(t, root.Checksum)
	assert.Equal(t, "/cache/roots/shared/abc123/include", RootDir("/cache", root))

	_, err = NewGitFetcher(GitFetcherOptions{}).Fetch(context.Background(), "shared", &GitInclude{Git: "x", Rev: "y"})
	require.Error(t, err)
}

type fakeFetcher struct {
	calls []string
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, name string, spec *GitInclude) (*LockedRoot, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	_, desc, err := gitRevisionFromSpec(spec)
	if err != nil {
		return nil, err
	}
	return &LockedRoot{
		Name:    name,
		Version: gitPinnedVersion(desc, "c0ffee"),
		Source:  "git+" + spec.Git + "@c0ffee",
		Subdir:  spec.Subdir,
	}, nil
}

func TestInstallGitIncludes(t *testing.T) {
	m := &Manifest{
		Path: "/proj/ipdl.yml",
		Name: "proj",
		GitIncludes: map[string]*GitInclude{
			"cached": {Git: "https://example.com/c.git", Tag: "v1"},
			"fresh":  {Git: "https://example.com/f.git", Branch: "main"},
		},
	}
	fs := memFs(t, map[string]string{
		"/cache/roots/cached/v1_c0ffee/Types.ipdlh.yaml": sharedDoc,
	})
	lock := NewLockfile("proj", "ipdlc")
	lock.Put(&LockedRoot{Name: "cached", Version: "v1@c0ffee", Source: "git+https://example.com/c.git@c0ffee"})
	lock.Put(&LockedRoot{Name: "stale", Version: "old", Source: "git+https://example.com/s.git@old"})

	fetcher := &fakeFetcher{}
	changed, logs, err := InstallGitIncludes(context.Background(), fetcher, fs, "/cache", m, lock)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"fresh"}, fetcher.calls)
	assert.Equal(t, []string{"cached: up to date (v1@c0ffee)", "fresh: fetched main@c0ffee"}, logs)

	var names []string
	for _, r := range lock.Roots {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"cached", "fresh"}, names)
	assert.Equal(t, []string{"/cache/roots/cached/v1_c0ffee", "/cache/roots/fresh/main_c0ffee"}, LockedSearchPaths("/cache", lock))

	m.GitIncludes["cached"].Tag = "v2"
	fetcher = &fakeFetcher{err: errors.New("offline")}
	_, _, err = InstallGitIncludes(context.Background(), fetcher, fs, "/cache", m, lock)
	require.EqualError(t, err, "offline")
	assert.Equal(t, []string{"cached"}, fetcher.calls)
}
