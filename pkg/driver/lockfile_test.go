package driver

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockfileRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	lock := NewLockfile("dom ipc", "ipdlc test")
	lock.Put(&LockedRoot{Name: "zeta", Version: "main@abc", Source: "git+https://example.com/z.git@abc", Checksum: "11"})
	lock.Put(&LockedRoot{Name: "alpha", Version: "v1@def", Source: "git+https://example.com/a.git@def", Subdir: "include", Checksum: "22"})

	require.NoError(t, WriteLockfile(fs, lock, "/proj/ipdl.lock"))

	loaded, err := LoadLockfile(fs, "/proj/ipdl.lock")
	require.NoError(t, err)
	assert.Equal(t, "/proj/ipdl.lock", loaded.Path)
	assert.Equal(t, "dom_ipc", loaded.Root)
	assert.Equal(t, "ipdlc test", loaded.Tool)
	assert.Equal(t, lock.Generated, loaded.Generated)
	require.Len(t, loaded.Roots, 2)
	assert.Equal(t, "alpha", loaded.Roots[0].Name)
	assert.Equal(t, "include", loaded.Roots[0].Subdir)
	assert.Equal(t, "zeta", loaded.Roots[1].Name)
}

func TestLoadLockfileMissing(t *testing.T) {
	_, err := LoadLockfile(afero.NewMemMapFs(), "/proj/ipdl.lock")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLockfilePutAndPrune(t *testing.T) {
	lock := NewLockfile("proj", "ipdlc")
	root := &LockedRoot{Name: "shared", Version: "v1@abc", Source: "git+u@abc"}

	assert.True(t, lock.Put(root))
	assert.False(t, lock.Put(&LockedRoot{Name: "shared", Version: "v1@abc", Source: "git+u@abc"}))
	assert.True(t, lock.Put(&LockedRoot{Name: "shared", Version: "v2@fed", Source: "git+u@fed"}))

	found, ok := lock.Find("shared")
	require.True(t, ok)
	assert.Equal(t, "v2@fed", found.Version)

	assert.False(t, lock.Prune([]string{"shared"}))
	assert.True(t, lock.Prune(nil))
	assert.Empty(t, lock.Roots)
}
