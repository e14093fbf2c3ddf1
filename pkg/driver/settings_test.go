package driver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	t.Setenv("IPDL_INCLUDE_PATH", "/a,/b")
	t.Setenv("IPDL_CACHE_DIR", "/var/cache/ipdl")
	t.Setenv("IPDL_NO_COLOR", "true")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, Settings{
		IncludePath: []string{"/a", "/b"},
		CacheDir:    "/var/cache/ipdl",
		LogLevel:    "info",
		NoColor:     true,
	}, s)
}

func TestLoadSettingsRejectsBadValues(t *testing.T) {
	t.Setenv("IPDL_NO_COLOR", "maybe")

	_, err := LoadSettings()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings:")
}

func TestResolveCacheDir(t *testing.T) {
	m := &Manifest{Path: "/proj/ipdl.yml", CacheDir: "cache"}

	dir, err := ResolveCacheDir(Settings{CacheDir: "/env/cache"}, m)
	require.NoError(t, err)
	assert.Equal(t, "/env/cache", dir)

	dir, err = ResolveCacheDir(Settings{}, m)
	require.NoError(t, err)
	assert.Equal(t, "/proj/cache", dir)

	t.Setenv("HOME", "/home/tester")
	dir, err = ResolveCacheDir(Settings{}, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".ipdl"), dir)
}
