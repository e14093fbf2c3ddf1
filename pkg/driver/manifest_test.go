package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/ipdl.yml": `
name: dom-ipc
include_paths: [ipc, /opt/ipdl/include]
git_includes:
  shared:
    git: https://example.com/shared-ipdl.git
    tag: v1.2.0
    subdir: include
builtin_types: ["::mozilla::ipc::Handle"]
c_types: [bool, int]
process_types: Sandbox
cache_dir: .ipdl-cache
`,
	})

	m, err := LoadManifest(fs, "/proj/ipdl.yml")
	require.NoError(t, err)
	assert.Equal(t, "/proj/ipdl.yml", m.Path)
	assert.Equal(t, "dom-ipc", m.Name)
	assert.Equal(t, []string{"/proj/ipc", "/opt/ipdl/include"}, m.SearchPaths())
	assert.Equal(t, []string{"::mozilla::ipc::Handle"}, m.BuiltinTypes)
	assert.Equal(t, []string{"bool", "int"}, m.CTypes)
	assert.Equal(t, []string{"Sandbox"}, m.ProcessTypes)
	assert.Equal(t, "/proj/.ipdl-cache", m.ResolvedCacheDir())
	assert.Equal(t, []string{"shared"}, m.GitIncludeNames())
	assert.Equal(t, &GitInclude{Git: "https://example.com/shared-ipdl.git", Tag: "v1.2.0", Subdir: "include"}, m.GitIncludes["shared"])
}

func TestLoadManifestValidation(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/ipdl.yml": `
include_paths: [""]
git_includes:
  "bad name": {git: https://example.com/x.git, rev: abc}
  pinned: {git: https://example.com/y.git, tag: v1, branch: main}
  loose: {subdir: ../up}
c_types: [int, int, "unsigned int"]
builtin_types: ["mozilla::Ok", "not a type"]
`,
	})

	_, err := LoadManifest(fs, "/proj/ipdl.yml")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, []string{
		"name must be provided",
		"include_paths[0] must be a non-empty string",
		`builtin_types[1]: invalid name "not a type"`,
		`c_types[1]: duplicate name "int"`,
		`c_types[2]: invalid name "unsigned int"`,
		"git_includes.bad name: name may only contain letters, digits, '.', '-' and '_'",
		"git_includes.loose: git URL must be provided",
		"git_includes.loose: must specify rev, tag, or branch",
		`git_includes.loose: subdir "../up" must stay inside the checkout`,
		"git_includes.pinned: rev, tag and branch are mutually exclusive",
	}, verr.Issues)
	assert.Contains(t, err.Error(), "manifest validation failed:\n- name must be provided")
}

func TestLoadManifestErrors(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/empty/ipdl.yml":   "",
		"/unknown/ipdl.yml": "name: x\ntargets: {}\n",
	})

	_, err := LoadManifest(fs, "/empty/ipdl.yml")
	require.EqualError(t, err, "manifest: /empty/ipdl.yml is empty")

	_, err = LoadManifest(fs, "/unknown/ipdl.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field targets not found")

	_, err = LoadManifest(fs, "/missing/ipdl.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest: open /missing/ipdl.yml")

	_, err = LoadManifest(fs, "")
	require.EqualError(t, err, "manifest: empty path")
}

func TestFindManifest(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/ipdl.yml":                  "name: proj\n",
		"/proj/dom/ipc/PFoo.ipdl.yaml":    "",
		"/elsewhere/deep/PBar.ipdl.yaml":  "",
		"/proj/dom/ipc/nested/ipdl.yml/x": "",
	})

	path, err := FindManifest(fs, "/proj/dom/ipc/PFoo.ipdl.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/proj/ipdl.yml", path)

	path, err = FindManifest(fs, "/proj/dom/ipc/nested")
	require.NoError(t, err)
	assert.Equal(t, "/proj/ipdl.yml", path)

	_, err = FindManifest(fs, "/elsewhere/deep")
	require.ErrorIs(t, err, ErrManifestNotFound)
}
