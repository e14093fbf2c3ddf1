package driver

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipdl/checker-go/pkg/typechecker"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, contents := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0o644))
	}
	return fs
}

const ptopDoc = `
name: PTop
includes: [{name: PLeaf, protocol: true, line: 2}, {name: Shared, line: 3}]
protocol:
  name: PTop
  line: 1
  attributes: [{name: ChildProc, value: any}]
  manages: [{name: PLeaf, line: 4}]
  messages:
    - {name: PLeaf, direction: out, line: 5, params: [{name: s, type: Blob}]}
`

const pleafDoc = `
name: PLeaf
includes: [{name: PTop, protocol: true, line: 2}, {name: Shared, line: 3}]
protocol:
  name: PLeaf
  line: 1
  managers: [{name: PTop, line: 4}]
  messages:
    - {name: __delete__, direction: in, line: 5}
`

const sharedDoc = `
types:
  - kind: struct
    name: Blob
    line: 1
    fields: [{name: n, type: int, line: 2}]
`

func TestLoaderLinksCyclesAndDiamonds(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/src/PTop.ipdl.yaml":      ptopDoc,
		"/src/PLeaf.ipdl.yaml":     pleafDoc,
		"/inc/Shared.ipdlh.yaml":   sharedDoc,
		"/other/Shared.ipdlh.yaml": "bogus: [",
	})
	l := NewLoader(LoaderOptions{Fs: fs, SearchPaths: []string{"/inc", "/other", "/inc/"}})
	assert.Equal(t, []string{"/inc", "/other"}, l.SearchPaths())

	top, err := l.Load("/src/PTop.ipdl.yaml")
	require.NoError(t, err)

	leaf := top.Includes[0].Unit
	require.NotNil(t, leaf)
	assert.Equal(t, "PLeaf", leaf.Name)
	assert.Same(t, top, leaf.Includes[0].Unit)
	assert.Same(t, top.Includes[1].Unit, leaf.Includes[1].Unit)
	assert.Len(t, l.Units(), 3)

	again, err := l.Load("/src/PTop.ipdl.yaml")
	require.NoError(t, err)
	assert.Same(t, top, again)

	res, err := typechecker.New(typechecker.Options{}).Check(top)
	require.NoError(t, err)
	assert.True(t, res.WellTyped, res.Strings())
}

func TestLoaderLeavesMissingIncludesUnresolved(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/src/PFoo.ipdl.yaml": `
protocol:
  name: PFoo
  attributes: [{name: ChildProc, value: any}]
includes: [{name: Gone, line: 2}]
`,
	})
	l := NewLoader(LoaderOptions{Fs: fs})
	tu, err := l.Load("/src/PFoo.ipdl.yaml")
	require.NoError(t, err)
	require.Len(t, tu.Includes, 1)
	assert.Nil(t, tu.Includes[0].Unit)

	res, err := typechecker.New(typechecker.Options{}).Check(tu)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"PFoo.ipdl:2: error: (type checking here will be unreliable because of an earlier error)",
	}, res.Strings())
}

func TestLoaderErrors(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/src/PFoo.ipdl.yaml":    "includes: [{name: Broken}]\n",
		"/src/Broken.ipdlh.yaml": "types: [{kind: enum, name: E}]\n",
	})
	l := NewLoader(LoaderOptions{Fs: fs})

	_, err := l.Load("/src/PFoo.ipdl.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken.ipdlh.yaml")

	_, err = l.Load("/src/Nope.ipdl.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader: open /src/Nope.ipdl.yaml")

	_, err = l.Load("")
	require.Error(t, err)
}

func TestResolvePrefersIncludingDirectory(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/a/Types.ipdlh.yaml": sharedDoc,
		"/b/Types.ipdlh.yaml": sharedDoc,
	})
	l := NewLoader(LoaderOptions{Fs: fs, SearchPaths: []string{"/b"}})

	path, ok := l.Resolve("Types", false, "/a")
	require.True(t, ok)
	assert.Equal(t, "/a/Types.ipdlh.yaml", path)

	path, ok = l.Resolve("Types", false, "/c")
	require.True(t, ok)
	assert.Equal(t, "/b/Types.ipdlh.yaml", path)

	_, ok = l.Resolve("Types", true, "/a")
	assert.False(t, ok)
}
