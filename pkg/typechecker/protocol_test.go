package typechecker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/types"
)

func TestMutualManagesIsACycle(t *testing.T) {
	a := toplevel("PA")
	b := toplevel("PB")
	manages(a, "PB", 2)
	manages(b, "PA", 2)
	units := linked(a, b)

	res := checkUnit(t, units[0])
	assert.Equal(t, PassCheck, res.Pass)
	assert.Contains(t, res.Strings(),
		"PA.ipdl:1: error: cycle(s) detected in manager/manages hierarchy: `PA -> PB -> PA'")
	assert.Contains(t, res.Strings(),
		"PA.ipdl:2: error: |manages| declaration in protocol `PA' does not match any |manager| declaration in protocol `PB'")
}

func TestSelfManagementIsNotACycle(t *testing.T) {
	_, leaf, units := topWithLeaf()
	manages(leaf, "PLeaf", 4)
	leaf.Managers = append(leaf.Managers, ast.NewManager(ast.Loc("PLeaf.ipdl", 5), "PLeaf"))

	res := checkUnit(t, units[0])
	assert.True(t, res.WellTyped, res.Strings())
}

func TestSoleSelfManager(t *testing.T) {
	p := ast.Proto(ast.Loc("PSelf.ipdl", 1), "PSelf", ast.Async, ast.AttrIdent(ast.Loc("PSelf.ipdl", 1), "ChildProc", "any"))
	p.Managers = append(p.Managers, ast.NewManager(ast.Loc("PSelf.ipdl", 2), "PSelf"))
	manages(p, "PSelf", 3)
	p.Messages = append(p.Messages, ast.Delete(ast.Loc("PSelf.ipdl", 4)))

	res := checkUnit(t, ast.ProtocolUnit(p))
	assert.Equal(t, []string{"PSelf.ipdl:1: error: top-level protocol `PSelf' cannot manage itself"}, res.Strings())
}

func TestManagerWithoutManages(t *testing.T) {
	top := toplevel("PTop")
	leaf := managed("PLeaf", "PTop")
	units := linked(top, leaf)

	res := checkUnit(t, units[1])
	assert.Equal(t, []string{
		"PLeaf.ipdl:2: error: |manager| declaration in protocol `PLeaf' does not match any |manages| declaration in protocol `PTop'",
	}, res.Strings())
}

func TestProtocolNeedsNoMorePowerThanManager(t *testing.T) {
	top := toplevel("PTop")
	manages(top, "PLeaf", 2)
	leaf := managed("PLeaf", "PTop")
	leaf.SendSemantics = ast.Sync
	units := linked(top, leaf)

	res := checkUnit(t, units[1])
	assert.Equal(t, []string{
		"PLeaf.ipdl:1: error: protocol `PLeaf' requires more powerful send semantics than its manager `PTop' provides",
	}, res.Strings())
}

func TestManagerReferences(t *testing.T) {
	loc := ast.Loc("PLeaf.ipdl", 2)
	header := ast.HeaderUnit(ast.Loc("Types.ipdlh", 1), "Types")
	header.TypeDecls = append(header.TypeDecls, ast.Struct(ast.Loc("Types.ipdlh", 2), "Blob", ast.Field(ast.Loc("Types.ipdlh", 3), "n", "int")))

	leaf := ast.Proto(ast.Loc("PLeaf.ipdl", 1), "PLeaf", ast.Async)
	leaf.Managers = append(leaf.Managers, ast.NewManager(loc, "PNowhere"), ast.NewManager(loc, "Blob"))
	manages(leaf, "Ghost", 3)
	manages(leaf, "Blob", 4)
	leaf.Messages = append(leaf.Messages, ast.Delete(ast.Loc("PLeaf.ipdl", 5)))
	tu := ast.IncludeUnit(ast.ProtocolUnit(leaf), loc, header)

	res := checkUnit(t, tu)
	assert.Equal(t, []string{
		"PLeaf.ipdl:2: error: protocol `PNowhere' referenced as |manager| of `PLeaf' has not been declared",
		"PLeaf.ipdl:2: error: entity `Blob' referenced as |manager| of `PLeaf' is not of `protocol' type; instead it is of type `StructType'",
		"PLeaf.ipdl:3: error: protocol `Ghost', managed by `PLeaf', has not been declared",
		"PLeaf.ipdl:4: error: PLeaf declares itself managing a non-`protocol' entity `Blob' of type `StructType'",
		"PLeaf.ipdl:1: error: Toplevel protocols must specify [ChildProc]",
	}, res.Strings())
}

func TestToplevelProtocolRules(t *testing.T) {
	loc := ast.Loc("PFoo.ipdl", 1)
	p := ast.Proto(loc, "PFoo", ast.Async, ast.Attr(loc, "ManualDealloc"))

	res := checkUnit(t, ast.ProtocolUnit(p))
	assert.Equal(t, []string{
		"PFoo.ipdl:1: error: Toplevel protocols cannot be [ManualDealloc]",
		"PFoo.ipdl:1: error: Toplevel protocols must specify [ChildProc]",
	}, res.Strings())
}

func TestManagedProtocolRules(t *testing.T) {
	top := toplevel("PTop")
	manages(top, "PLeaf", 2)
	leaf := managed("PLeaf", "PTop")
	leafLoc := ast.Loc("PLeaf.ipdl", 1)
	leaf.Attributes = append(leaf.Attributes, ast.Attr(leafLoc, "NeedsOtherPid"), ast.Attr(leafLoc, "ManualDealloc"))
	manages(leaf, "PSub", 4)
	sub := managed("PSub", "PLeaf")
	units := linked(top, leaf, sub)

	res := checkUnit(t, units[1])
	assert.Equal(t, []string{
		"PLeaf.ipdl:1: error: [NeedsOtherPid] only applies to toplevel protocols",
		"PLeaf.ipdl:1: error: [ManualDealloc] protocols cannot be managers",
	}, res.Strings())
}

func TestNestedUpToWidensProtocolRange(t *testing.T) {
	loc := ast.Loc("PFoo.ipdl", 1)
	p := ast.Proto(loc, "PFoo", ast.Sync,
		ast.AttrIdent(loc, "ChildProc", "Content"),
		ast.AttrIdent(loc, "NestedUpTo", "inside_sync"))
	msgLoc := ast.Loc("PFoo.ipdl", 3)
	p.Messages = append(p.Messages, ast.Msg(msgLoc, "Sync", ast.Sync, ast.Out, nil, nil, ast.AttrIdent(msgLoc, "Nested", "inside_sync")))

	c := New(Options{})
	res, err := c.Check(ast.ProtocolUnit(p))
	require.NoError(t, err)
	assert.True(t, res.WellTyped, res.Strings())

	pt := c.Decorations().ProtocolType(p)
	assert.Equal(t, types.NestingRange{Lower: ast.NotNested, Upper: ast.InsideSync}, pt.Semantics.Nesting)
}

func TestFindCyclesReportsEveryLoop(t *testing.T) {
	mk := func(name string) *types.ProtocolType {
		return types.NewProtocolType(types.NewQualifiedName(name), ast.NotNested, ast.Async, true, false)
	}
	root, a, b, c := mk("PRoot"), mk("PA"), mk("PB"), mk("PC")
	root.Manages = []*types.ProtocolType{root, a, c}
	a.Manages = []*types.ProtocolType{b}
	b.Manages = []*types.ProtocolType{a}
	c.Manages = []*types.ProtocolType{root}

	cycles := findCycles(root, nil)
	require.Len(t, cycles, 2)
	assert.Equal(t, "`PRoot -> PA -> PB -> PA', `PRoot -> PC -> PRoot'", formatCycles(cycles))
	assert.Equal(t, "`PB -> PA -> PB'", formatCycles(findCycles(b, nil)))
}
