package typechecker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/types"
)

func TestCheckRejectsNilUnit(t *testing.T) {
	_, err := New(Options{}).Check(nil)
	require.Error(t, err)
}

func TestManagedPairIsWellTyped(t *testing.T) {
	_, _, units := topWithLeaf()

	res := checkUnit(t, units[0])
	assert.True(t, res.WellTyped)
	assert.Empty(t, res.Diagnostics)
	assert.Empty(t, res.Pass)
}

func TestManagedProtocolRequiresDestructor(t *testing.T) {
	top := toplevel("PTop")
	manages(top, "PLeaf", 2)
	leaf := ast.Proto(ast.Loc("PLeaf.ipdl", 1), "PLeaf", ast.Async)
	leaf.Managers = append(leaf.Managers, ast.NewManager(ast.Loc("PLeaf.ipdl", 2), "PTop"))
	units := linked(top, leaf)

	res := checkUnit(t, units[0])
	assert.False(t, res.WellTyped)
	assert.Equal(t, PassGather, res.Pass)
	assert.Equal(t, []string{
		"PLeaf.ipdl:1: error: destructor declaration `__delete__(...)' required for managed protocol `PLeaf'",
	}, res.Strings())
}

func TestDirectlySelfReferentialStruct(t *testing.T) {
	loc := ast.Loc("Shapes.ipdlh", 4)
	tu := ast.HeaderUnit(ast.Loc("Shapes.ipdlh", 1), "Shapes")
	tu.TypeDecls = append(tu.TypeDecls, ast.Struct(loc, "S", ast.Field(ast.Loc("Shapes.ipdlh", 5), "field", "S")))

	res := checkUnit(t, tu)
	assert.Equal(t, PassCheck, res.Pass)
	assert.Equal(t, []string{"Shapes.ipdlh:4: error: struct `S' is only partially defined"}, res.Strings())
}

func TestSyncParentToChildInAsyncProtocol(t *testing.T) {
	p := toplevel("PFoo")
	p.Messages = append(p.Messages, ast.Msg(ast.Loc("PFoo.ipdl", 3), "Ping", ast.Sync, ast.Out, nil, nil))

	res := checkUnit(t, ast.ProtocolUnit(p))
	assert.Equal(t, []string{
		"PFoo.ipdl:3: error: sync parent-to-child messages are verboten (here, message `Ping' in protocol `PFoo')",
		"PFoo.ipdl:3: error: message `Ping' requires more powerful send semantics than its protocol `PFoo' provides",
	}, res.Strings())
}

func TestCompressedConstructor(t *testing.T) {
	top, _, units := topWithLeaf()
	loc := ast.Loc("PTop.ipdl", 5)
	top.Messages = append(top.Messages, ast.Msg(loc, "PLeaf", ast.Async, ast.Out, nil, nil, ast.Attr(loc, "Compress")))

	res := checkUnit(t, units[0])
	assert.Equal(t, []string{
		"PTop.ipdl:5: error: constructor messages can't use compression (here, in protocol `PTop')",
	}, res.Strings())
}

func TestDuplicateManager(t *testing.T) {
	_, leaf, units := topWithLeaf()
	leaf.Managers = append(leaf.Managers, ast.NewManager(ast.Loc("PLeaf.ipdl", 7), "PTop"))

	res := checkUnit(t, units[1])
	assert.Equal(t, []string{"PLeaf.ipdl:7: error: manager `PTop' appears multiple times"}, res.Strings())
}

func TestDecorationsDescribeProtocolGraph(t *testing.T) {
	top, leaf, units := topWithLeaf()
	ctor := ast.Msg(ast.Loc("PTop.ipdl", 4), "PLeaf", ast.Async, ast.Out,
		[]*ast.Param{ast.Arg(ast.Loc("PTop.ipdl", 4), "id", "int")}, nil)
	top.Messages = append(top.Messages, ctor)

	c := New(Options{})
	res, err := c.Check(units[0])
	require.NoError(t, err)
	require.True(t, res.WellTyped, res.Strings())

	deco := c.Decorations()
	topType := deco.ProtocolType(top)
	leafType := deco.ProtocolType(leaf)
	require.NotNil(t, topType)
	require.NotNil(t, leafType)
	assert.True(t, topType.IsManagerOf(leafType))
	assert.Same(t, topType, leafType.Toplevel())
	assert.True(t, leafType.HasDelete)
	assert.False(t, topType.HasDelete)

	mt, ok := deco.TypeOf(ctor).(*types.MessageType)
	require.True(t, ok)
	assert.True(t, mt.IsCtor())
	assert.Same(t, leafType, mt.Constructed)
	assert.Equal(t, "PTop::PLeafConstructor", mt.FullName())
	assert.Equal(t, []types.Type{types.NewBuiltinType("int")}, mt.Params)
	assert.Same(t, top, deco.Owner(ctor))

	eps, ok := deco.Endpoints(leaf)
	require.True(t, ok)
	assert.Equal(t, "Endpoint<PLeafParent>", eps.Parent.ShortName)
	assert.Equal(t, "mozilla::ipc::Endpoint<PLeafParent>", eps.Parent.Type.FullName())
	assert.Equal(t, "mozilla::ipc::ManagedEndpoint<PLeafChild>", eps.ChildManaged.Type.FullName())
	assert.True(t, deco.Gathered(units[1]))
}

func TestSessionReusesGatheredUnits(t *testing.T) {
	_, _, units := topWithLeaf()
	c := New(Options{})

	first, err := c.Check(units[1])
	require.NoError(t, err)
	require.True(t, first.WellTyped, first.Strings())

	second, err := c.Check(units[0])
	require.NoError(t, err)
	assert.True(t, second.WellTyped, second.Strings())
	assert.Empty(t, second.Diagnostics)
}

func TestSessionKeepsGatherErrorsOfSharedUnits(t *testing.T) {
	bad := header("Bad")
	bad.TypeDecls = append(bad.TypeDecls,
		ast.Struct(hloc("Bad", 2), "S", ast.Field(hloc("Bad", 3), "f", "Missing")))
	a := ast.IncludeUnit(header("A"), hloc("A", 2), bad)
	cu := ast.IncludeUnit(header("C"), hloc("C", 2), bad)
	d := ast.IncludeUnit(ast.IncludeUnit(header("D"), hloc("D", 2), a), hloc("D", 3), bad)

	want := []string{"Bad.ipdlh:3: error: field `f' of struct `S' has unknown type `Missing'"}
	c := New(Options{})
	for _, tu := range []*ast.TranslationUnit{a, bad, cu, d, a} {
		res, err := c.Check(tu)
		require.NoError(t, err)
		assert.False(t, res.WellTyped, tu.Name)
		assert.Equal(t, PassGather, res.Pass, tu.Name)
		assert.Equal(t, want, res.Strings(), tu.Name)
	}

	assert.Len(t, c.Decorations().GatherErrors(bad), 1)
	assert.Empty(t, c.Decorations().GatherErrors(a))
}

func TestPassOneGatesPassTwo(t *testing.T) {
	p := toplevel("PFoo")
	p.Messages = append(p.Messages,
		ast.Msg(ast.Loc("PFoo.ipdl", 3), "Ping", ast.Sync, ast.Out, nil, nil),
		ast.Msg(ast.Loc("PFoo.ipdl", 4), "Pong", ast.Async, ast.In,
			[]*ast.Param{ast.Arg(ast.Loc("PFoo.ipdl", 4), "x", "Missing")}, nil),
	)

	res := checkUnit(t, ast.ProtocolUnit(p))
	assert.Equal(t, PassGather, res.Pass)
	assert.Equal(t, []string{
		"PFoo.ipdl:4: error: argument typename `Missing' of message `Pong' has not been declared",
	}, res.Strings())
}

func TestFilenameMustMatchUnitName(t *testing.T) {
	tu := ast.ProtocolUnit(toplevel("PFoo"))
	tu.Filename = "dom/ipc/PBar.ipdl"

	res := checkUnit(t, tu)
	assert.Equal(t, []string{
		"PFoo.ipdl:1: error: expected file for translation unit `PFoo' to be named `PFoo.ipdl'; instead it's named `PBar.ipdl'",
	}, res.Strings())

	header := ast.HeaderUnit(ast.Loc("Types.ipdl", 1), "Types")
	header.Filename = "Types.ipdl"
	res = checkUnit(t, header)
	assert.Equal(t, []string{
		"Types.ipdl:1: error: expected file for translation unit `Types' to be named `Types.ipdlh'; instead it's named `Types.ipdl'",
	}, res.Strings())
}

func TestUnresolvedInclude(t *testing.T) {
	tu := ast.ProtocolUnit(toplevel("PFoo"))
	tu.Includes = append(tu.Includes, ast.NewInclude(ast.Loc("PFoo.ipdl", 0), "PGone", true, nil))

	res := checkUnit(t, tu)
	assert.Equal(t, []string{
		"PFoo.ipdl:0: error: (type checking here will be unreliable because of an earlier error)",
	}, res.Strings())
}
