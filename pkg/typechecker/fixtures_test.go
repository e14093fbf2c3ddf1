package typechecker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ipdl/checker-go/pkg/ast"
)

func checkUnit(t *testing.T, tu *ast.TranslationUnit) *Result {
	t.Helper()
	res, err := New(Options{}).Check(tu)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

// toplevel builds an async top-level protocol bound to any child process.
func toplevel(name string, attrs ...*ast.Attribute) *ast.Protocol {
	loc := ast.Loc(name+".ipdl", 1)
	attrs = append([]*ast.Attribute{ast.AttrIdent(loc, "ChildProc", "any")}, attrs...)
	return ast.Proto(loc, name, ast.Async, attrs...)
}

// managed builds an async protocol managed by manager, with a destructor.
func managed(name, manager string) *ast.Protocol {
	p := ast.Proto(ast.Loc(name+".ipdl", 1), name, ast.Async)
	p.Managers = append(p.Managers, ast.NewManager(ast.Loc(name+".ipdl", 2), manager))
	p.Messages = append(p.Messages, ast.Delete(ast.Loc(name+".ipdl", 3)))
	return p
}

func manages(p *ast.Protocol, name string, line int) {
	p.Manages = append(p.Manages, ast.NewManagesStmt(ast.Loc(p.Name+".ipdl", line), name))
}

// linked wraps each protocol in its own unit and makes every unit include
// every other one.
func linked(protocols ...*ast.Protocol) []*ast.TranslationUnit {
	units := make([]*ast.TranslationUnit, len(protocols))
	for i, p := range protocols {
		units[i] = ast.ProtocolUnit(p)
	}
	for i, tu := range units {
		for j, other := range units {
			if i != j {
				ast.IncludeUnit(tu, ast.Loc(tu.Filename, 0), other)
			}
		}
	}
	return units
}

// topWithLeaf is a top-level PTop managing PLeaf.
func topWithLeaf() (top, leaf *ast.Protocol, units []*ast.TranslationUnit) {
	top = toplevel("PTop")
	manages(top, "PLeaf", 2)
	leaf = managed("PLeaf", "PTop")
	return top, leaf, linked(top, leaf)
}
