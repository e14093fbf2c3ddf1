package typechecker

import (
	"strings"

	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/diag"
	"ipdl/checker-go/pkg/types"
)

// constraintChecker is pass 2. It only reads what pass 1 recorded.
type constraintChecker struct {
	c     *Checker
	diags *diag.List
}

// unit checks the protocols of included protocol units, skipping any
// file already seen, then tu's own compound types and protocol.
func (k *constraintChecker) unit(tu *ast.TranslationUnit, visited map[string]bool) {
	for _, inc := range tu.Includes {
		if inc.Unit == nil || visited[inc.Unit.Filename] {
			continue
		}
		visited[inc.Unit.Filename] = true
		if inc.Unit.Protocol != nil {
			k.protocol(inc.Unit.Protocol)
		}
	}

	for _, td := range tu.TypeDecls {
		k.typeDecl(td)
	}

	if tu.Protocol != nil {
		k.protocol(tu.Protocol)
	}
}

func (k *constraintChecker) typeDecl(td ast.TypeDecl) {
	d, ok := k.c.deco.decls[td]
	if !ok || types.FullyDefined(d.Type) {
		return
	}
	switch td.(type) {
	case *ast.StructDecl:
		k.diags.Errorf(d.Loc, "struct `%s' is only partially defined", td.DeclName())
	case *ast.UnionDecl:
		k.diags.Errorf(d.Loc, "union `%s' is only partially defined", td.DeclName())
	}
}

func (k *constraintChecker) protocol(p *ast.Protocol) {
	deco := k.c.deco
	pdecl, ok := deco.decls[p]
	if !ok {
		return
	}
	pt := pdecl.Type.(*types.ProtocolType)
	pname := pdecl.ShortName

	for _, mgr := range pt.Managers {
		if !pt.Semantics.SatisfiedBy(mgr.Semantics) {
			k.diags.Errorf(pdecl.Loc, "protocol `%s' requires more powerful send semantics than its manager `%s' provides", pname, mgr.Name())
		}
	}

	if pt.IsToplevel() {
		if cycles := findCycles(pt, nil); len(cycles) > 0 {
			k.diags.Errorf(pdecl.Loc, "cycle(s) detected in manager/manages hierarchy: %s", formatCycles(cycles))
		}
	}

	if m, ok := pt.Manager(); ok && m == pt {
		k.diags.Errorf(pdecl.Loc, "top-level protocol `%s' cannot manage itself", p.Name)
	}

	for _, mgr := range p.Managers {
		mdecl, ok := deco.decls[mgr]
		if !ok {
			continue
		}
		mt := mdecl.Type.(*types.ProtocolType)
		if !mt.IsManagerOf(pt) {
			k.diags.Errorf(mgr.Loc, "|manager| declaration in protocol `%s' does not match any |manages| declaration in protocol `%s'", pname, mdecl.ShortName)
		}
	}

	for _, mgs := range p.Manages {
		mdecl, ok := deco.decls[mgs]
		if !ok {
			continue
		}
		mt := mdecl.Type.(*types.ProtocolType)
		if !mt.IsManagedBy(pt) {
			k.diags.Errorf(mgs.Loc, "|manages| declaration in protocol `%s' does not match any |manager| declaration in protocol `%s'", pname, mdecl.ShortName)
		}
	}

	for _, md := range p.Messages {
		k.message(pt, pname, md)
	}
}

func (k *constraintChecker) message(pt *types.ProtocolType, pname string, md *ast.MessageDecl) {
	d, ok := k.c.deco.decls[md]
	if !ok {
		return
	}
	mt := d.Type.(*types.MessageType)
	name := d.ProgName
	loc := d.Loc

	if mt.Nested == ast.InsideSync && !mt.Semantics.IsSync() {
		k.diags.Errorf(loc, "inside_sync nested messages must be sync (here, message `%s' in protocol `%s')", name, pname)
	}
	if mt.Nested == ast.InsideCPOW && (mt.IsOut() || mt.IsInout()) {
		k.diags.Errorf(loc, "inside_cpow nested parent-to-child messages are verboten (here, message `%s' in protocol `%s')", name, pname)
	}
	// Sync messages sent by the parent must be nested inside_sync.
	if mt.Semantics.IsSync() && mt.Nested == ast.NotNested && (mt.IsOut() || mt.IsInout()) {
		k.diags.Errorf(loc, "sync parent-to-child messages are verboten (here, message `%s' in protocol `%s')", name, pname)
	}

	if !mt.Semantics.SatisfiedBy(pt.Semantics) {
		k.diags.Errorf(loc, "message `%s' requires more powerful send semantics than its protocol `%s' provides", name, pname)
	}

	if (mt.Ctor || mt.Dtor) && mt.Semantics.IsAsync() && len(mt.Returns) > 0 {
		k.diags.Errorf(loc, "asynchronous ctor/dtor message `%s' declares return values", name)
	}

	if mt.Compress != types.CompressNone && (!mt.Semantics.IsAsync() || mt.Ctor || mt.Dtor) {
		switch {
		case mt.Ctor:
			k.diags.Errorf(loc, "constructor messages can't use compression (here, in protocol `%s')", pname)
		case mt.Dtor:
			k.diags.Errorf(loc, "destructor messages can't use compression (here, in protocol `%s')", pname)
		default:
			k.diags.Errorf(loc, "message `%s' in protocol `%s' requests compression but is not async", name, pname)
		}
	}

	if mt.Ctor && !pt.IsManagerOf(mt.Constructed) {
		k.diags.Errorf(loc, "ctor for protocol `%s', which is not managed by protocol `%s'", strings.TrimSuffix(name, ctorSuffix), pname)
	}
}
