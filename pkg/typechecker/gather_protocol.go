package typechecker

import (
	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/symbols"
	"ipdl/checker-go/pkg/types"
)

// protocol declares managers, managed protocols and messages in a protocol
// scope, then applies the protocol-level declaration rules.
func (g *gatherer) protocol(tab *symbols.Table, p *ast.Protocol) {
	deco := g.deco()
	pdecl := deco.decls[p]
	pt := pdecl.Type.(*types.ProtocolType)

	tab.EnterScope()
	defer tab.ExitScope()

	seen := make(map[string]bool, len(p.Managers))
	for _, mgr := range p.Managers {
		if seen[mgr.Name] {
			g.diags.Errorf(mgr.Loc, "manager `%s' appears multiple times", mgr.Name)
			continue
		}
		seen[mgr.Name] = true
		g.manager(tab, pdecl, mgr)
	}
	for _, mgs := range p.Manages {
		g.manages(tab, pdecl, mgs)
	}
	for _, md := range p.Messages {
		g.message(tab, p, pdecl, md)
	}

	pt.HasDelete = tab.Lookup(deleteMessage) != nil
	if !pt.HasDelete && !pt.IsToplevel() {
		g.diags.Errorf(p.Loc, "destructor declaration `%s(...)' required for managed protocol `%s'", deleteMessage, p.Name)
	}
	if !pt.IsToplevel() && pt.NeedsOtherPid {
		g.diags.Errorf(p.Loc, "[NeedsOtherPid] only applies to toplevel protocols")
	}
	if pt.IsToplevel() {
		if !pt.Refcounted {
			g.diags.Errorf(p.Loc, "Toplevel protocols cannot be [ManualDealloc]")
		}
		if !p.Attributes.Has("ChildProc") {
			g.diags.Errorf(p.Loc, "Toplevel protocols must specify [ChildProc]")
		}
	}
	if pt.IsManager() && !pt.Refcounted {
		g.diags.Errorf(p.Loc, "[ManualDealloc] protocols cannot be managers")
	}
}

func (g *gatherer) manager(tab *symbols.Table, pdecl *symbols.Decl, mgr *ast.Manager) {
	d := tab.Lookup(mgr.Name)
	switch {
	case d == nil:
		g.diags.Errorf(mgr.Loc, "protocol `%s' referenced as |manager| of `%s' has not been declared", mgr.Name, pdecl.ShortName)
	case d.Type.Kind() != types.KindProtocol:
		g.diags.Errorf(mgr.Loc, "entity `%s' referenced as |manager| of `%s' is not of `protocol' type; instead it is of type `%s'",
			mgr.Name, pdecl.ShortName, types.TypeName(d.Type))
	default:
		g.deco().decls[mgr] = d
		pdecl.Type.(*types.ProtocolType).AddManager(d.Type.(*types.ProtocolType))
	}
}

func (g *gatherer) manages(tab *symbols.Table, pdecl *symbols.Decl, mgs *ast.ManagesStmt) {
	d := tab.Lookup(mgs.Name)
	switch {
	case d == nil:
		g.diags.Errorf(mgs.Loc, "protocol `%s', managed by `%s', has not been declared", mgs.Name, pdecl.ShortName)
	case d.Type.Kind() != types.KindProtocol:
		g.diags.Errorf(mgs.Loc, "%s declares itself managing a non-`protocol' entity `%s' of type `%s'",
			pdecl.ShortName, mgs.Name, types.TypeName(d.Type))
	default:
		g.deco().decls[mgs] = d
		pt := pdecl.Type.(*types.ProtocolType)
		pt.Manages = append(pt.Manages, d.Type.(*types.ProtocolType))
	}
}

// message declares md in the protocol scope. A message named after a
// protocol constructs it; the message named __delete__ destroys the
// enclosing protocol.
func (g *gatherer) message(tab *symbols.Table, p *ast.Protocol, pdecl *symbols.Decl, md *ast.MessageDecl) {
	deco := g.deco()
	name := md.Name
	loc := md.Loc

	checkAttributes(g.diags, md.Attributes, messageAttrs)

	if md.SendSemantics != ast.Async && md.Attributes.Has("LazySend") {
		g.diags.Errorf(loc, "non-async message `%s' cannot specify [LazySend]", name)
	}
	if md.SendSemantics != ast.Async && md.Attributes.Has("ReplyPriority") {
		g.diags.Errorf(loc, "non-async message `%s' cannot specify [ReplyPriority]", name)
	}
	if len(md.OutParams) == 0 && md.Attributes.Has("ReplyPriority") {
		g.diags.Errorf(loc, "non-returns message `%s' cannot specify [ReplyPriority]", name)
	}

	var (
		ctor, dtor  bool
		constructed *types.ProtocolType
	)
	if d := tab.Lookup(name); d != nil {
		if cp, ok := d.Type.(*types.ProtocolType); ok {
			name += ctorSuffix
			ctor = true
			constructed = cp
		} else {
			g.diags.Errorf(loc, "message name `%s' already declared as `%s'", name, types.TypeName(d.Type))
		}
	}
	if name == deleteMessage {
		if md.SendSemantics != ast.Async {
			g.diags.Errorf(loc, "destructor must be async")
		}
		if len(md.OutParams) > 0 {
			g.diags.Errorf(loc, "destructors cannot return values")
		}
		dtor = true
		constructed = pdecl.Type.(*types.ProtocolType)
	}

	pq := types.QualifiedNameOf(p.QName())
	mt := &types.MessageType{
		QName:         types.QualifiedName{Quals: append(append([]string{}, pq.Quals...), pq.Base), Base: name},
		Semantics:     types.Semantics{Send: md.SendSemantics, Nesting: types.Exactly(md.Nested())},
		Nested:        md.Nested(),
		Priority:      md.Priority(),
		ReplyPriority: md.ReplyPriority(),
		Direction:     md.Direction,
		Ctor:          ctor,
		Dtor:          dtor,
		Constructed:   constructed,
		Compress:      compressPolicy(md.Attributes),
		Tainted:       md.Attributes.Has("Tainted"),
		LazySend:      md.Attributes.Has("LazySend"),
	}

	tab.EnterScope()
	for _, param := range md.InParams {
		mt.Params = append(mt.Params, g.param(tab, md, name, param).Type)
	}
	for _, param := range md.OutParams {
		mt.Returns = append(mt.Returns, g.param(tab, md, name, param).Type)
	}
	tab.ExitScope()

	deco.decls[md] = g.declare(tab, &symbols.Decl{
		Loc:        loc,
		Type:       mt,
		ProgName:   name,
		Attributes: md.Attributes,
	})
	deco.owners[md] = p
}

// param resolves one parameter. An unknown type name is reported and
// replaced by void so checking can continue.
func (g *gatherer) param(tab *symbols.Table, md *ast.MessageDecl, msgName string, param *ast.Param) *symbols.Decl {
	checkAttributes(g.diags, param.Attributes, paramAttrs)

	typeName := param.Type.BaseName()
	loc := param.Type.Loc
	if param.Attributes.Has("NoTaint") && !md.Attributes.Has("Tainted") {
		g.diags.Errorf(loc, "argument typename `%s' of message `%s' has a NoTaint attribute, but the message lacks the Tainted attribute", typeName, msgName)
	}

	var t types.Type = types.Void
	if d := tab.Lookup(typeName); d == nil {
		g.diags.Errorf(loc, "argument typename `%s' of message `%s' has not been declared", typeName, msgName)
	} else {
		t = g.canonicalType(d.Type, param.Type)
	}
	d := g.declare(tab, &symbols.Decl{
		Loc:        loc,
		Type:       t,
		ProgName:   param.Name,
		Attributes: param.Attributes,
	})
	g.deco().decls[param] = d
	return d
}

func compressPolicy(attrs ast.Attributes) types.CompressPolicy {
	attr := attrs.Get("Compress")
	switch {
	case attr == nil:
		return types.CompressNone
	case attr.Value != nil && attr.Value.Text == "all":
		return types.CompressAll
	default:
		return types.Compress
	}
}
