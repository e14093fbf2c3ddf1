package typechecker

import (
	"path/filepath"

	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/diag"
	"ipdl/checker-go/pkg/symbols"
	"ipdl/checker-go/pkg/types"
)

// gatherer is pass 1. It creates the type and declaration for every
// name-bearing node and records them in the checker's decorations. Each
// unit is resolved against its own symbol table.
type gatherer struct {
	c     *Checker
	diags *diag.List
	// visited holds the units reached during this Check call.
	visited map[*ast.TranslationUnit]bool
	// claimed marks the indexes in diags already attributed to a unit.
	claimed map[int]bool
}

func newGatherer(c *Checker, diags *diag.List) *gatherer {
	return &gatherer{
		c:       c,
		diags:   diags,
		visited: make(map[*ast.TranslationUnit]bool),
		claimed: make(map[int]bool),
	}
}

func (g *gatherer) deco() *Decorations { return g.c.deco }

func (g *gatherer) declare(tab *symbols.Table, d *symbols.Decl) *symbols.Decl {
	tab.Declare(d)
	return d
}

func (g *gatherer) unit(tu *ast.TranslationUnit) {
	if g.visited[tu] {
		return
	}
	g.visited[tu] = true
	deco := g.deco()
	if deco.gathered[tu] {
		g.replay(tu)
		return
	}
	deco.gathered[tu] = true
	defer g.record(tu, g.diags.Len())
	g.c.log.WithField("unit", tu.Name).Debug("gathering declarations")

	tab := g.c.builtins.newTable(g.diags)

	expected := tu.Name + ".ipdl"
	if tu.IsHeader() {
		expected += "h"
	}
	if base := filepath.Base(tu.Filename); base != expected {
		g.diags.Errorf(tu.Loc, "expected file for translation unit `%s' to be named `%s'; instead it's named `%s'", tu.Name, expected, base)
	}

	if p := tu.Protocol; p != nil {
		checkAttributes(g.diags, p.Attributes, protocolAttrs(g.c.procOptions))
		g.declareProtocol(tab, p)
	}

	for _, inc := range tu.Includes {
		g.include(tab, inc)
	}

	for _, u := range tu.Using {
		g.using(tab, u)
	}

	// Forward-declare every struct and union so they can refer to each other.
	for _, td := range tu.TypeDecls {
		g.declareTypeDecl(tab, td)
	}
	for _, td := range tu.TypeDecls {
		g.fillTypeDecl(tab, td)
	}

	if tu.Protocol != nil {
		g.protocol(tab, tu.Protocol)
	}
}

// record stores the diagnostics tu reported from start on, leaving out
// those already attributed to the units it includes.
func (g *gatherer) record(tu *ast.TranslationUnit, start int) {
	items := g.diags.Items()
	var own []diag.Diagnostic
	for i := start; i < len(items); i++ {
		if g.claimed[i] {
			continue
		}
		g.claimed[i] = true
		own = append(own, items[i])
	}
	g.deco().pass1[tu] = own
}

// replay reports again what pass 1 found in a unit gathered by an earlier
// Check call, and in everything it includes, so a unit that failed pass 1
// keeps failing it.
func (g *gatherer) replay(tu *ast.TranslationUnit) {
	for _, d := range g.deco().pass1[tu] {
		g.claimed[g.diags.Len()] = true
		g.diags.Add(d)
	}
	for _, inc := range tu.Includes {
		if inc.Unit != nil {
			g.unit(inc.Unit)
		}
	}
}

func (g *gatherer) declareProtocol(tab *symbols.Table, p *ast.Protocol) {
	deco := g.deco()
	qid := p.QName()
	fullname := qid.String()
	pt := types.NewProtocolType(
		types.QualifiedNameOf(qid),
		p.NestedUpTo(),
		p.SendSemantics,
		!p.Attributes.Has("ManualDealloc"),
		p.Attributes.Has("NeedsOtherPid"),
	)
	deco.decls[p] = g.declare(tab, &symbols.Decl{
		Loc:        p.Loc,
		Type:       pt,
		ShortName:  p.Name,
		FullName:   fullname,
		Attributes: p.Attributes,
	})

	endpoint := func(template, side string, managed bool) *symbols.Decl {
		qname := types.NewQualifiedName(template+"<"+fullname+side+">", "mozilla", "ipc")
		actor := types.NewActorType(pt)
		var t types.Type = &types.EndpointType{QName: qname, Actor: actor}
		if managed {
			t = &types.ManagedEndpointType{QName: qname, Actor: actor}
		}
		return g.declare(tab, &symbols.Decl{
			Loc:       p.Loc,
			Type:      t,
			ShortName: template + "<" + p.Name + side + ">",
		})
	}
	deco.endpoints[p] = &EndpointDecls{
		Parent:        endpoint("Endpoint", "Parent", false),
		Child:         endpoint("Endpoint", "Child", false),
		ParentManaged: endpoint("ManagedEndpoint", "Parent", true),
		ChildManaged:  endpoint("ManagedEndpoint", "Child", true),
	}
}

// include gathers the included unit, then exposes its exports here: the
// protocol and endpoint declarations of a protocol unit, or the using
// statements and compound types of a header.
func (g *gatherer) include(tab *symbols.Table, inc *ast.Include) {
	if inc.Unit == nil {
		g.diags.Errorf(inc.Loc, "(type checking here will be unreliable because of an earlier error)")
		return
	}
	g.unit(inc.Unit)

	deco := g.deco()
	if p := inc.Unit.Protocol; p != nil {
		if d, ok := deco.decls[p]; ok {
			tab.Declare(d)
		}
		if eps, ok := deco.endpoints[p]; ok {
			for _, d := range eps.all() {
				tab.Declare(d)
			}
		}
		return
	}
	for _, u := range inc.Unit.Using {
		g.using(tab, u)
	}
	for _, td := range inc.Unit.TypeDecls {
		g.declareTypeDecl(tab, td)
	}
}

// using declares an imported type. Importing the same C++ type again reuses
// the first declaration, provided the two agree on its flags.
func (g *gatherer) using(tab *symbols.Table, u *ast.UsingStmt) {
	checkAttributes(g.diags, u.Attributes, usingAttrs)

	t := importedType(u)
	fullname := u.Type.String()
	if existing := tab.Lookup(fullname); existing != nil && existing.FullName == fullname {
		switch {
		case t.Kind() == types.KindCxx && existing.Type.Kind() == types.KindCxx:
			if types.IsRefcounted(t) != types.IsRefcounted(existing.Type) {
				g.diags.Errorf(u.Loc, "inconsistent refcounted status of type `%s`", fullname)
			}
			if types.IsSendMoveOnly(t) != types.IsSendMoveOnly(existing.Type) ||
				types.IsDataMoveOnly(t) != types.IsDataMoveOnly(existing.Type) {
				g.diags.Errorf(u.Loc, "inconsistent moveonly status of type `%s`", fullname)
			}
			g.deco().decls[u] = existing
			return
		case t.Kind() == existing.Type.Kind():
			g.deco().decls[u] = existing
			return
		}
	}
	g.deco().decls[u] = g.declare(tab, &symbols.Decl{
		Loc:        u.Loc,
		Type:       t,
		ShortName:  u.Type.Base,
		FullName:   fullname,
		Attributes: u.Attributes,
	})
}

func (g *gatherer) declareTypeDecl(tab *symbols.Table, td ast.TypeDecl) {
	deco := g.deco()
	if d, ok := deco.decls[td]; ok {
		tab.Declare(d)
		return
	}
	qid := td.QName()
	qname := types.QualifiedNameOf(qid)
	var t types.Type
	var attrs ast.Attributes
	switch td := td.(type) {
	case *ast.StructDecl:
		t = types.NewStructType(qname)
		attrs = td.Attributes
	case *ast.UnionDecl:
		t = types.NewUnionType(qname)
		attrs = td.Attributes
	}
	deco.decls[td] = g.declare(tab, &symbols.Decl{
		Loc:        td.Location(),
		Type:       t,
		ShortName:  td.DeclName(),
		FullName:   qid.String(),
		Attributes: attrs,
	})
}

// fillTypeDecl resolves the member types of a struct or union. A compound
// is filled once, by the unit that declares it.
func (g *gatherer) fillTypeDecl(tab *symbols.Table, td ast.TypeDecl) {
	deco := g.deco()
	if deco.filled[td] {
		return
	}
	deco.filled[td] = true
	decl := deco.decls[td]
	if decl == nil {
		return
	}

	switch td := td.(type) {
	case *ast.StructDecl:
		st := decl.Type.(*types.StructType)
		checkAttributes(g.diags, td.Attributes, compoundAttrs)
		tab.EnterScope()
		for _, f := range td.Fields {
			name := f.Type.String()
			ft := tab.Lookup(name)
			if ft == nil {
				g.diags.Errorf(f.Loc, "field `%s' of struct `%s' has unknown type `%s'", f.Name, td.Name, name)
				continue
			}
			fd := g.declare(tab, &symbols.Decl{
				Loc:       f.Loc,
				Type:      g.canonicalType(ft.Type, f.Type),
				ShortName: f.Name,
			})
			deco.decls[f] = fd
			st.Fields = append(st.Fields, fd.Type)
		}
		tab.ExitScope()
	case *ast.UnionDecl:
		ut := decl.Type.(*types.UnionType)
		checkAttributes(g.diags, td.Attributes, compoundAttrs)
		for _, c := range td.Components {
			name := c.String()
			cd := tab.Lookup(name)
			if cd == nil {
				g.diags.Errorf(c.Loc, "unknown component type `%s' of union `%s'", name, td.Name)
				continue
			}
			ut.Alternatives = append(ut.Alternatives, g.canonicalType(cd.Type, c))
		}
	}
}

// canonicalType applies a specifier's modifiers to a resolved type, inside
// out: owning pointer, protocol to actor, non-null unless marked nullable,
// array, then maybe.
func (g *gatherer) canonicalType(t types.Type, spec *ast.TypeSpec) types.Type {
	if spec.UniquePtr {
		t = &types.UniquePtrType{Base: t}
	}
	if pt, ok := t.(*types.ProtocolType); ok {
		t = types.NewActorType(pt)
	}
	if types.SupportsNullable(t) {
		if !spec.Nullable {
			t = &types.NotNullType{Base: t}
		}
	} else if spec.Nullable {
		g.diags.Errorf(spec.Loc, "`nullable' qualifier for type `%s' is unsupported", t.Name())
	}
	if spec.Array {
		t = &types.ArrayType{Base: t}
	}
	if spec.Maybe {
		t = &types.MaybeType{Base: t}
	}
	return t
}
