package typechecker

import (
	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/diag"
	"ipdl/checker-go/pkg/symbols"
	"ipdl/checker-go/pkg/types"
)

// DeclMap records the declaration resolved for each name-bearing node.
type DeclMap map[ast.Node]*symbols.Decl

// EndpointDecls are the four channel-end handle declarations that come with
// every protocol.
type EndpointDecls struct {
	Parent        *symbols.Decl
	Child         *symbols.Decl
	ParentManaged *symbols.Decl
	ChildManaged  *symbols.Decl
}

func (e *EndpointDecls) all() []*symbols.Decl {
	return []*symbols.Decl{e.Parent, e.Child, e.ParentManaged, e.ChildManaged}
}

// Decorations is everything pass 1 learned about the trees it visited. It
// outlives a single Check call so units shared between calls keep their
// declarations and types.
type Decorations struct {
	decls     DeclMap
	endpoints map[*ast.Protocol]*EndpointDecls
	owners    map[*ast.MessageDecl]*ast.Protocol
	gathered  map[*ast.TranslationUnit]bool
	filled    map[ast.TypeDecl]bool
	// pass1 holds the diagnostics each unit produced itself in pass 1.
	pass1 map[*ast.TranslationUnit][]diag.Diagnostic
}

func newDecorations() *Decorations {
	return &Decorations{
		decls:     make(DeclMap),
		endpoints: make(map[*ast.Protocol]*EndpointDecls),
		owners:    make(map[*ast.MessageDecl]*ast.Protocol),
		gathered:  make(map[*ast.TranslationUnit]bool),
		filled:    make(map[ast.TypeDecl]bool),
		pass1:     make(map[*ast.TranslationUnit][]diag.Diagnostic),
	}
}

// Decl returns the declaration pass 1 attached to n. Protocols, structs,
// unions, using statements, struct fields, managers, manages statements,
// messages and parameters are decorated.
func (d *Decorations) Decl(n ast.Node) (*symbols.Decl, bool) {
	decl, ok := d.decls[n]
	return decl, ok
}

// TypeOf is the type of n's declaration, or nil.
func (d *Decorations) TypeOf(n ast.Node) types.Type {
	if decl, ok := d.decls[n]; ok {
		return decl.Type
	}
	return nil
}

// ProtocolType is the type declared by p, or nil before p is gathered.
func (d *Decorations) ProtocolType(p *ast.Protocol) *types.ProtocolType {
	pt, _ := d.TypeOf(p).(*types.ProtocolType)
	return pt
}

func (d *Decorations) Endpoints(p *ast.Protocol) (*EndpointDecls, bool) {
	e, ok := d.endpoints[p]
	return e, ok
}

// Owner is the protocol a message was declared in.
func (d *Decorations) Owner(md *ast.MessageDecl) *ast.Protocol {
	return d.owners[md]
}

// GatherErrors returns the pass 1 diagnostics tu itself produced, not
// counting those of the units it includes.
func (d *Decorations) GatherErrors(tu *ast.TranslationUnit) []diag.Diagnostic {
	return d.pass1[tu]
}

// Gathered reports whether pass 1 has visited tu.
func (d *Decorations) Gathered(tu *ast.TranslationUnit) bool {
	return d.gathered[tu]
}
