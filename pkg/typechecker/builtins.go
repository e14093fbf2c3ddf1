package typechecker

import (
	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/diag"
	"ipdl/checker-go/pkg/symbols"
	"ipdl/checker-go/pkg/types"
)

// CTypes are the primitive C types every unit can name.
var CTypes = []string{
	"bool",
	"char",
	"short",
	"int",
	"long",
	"float",
	"double",
	"int8_t",
	"uint8_t",
	"int16_t",
	"uint16_t",
	"int32_t",
	"uint32_t",
	"int64_t",
	"uint64_t",
	"intptr_t",
	"uintptr_t",
}

// BuiltinTypes are the C++ types every unit implicitly imports.
var BuiltinTypes = []string{
	"::nsresult",
	"::nsString",
	"::nsCString",
	"::nsDependentSubstring",
	"::nsDependentCSubstring",
	"::mozilla::ipc::Shmem",
	"::mozilla::ipc::ByteBuf",
	"::mozilla::UniquePtr",
	"::mozilla::ipc::FileDescriptor",
}

// ProcessTypes are the registered process categories a protocol can be
// bound to with [ChildProc] or [ParentProc].
var ProcessTypes = []string{
	"Parent",
	"Content",
	"IPDLUnitTest",
	"GMPlugin",
	"GPU",
	"VR",
	"RDD",
	"Socket",
	"RemoteSandboxBroker",
	"ForkServer",
	"Utility",
}

// Wildcard process options accepted besides the registered types.
var processWildcards = []string{"any", "anychild", "anydom", "compositor"}

const (
	deleteMessage   = "__delete__"
	ctorSuffix      = "Constructor"
	shmemFullName   = "::mozilla::ipc::Shmem"
	byteBufFullName = "::mozilla::ipc::ByteBuf"
	fdFullName      = "::mozilla::ipc::FileDescriptor"
)

// builtinScope holds the declarations shared by every unit's outermost
// scope. They are created once per Checker so their identity is stable.
type builtinScope struct {
	decls []*symbols.Decl
}

func newBuiltinScope(cTypes, builtinTypes []string) *builtinScope {
	b := &builtinScope{}
	seen := map[string]bool{}
	for _, name := range cTypes {
		if seen[name] {
			continue
		}
		seen[name] = true
		b.decls = append(b.decls, &symbols.Decl{
			Loc:       ast.BuiltinLocation,
			Type:      types.NewBuiltinType(name),
			ShortName: name,
		})
	}
	for _, name := range builtinTypes {
		qid := ast.ParseQualifiedID(ast.BuiltinLocation, name)
		full := qid.String()
		if seen[full] {
			continue
		}
		seen[full] = true
		b.decls = append(b.decls, &symbols.Decl{
			Loc:       ast.BuiltinLocation,
			Type:      importedType(ast.NewUsingStmt(ast.BuiltinLocation, qid, nil)),
			ShortName: qid.Base,
			FullName:  full,
		})
	}
	return b
}

// newTable returns a unit symbol table: builtins in the outermost scope,
// unit globals in a scope entered above it.
func (b *builtinScope) newTable(diags *diag.List) *symbols.Table {
	tab := symbols.NewTable(diags)
	for _, d := range b.decls {
		tab.Declare(d)
	}
	tab.EnterScope()
	return tab
}

// importedType maps a using statement to its type. A few well-known names
// denote IPC resource handles instead of plain C++ types.
func importedType(u *ast.UsingStmt) types.Type {
	qname := types.QualifiedNameOf(u.Type)
	switch u.Type.String() {
	case shmemFullName:
		return &types.ShmemType{QName: qname}
	case byteBufFullName:
		return &types.ByteBufType{QName: qname}
	case fdFullName:
		return &types.FDType{QName: qname}
	default:
		return types.NewImportedType(qname, u.IsRefcounted(), u.IsSendMoveOnly(), u.IsDataMoveOnly())
	}
}
