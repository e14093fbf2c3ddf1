package ast

import "strings"

// Translation units

type TranslationUnit struct {
	nodeImpl

	Name     string
	Filename string
	Protocol *Protocol
	Includes []*Include
	Using    []*UsingStmt
	// TypeDecls holds structs and unions in declaration order.
	TypeDecls []TypeDecl
}

func NewTranslationUnit(loc Location, name, filename string) *TranslationUnit {
	return &TranslationUnit{nodeImpl: newNodeImpl(NodeTranslationUnit, loc), Name: name, Filename: filename}
}

// IsHeader reports whether the unit declares no protocol.
func (tu *TranslationUnit) IsHeader() bool { return tu.Protocol == nil }

// Include references another translation unit. Unit is nil when the
// reference could not be resolved.
type Include struct {
	nodeImpl

	Name     string
	Protocol bool
	Unit     *TranslationUnit
}

func NewInclude(loc Location, name string, protocol bool, unit *TranslationUnit) *Include {
	return &Include{nodeImpl: newNodeImpl(NodeInclude, loc), Name: name, Protocol: protocol, Unit: unit}
}

type UsingStmt struct {
	nodeImpl

	Type       *QualifiedID
	Attributes Attributes
}

func NewUsingStmt(loc Location, typ *QualifiedID, attrs Attributes) *UsingStmt {
	return &UsingStmt{nodeImpl: newNodeImpl(NodeUsingStmt, loc), Type: typ, Attributes: attrs}
}

func (u *UsingStmt) IsRefcounted() bool { return u.Attributes.Has("RefCounted") }

func (u *UsingStmt) IsSendMoveOnly() bool { return u.moveOnly("send") }

func (u *UsingStmt) IsDataMoveOnly() bool { return u.moveOnly("data") }

func (u *UsingStmt) moveOnly(which string) bool {
	attr := u.Attributes.Get("MoveOnly")
	if attr == nil {
		return false
	}
	return attr.Value == nil || attr.Value.Text == which
}

// Type specifiers

type TypeSpec struct {
	nodeImpl

	Spec      *QualifiedID
	Nullable  bool
	Array     bool
	Maybe     bool
	UniquePtr bool
}

func NewTypeSpec(loc Location, spec *QualifiedID) *TypeSpec {
	return &TypeSpec{nodeImpl: newNodeImpl(NodeTypeSpec, loc), Spec: spec}
}

// String is the qualified type name without modifiers.
func (t *TypeSpec) String() string { return t.Spec.String() }

// BaseName is the unqualified type name.
func (t *TypeSpec) BaseName() string { return t.Spec.Base }

// Render prints the specifier with its modifiers, in source syntax.
func (t *TypeSpec) Render() string {
	var b strings.Builder
	if t.Nullable {
		b.WriteString("nullable ")
	}
	if t.UniquePtr {
		b.WriteString("UniquePtr<" + t.String() + ">")
	} else {
		b.WriteString(t.String())
	}
	if t.Array {
		b.WriteString("[]")
	}
	if t.Maybe {
		b.WriteString("?")
	}
	return b.String()
}

// Structs and unions

// TypeDecl is a struct or union declaration.
type TypeDecl interface {
	Node
	DeclName() string
	QName() *QualifiedID
	typeDecl()
}

type StructField struct {
	nodeImpl

	Name string
	Type *TypeSpec
}

func NewStructField(loc Location, name string, typ *TypeSpec) *StructField {
	return &StructField{nodeImpl: newNodeImpl(NodeStructField, loc), Name: name, Type: typ}
}

type StructDecl struct {
	nodeImpl

	Namespaces []string
	Name       string
	Fields     []*StructField
	Attributes Attributes
}

func NewStructDecl(loc Location, namespaces []string, name string, fields []*StructField, attrs Attributes) *StructDecl {
	return &StructDecl{nodeImpl: newNodeImpl(NodeStructDecl, loc), Namespaces: namespaces, Name: name, Fields: fields, Attributes: attrs}
}

func (s *StructDecl) DeclName() string    { return s.Name }
func (s *StructDecl) QName() *QualifiedID { return NewQualifiedID(s.Loc, s.Name, s.Namespaces...) }
func (*StructDecl) typeDecl()             {}

type UnionDecl struct {
	nodeImpl

	Namespaces []string
	Name       string
	Components []*TypeSpec
	Attributes Attributes
}

func NewUnionDecl(loc Location, namespaces []string, name string, components []*TypeSpec, attrs Attributes) *UnionDecl {
	return &UnionDecl{nodeImpl: newNodeImpl(NodeUnionDecl, loc), Namespaces: namespaces, Name: name, Components: components, Attributes: attrs}
}

func (u *UnionDecl) DeclName() string    { return u.Name }
func (u *UnionDecl) QName() *QualifiedID { return NewQualifiedID(u.Loc, u.Name, u.Namespaces...) }
func (*UnionDecl) typeDecl()             {}

// Protocols

type Protocol struct {
	nodeImpl

	Namespaces    []string
	Name          string
	SendSemantics SendSemantics
	Attributes    Attributes
	Managers      []*Manager
	Manages       []*ManagesStmt
	Messages      []*MessageDecl
}

func NewProtocol(loc Location, namespaces []string, name string, send SendSemantics, attrs Attributes) *Protocol {
	return &Protocol{nodeImpl: newNodeImpl(NodeProtocol, loc), Namespaces: namespaces, Name: name, SendSemantics: send, Attributes: attrs}
}

func (p *Protocol) QName() *QualifiedID { return NewQualifiedID(p.Loc, p.Name, p.Namespaces...) }

// NestedUpTo is the deepest nesting level the protocol allows.
func (p *Protocol) NestedUpTo() Nesting {
	if v, ok := p.Attributes.IdentValue("NestedUpTo"); ok {
		return ParseNesting(v)
	}
	return NotNested
}

type Manager struct {
	nodeImpl

	Name string
}

func NewManager(loc Location, name string) *Manager {
	return &Manager{nodeImpl: newNodeImpl(NodeManager, loc), Name: name}
}

type ManagesStmt struct {
	nodeImpl

	Name string
}

func NewManagesStmt(loc Location, name string) *ManagesStmt {
	return &ManagesStmt{nodeImpl: newNodeImpl(NodeManagesStmt, loc), Name: name}
}

// Messages

type Param struct {
	nodeImpl

	Name       string
	Type       *TypeSpec
	Attributes Attributes
}

func NewParam(loc Location, name string, typ *TypeSpec, attrs Attributes) *Param {
	return &Param{nodeImpl: newNodeImpl(NodeParam, loc), Name: name, Type: typ, Attributes: attrs}
}

type MessageDecl struct {
	nodeImpl

	Name          string
	SendSemantics SendSemantics
	Direction     Direction
	Attributes    Attributes
	InParams      []*Param
	OutParams     []*Param
}

func NewMessageDecl(loc Location, name string, send SendSemantics, dir Direction, attrs Attributes) *MessageDecl {
	return &MessageDecl{nodeImpl: newNodeImpl(NodeMessageDecl, loc), Name: name, SendSemantics: send, Direction: dir, Attributes: attrs}
}

func (m *MessageDecl) Nested() Nesting {
	if v, ok := m.Attributes.IdentValue("Nested"); ok {
		return ParseNesting(v)
	}
	return NotNested
}

func (m *MessageDecl) Priority() string {
	if v, ok := m.Attributes.IdentValue("Priority"); ok {
		return v
	}
	return DefaultPriority
}

func (m *MessageDecl) ReplyPriority() string {
	if v, ok := m.Attributes.IdentValue("ReplyPriority"); ok {
		return v
	}
	return DefaultPriority
}
