package types

import (
	"strings"

	"ipdl/checker-go/pkg/ast"
)

// Kind tags the closed set of type variants.
type Kind int

const (
	KindVoid Kind = iota
	KindCxx
	KindStruct
	KindUnion
	KindArray
	KindMaybe
	KindUniquePtr
	KindNotNull
	KindProtocol
	KindActor
	KindMessage
	KindShmem
	KindByteBuf
	KindFD
	KindEndpoint
	KindManagedEndpoint
)

var kindNames = [...]string{
	KindVoid:            "Void",
	KindCxx:             "Cxx",
	KindStruct:          "Struct",
	KindUnion:           "Union",
	KindArray:           "Array",
	KindMaybe:           "Maybe",
	KindUniquePtr:       "UniquePtr",
	KindNotNull:         "NotNull",
	KindProtocol:        "Protocol",
	KindActor:           "Actor",
	KindMessage:         "Message",
	KindShmem:           "Shmem",
	KindByteBuf:         "ByteBuf",
	KindFD:              "FileDescriptor",
	KindEndpoint:        "Endpoint",
	KindManagedEndpoint: "ManagedEndpoint",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Type is implemented only by the variants in this package.
type Type interface {
	Kind() Kind
	// Name is the short, unqualified name.
	Name() string
	// FullName is the qualified name; together with Kind it is the type's identity.
	FullName() string
	isType()
}

// Key is the identity of a type, usable as a map key.
type Key struct {
	Kind     Kind
	FullName string
}

func KeyOf(t Type) Key {
	return Key{Kind: t.Kind(), FullName: t.FullName()}
}

// Equal reports whether a and b have the same kind and qualified name.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return KeyOf(a) == KeyOf(b)
}

// QualifiedName is a namespace path plus a base name. A leading empty
// qualifier renders as a leading "::".
type QualifiedName struct {
	Quals []string
	Base  string
}

func NewQualifiedName(base string, quals ...string) QualifiedName {
	return QualifiedName{Base: base, Quals: quals}
}

// QualifiedNameOf converts a syntax-tree name.
func QualifiedNameOf(q *ast.QualifiedID) QualifiedName {
	if q == nil {
		return QualifiedName{}
	}
	quals := make([]string, len(q.Quals))
	copy(quals, q.Quals)
	return QualifiedName{Base: q.Base, Quals: quals}
}

func (q QualifiedName) String() string {
	if len(q.Quals) == 0 {
		return q.Base
	}
	return strings.Join(q.Quals, "::") + "::" + q.Base
}

// Void

type VoidType struct{}

// Void is the single unit type.
var Void = &VoidType{}

func (*VoidType) Kind() Kind       { return KindVoid }
func (*VoidType) Name() string     { return "void" }
func (*VoidType) FullName() string { return "void" }
func (*VoidType) isType()          {}

// CxxType is a builtin C type or a C++ type imported with `using`.
type CxxType struct {
	QName        QualifiedName
	Builtin      bool
	Refcounted   bool
	SendMoveOnly bool
	DataMoveOnly bool
}

func NewBuiltinType(name string) *CxxType {
	return &CxxType{QName: NewQualifiedName(name), Builtin: true}
}

func NewImportedType(qname QualifiedName, refcounted, sendMoveOnly, dataMoveOnly bool) *CxxType {
	return &CxxType{QName: qname, Refcounted: refcounted, SendMoveOnly: sendMoveOnly, DataMoveOnly: dataMoveOnly}
}

func (*CxxType) Kind() Kind         { return KindCxx }
func (c *CxxType) Name() string     { return c.QName.Base }
func (c *CxxType) FullName() string { return c.QName.String() }
func (*CxxType) isType()            {}

// Compound types

// Compound is a struct or union.
type Compound interface {
	Type
	Components() []Type
	state() *compoundState
}

type compoundState struct {
	defined   bool
	mutualRec map[Key]Type
}

func (s *compoundState) addMutualRec(t Type) {
	if s.mutualRec == nil {
		s.mutualRec = make(map[Key]Type)
	}
	s.mutualRec[KeyOf(t)] = t
}

type StructType struct {
	QName  QualifiedName
	Fields []Type
	compoundState
}

func NewStructType(qname QualifiedName) *StructType {
	return &StructType{QName: qname}
}

func (*StructType) Kind() Kind              { return KindStruct }
func (s *StructType) Name() string          { return s.QName.Base }
func (s *StructType) FullName() string      { return s.QName.String() }
func (s *StructType) Components() []Type    { return s.Fields }
func (s *StructType) state() *compoundState { return &s.compoundState }
func (*StructType) isType()                 {}

type UnionType struct {
	QName        QualifiedName
	Alternatives []Type
	compoundState
}

func NewUnionType(qname QualifiedName) *UnionType {
	return &UnionType{QName: qname}
}

func (*UnionType) Kind() Kind              { return KindUnion }
func (u *UnionType) Name() string          { return u.QName.Base }
func (u *UnionType) FullName() string      { return u.QName.String() }
func (u *UnionType) Components() []Type    { return u.Alternatives }
func (u *UnionType) state() *compoundState { return &u.compoundState }
func (*UnionType) isType()                 {}

// Single-base containers

type ArrayType struct{ Base Type }

func (*ArrayType) Kind() Kind         { return KindArray }
func (a *ArrayType) Name() string     { return a.Base.Name() + "[]" }
func (a *ArrayType) FullName() string { return a.Base.FullName() + "[]" }
func (*ArrayType) isType()            {}

type MaybeType struct{ Base Type }

func (*MaybeType) Kind() Kind         { return KindMaybe }
func (m *MaybeType) Name() string     { return m.Base.Name() + "?" }
func (m *MaybeType) FullName() string { return m.Base.FullName() + "?" }
func (*MaybeType) isType()            {}

type UniquePtrType struct{ Base Type }

func (*UniquePtrType) Kind() Kind         { return KindUniquePtr }
func (u *UniquePtrType) Name() string     { return "UniquePtr<" + u.Base.Name() + ">" }
func (u *UniquePtrType) FullName() string { return "mozilla::UniquePtr<" + u.Base.FullName() + ">" }
func (*UniquePtrType) isType()            {}

type NotNullType struct{ Base Type }

func (*NotNullType) Kind() Kind         { return KindNotNull }
func (n *NotNullType) Name() string     { return "NotNull<" + n.Base.Name() + ">" }
func (n *NotNullType) FullName() string { return "mozilla::NotNull<" + n.Base.FullName() + ">" }
func (*NotNullType) isType()            {}

// Protocols, actors and messages

type ProtocolType struct {
	QName         QualifiedName
	Semantics     Semantics
	Managers      []*ProtocolType
	Manages       []*ProtocolType
	HasDelete     bool
	Refcounted    bool
	NeedsOtherPid bool
}

// NewProtocolType builds a protocol whose nesting range runs from NotNested
// up to nestedUpTo.
func NewProtocolType(qname QualifiedName, nestedUpTo ast.Nesting, send ast.SendSemantics, refcounted, needsOtherPid bool) *ProtocolType {
	return &ProtocolType{
		QName:         qname,
		Semantics:     Semantics{Send: send, Nesting: NestingRange{Lower: ast.NotNested, Upper: nestedUpTo}},
		Refcounted:    refcounted,
		NeedsOtherPid: needsOtherPid,
	}
}

func (*ProtocolType) Kind() Kind         { return KindProtocol }
func (p *ProtocolType) Name() string     { return p.QName.Base }
func (p *ProtocolType) FullName() string { return p.QName.String() }
func (*ProtocolType) isType()            {}

// ActorType is a handle to one side of a protocol.
type ActorType struct{ Protocol *ProtocolType }

func NewActorType(p *ProtocolType) *ActorType { return &ActorType{Protocol: p} }

func (*ActorType) Kind() Kind         { return KindActor }
func (a *ActorType) Name() string     { return a.Protocol.Name() }
func (a *ActorType) FullName() string { return a.Protocol.FullName() }
func (*ActorType) isType()            {}

type CompressPolicy int

const (
	CompressNone CompressPolicy = iota
	Compress
	CompressAll
)

func (c CompressPolicy) String() string {
	switch c {
	case Compress:
		return "compress"
	case CompressAll:
		return "compressall"
	default:
		return "none"
	}
}

type MessageType struct {
	QName         QualifiedName
	Semantics     Semantics
	Nested        ast.Nesting
	Priority      string
	ReplyPriority string
	Direction     ast.Direction
	Params        []Type
	Returns       []Type
	Ctor          bool
	Dtor          bool
	// Constructed is the protocol a constructor or destructor creates or destroys.
	Constructed *ProtocolType
	Compress    CompressPolicy
	Tainted     bool
	LazySend    bool
}

func (*MessageType) Kind() Kind         { return KindMessage }
func (m *MessageType) Name() string     { return m.QName.Base }
func (m *MessageType) FullName() string { return m.QName.String() }
func (*MessageType) isType()            {}

// Resource handles

type ShmemType struct{ QName QualifiedName }

func (*ShmemType) Kind() Kind         { return KindShmem }
func (s *ShmemType) Name() string     { return s.QName.Base }
func (s *ShmemType) FullName() string { return s.QName.String() }
func (*ShmemType) isType()            {}

type ByteBufType struct{ QName QualifiedName }

func (*ByteBufType) Kind() Kind         { return KindByteBuf }
func (b *ByteBufType) Name() string     { return b.QName.Base }
func (b *ByteBufType) FullName() string { return b.QName.String() }
func (*ByteBufType) isType()            {}

type FDType struct{ QName QualifiedName }

func (*FDType) Kind() Kind         { return KindFD }
func (f *FDType) Name() string     { return f.QName.Base }
func (f *FDType) FullName() string { return f.QName.String() }
func (*FDType) isType()            {}

type EndpointType struct {
	QName QualifiedName
	Actor *ActorType
}

func (*EndpointType) Kind() Kind         { return KindEndpoint }
func (e *EndpointType) Name() string     { return e.QName.Base }
func (e *EndpointType) FullName() string { return e.QName.String() }
func (*EndpointType) isType()            {}

type ManagedEndpointType struct {
	QName QualifiedName
	Actor *ActorType
}

func (*ManagedEndpointType) Kind() Kind         { return KindManagedEndpoint }
func (e *ManagedEndpointType) Name() string     { return e.QName.Base }
func (e *ManagedEndpointType) FullName() string { return e.QName.String() }
func (*ManagedEndpointType) isType()            {}
