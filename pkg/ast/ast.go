package ast

import "strings"

type NodeType string

const (
	NodeTranslationUnit NodeType = "TranslationUnit"
	NodeInclude         NodeType = "Include"
	NodeUsingStmt       NodeType = "UsingStmt"
	NodeStructDecl      NodeType = "StructDecl"
	NodeStructField     NodeType = "StructField"
	NodeUnionDecl       NodeType = "UnionDecl"
	NodeProtocol        NodeType = "Protocol"
	NodeManager         NodeType = "Manager"
	NodeManagesStmt     NodeType = "ManagesStmt"
	NodeMessageDecl     NodeType = "MessageDecl"
	NodeParam           NodeType = "Param"
	NodeTypeSpec        NodeType = "TypeSpec"
	NodeQualifiedID     NodeType = "QualifiedID"
	NodeAttribute       NodeType = "Attribute"
)

// Node is implemented by every syntax-tree node. Node identity (pointer
// equality) is what the checker uses to memoize per-node results.
type Node interface {
	NodeType() NodeType
	Location() Location
	isNode()
}

type nodeImpl struct {
	Type NodeType `yaml:"-"`
	Loc  Location `yaml:"-"`
}

func newNodeImpl(kind NodeType, loc Location) nodeImpl {
	return nodeImpl{Type: kind, Loc: loc}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Location() Location { return n.Loc }
func (nodeImpl) isNode()              {}

// QualifiedID is a possibly namespace-qualified name such as mozilla::dom::Foo.
// A leading empty qualifier renders as a leading "::".
type QualifiedID struct {
	nodeImpl

	Quals []string
	Base  string
}

func NewQualifiedID(loc Location, base string, quals ...string) *QualifiedID {
	return &QualifiedID{nodeImpl: newNodeImpl(NodeQualifiedID, loc), Base: base, Quals: quals}
}

// ParseQualifiedID splits a "::"-separated name.
func ParseQualifiedID(loc Location, name string) *QualifiedID {
	parts := strings.Split(name, "::")
	base := parts[len(parts)-1]
	return NewQualifiedID(loc, base, parts[:len(parts)-1]...)
}

func (q *QualifiedID) String() string {
	if q == nil {
		return ""
	}
	if len(q.Quals) == 0 {
		return q.Base
	}
	return strings.Join(q.Quals, "::") + "::" + q.Base
}

// Attributes

type AttributeValueKind int

const (
	ValueIdentifier AttributeValueKind = iota
	ValueString
)

// AttributeValue is the literal on the right of `[Name=value]`.
type AttributeValue struct {
	Kind AttributeValueKind
	Text string
}

func (v *AttributeValue) String() string {
	if v == nil {
		return "None"
	}
	if v.Kind == ValueString {
		return `"` + v.Text + `"`
	}
	return v.Text
}

type Attribute struct {
	nodeImpl

	Name  string
	Value *AttributeValue
}

func NewAttribute(loc Location, name string, value *AttributeValue) *Attribute {
	return &Attribute{nodeImpl: newNodeImpl(NodeAttribute, loc), Name: name, Value: value}
}

// Attributes keeps source order so diagnostics come out deterministically.
type Attributes []*Attribute

func (a Attributes) Get(name string) *Attribute {
	for _, attr := range a {
		if attr != nil && attr.Name == name {
			return attr
		}
	}
	return nil
}

func (a Attributes) Has(name string) bool { return a.Get(name) != nil }

// IdentValue returns the identifier value of the named attribute, if any.
func (a Attributes) IdentValue(name string) (string, bool) {
	attr := a.Get(name)
	if attr == nil || attr.Value == nil || attr.Value.Kind != ValueIdentifier {
		return "", false
	}
	return attr.Value.Text, true
}
