package ast

// Builders for hand-assembled trees. Every builder takes the location first
// so tests can assert on diagnostic positions.

func Loc(file string, line int) Location {
	return NewLocation(file, line)
}

func QID(loc Location, name string) *QualifiedID {
	return ParseQualifiedID(loc, name)
}

func Ty(loc Location, spec string) *TypeSpec {
	return MustTypeSpec(loc, spec)
}

// Attribute helpers.

func Attr(loc Location, name string) *Attribute {
	return NewAttribute(loc, name, nil)
}

func AttrIdent(loc Location, name, value string) *Attribute {
	return NewAttribute(loc, name, &AttributeValue{Kind: ValueIdentifier, Text: value})
}

func AttrString(loc Location, name, value string) *Attribute {
	return NewAttribute(loc, name, &AttributeValue{Kind: ValueString, Text: value})
}

func Attrs(attrs ...*Attribute) Attributes {
	return Attributes(attrs)
}

// Declaration helpers.

func Using(loc Location, name string, attrs ...*Attribute) *UsingStmt {
	return NewUsingStmt(loc, QID(loc, name), Attrs(attrs...))
}

func Field(loc Location, name, spec string) *StructField {
	return NewStructField(loc, name, Ty(loc, spec))
}

func Struct(loc Location, name string, fields ...*StructField) *StructDecl {
	return NewStructDecl(loc, nil, name, fields, nil)
}

func Union(loc Location, name string, components ...string) *UnionDecl {
	specs := make([]*TypeSpec, 0, len(components))
	for _, c := range components {
		specs = append(specs, Ty(loc, c))
	}
	return NewUnionDecl(loc, nil, name, specs, nil)
}

func Arg(loc Location, name, spec string, attrs ...*Attribute) *Param {
	return NewParam(loc, name, Ty(loc, spec), Attrs(attrs...))
}

func Msg(loc Location, name string, send SendSemantics, dir Direction, in []*Param, out []*Param, attrs ...*Attribute) *MessageDecl {
	msg := NewMessageDecl(loc, name, send, dir, Attrs(attrs...))
	msg.InParams = in
	msg.OutParams = out
	return msg
}

// Delete builds the canonical fire-and-forget destructor.
func Delete(loc Location) *MessageDecl {
	return Msg(loc, "__delete__", Async, In, nil, nil)
}

func Proto(loc Location, name string, send SendSemantics, attrs ...*Attribute) *Protocol {
	return NewProtocol(loc, nil, name, send, Attrs(attrs...))
}

// ProtocolUnit wraps a protocol in a translation unit named after it.
func ProtocolUnit(p *Protocol) *TranslationUnit {
	tu := NewTranslationUnit(p.Loc, p.Name, p.Name+".ipdl")
	tu.Protocol = p
	return tu
}

// HeaderUnit builds a header translation unit.
func HeaderUnit(loc Location, name string) *TranslationUnit {
	return NewTranslationUnit(loc, name, name+".ipdlh")
}

// IncludeUnit appends an include of unit to tu and returns tu.
func IncludeUnit(tu *TranslationUnit, loc Location, unit *TranslationUnit) *TranslationUnit {
	tu.Includes = append(tu.Includes, NewInclude(loc, unit.Name, !unit.IsHeader(), unit))
	return tu
}
