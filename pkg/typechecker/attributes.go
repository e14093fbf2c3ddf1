package typechecker

import (
	"strings"

	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/diag"
)

type allowKind int

const (
	allowNone allowKind = iota
	allowIdent
	allowAnyString
)

type allowedValue struct {
	kind allowKind
	text string
}

func (a allowedValue) matches(v *ast.AttributeValue) bool {
	switch a.kind {
	case allowNone:
		return v == nil
	case allowIdent:
		return v != nil && v.Kind == ast.ValueIdentifier && v.Text == a.text
	case allowAnyString:
		return v != nil && v.Kind == ast.ValueString
	}
	return false
}

func (a allowedValue) String() string {
	switch a.kind {
	case allowNone:
		return "None"
	case allowAnyString:
		return "StringLiteral"
	default:
		return a.text
	}
}

// AttrSpec describes the values one attribute accepts: either no value at
// all, or one of an ordered list of alternatives.
type AttrSpec struct {
	valueless bool
	allowed   []allowedValue
}

func valueless() AttrSpec { return AttrSpec{valueless: true} }

func oneOf(values ...string) AttrSpec {
	spec := AttrSpec{}
	for _, v := range values {
		spec.allowed = append(spec.allowed, allowedValue{kind: allowIdent, text: v})
	}
	return spec
}

// orNone lets the attribute also appear without a value, listed first.
func (s AttrSpec) orNone() AttrSpec {
	s.allowed = append([]allowedValue{{kind: allowNone}}, s.allowed...)
	return s
}

func (s AttrSpec) orString() AttrSpec {
	s.allowed = append(s.allowed, allowedValue{kind: allowAnyString})
	return s
}

func (s AttrSpec) accepts(v *ast.AttributeValue) bool {
	for _, a := range s.allowed {
		if a.matches(v) {
			return true
		}
	}
	return false
}

func (s AttrSpec) expected() string {
	parts := make([]string, 0, len(s.allowed))
	for _, a := range s.allowed {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ", ")
}

type attrSpecs map[string]AttrSpec

// checkAttributes reports every attribute the specs do not allow. Each
// problem is reported at the attribute's own location and checking goes on.
func checkAttributes(diags *diag.List, attrs ast.Attributes, specs attrSpecs) {
	for _, attr := range attrs {
		if attr == nil {
			continue
		}
		spec, ok := specs[attr.Name]
		if !ok {
			diags.Errorf(attr.Loc, "unknown attribute `%s'", attr.Name)
			continue
		}
		if spec.valueless {
			if attr.Value != nil {
				diags.Errorf(attr.Loc, "unexpected value for valueless attribute `%s'", attr.Name)
			}
			continue
		}
		if !spec.accepts(attr.Value) {
			diags.Errorf(attr.Loc, "invalid value for attribute `%s', expected one of: %s", attr.Name, spec.expected())
		}
	}
}

var (
	nestingSpec  = oneOf(ast.NestingValues...)
	prioritySpec = oneOf(ast.Priorities...)

	compoundAttrs = attrSpecs{"Comparable": valueless()}

	usingAttrs = attrSpecs{
		"MoveOnly":   oneOf("data", "send").orNone(),
		"RefCounted": valueless(),
	}

	messageAttrs = attrSpecs{
		"Tainted":         valueless(),
		"Compress":        oneOf("all").orNone(),
		"Priority":        prioritySpec,
		"ReplyPriority":   prioritySpec,
		"Nested":          nestingSpec,
		"VirtualSendImpl": valueless(),
		"LazySend":        valueless(),
	}

	paramAttrs = attrSpecs{"NoTaint": oneOf("passback", "allvalid")}
)

// protocolAttrs depends on the registered process types.
func protocolAttrs(procOptions []string) attrSpecs {
	proc := oneOf(procOptions...)
	return attrSpecs{
		"ManualDealloc": valueless(),
		"NestedUpTo":    nestingSpec,
		"NeedsOtherPid": valueless(),
		"ChildImpl":     oneOf("virtual").orString(),
		"ParentImpl":    oneOf("virtual").orString(),
		"ChildProc":     proc,
		"ParentProc":    proc,
	}
}
