package ast

import (
	"fmt"
	"strings"
)

// ParseTypeSpec reads the compact specifier syntax used in tree documents:
//
//	[nullable ] (Name | UniquePtr<Name>) [[]] [?]
//
// Name may be qualified (a::b::C) and may itself contain template brackets,
// as in Endpoint<PFooParent>.
func ParseTypeSpec(loc Location, text string) (*TypeSpec, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, fmt.Errorf("empty type specifier")
	}
	spec := &TypeSpec{nodeImpl: newNodeImpl(NodeTypeSpec, loc)}
	if rest, ok := strings.CutPrefix(s, "nullable "); ok {
		spec.Nullable = true
		s = strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutSuffix(s, "?"); ok {
		spec.Maybe = true
		s = strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutSuffix(s, "[]"); ok {
		spec.Array = true
		s = strings.TrimSpace(rest)
	}
	if inner, ok := strings.CutPrefix(s, "UniquePtr<"); ok {
		inner, ok = strings.CutSuffix(inner, ">")
		if !ok {
			return nil, fmt.Errorf("type specifier %q: unterminated UniquePtr<", text)
		}
		spec.UniquePtr = true
		s = strings.TrimSpace(inner)
	}
	if s == "" || strings.ContainsAny(s, " \t?") || strings.HasSuffix(s, "[]") {
		return nil, fmt.Errorf("malformed type specifier %q", text)
	}
	spec.Spec = ParseQualifiedID(loc, s)
	return spec, nil
}

// MustTypeSpec is ParseTypeSpec for literals known to be well formed.
func MustTypeSpec(loc Location, text string) *TypeSpec {
	spec, err := ParseTypeSpec(loc, text)
	if err != nil {
		panic(err)
	}
	return spec
}
