package types

import (
	"fmt"

	"ipdl/checker-go/pkg/ast"
)

// NestingRange is an inclusive range of nesting levels.
type NestingRange struct {
	Lower ast.Nesting
	Upper ast.Nesting
}

// Exactly is the one-level range a message occupies.
func Exactly(n ast.Nesting) NestingRange {
	return NestingRange{Lower: n, Upper: n}
}

// Within reports whether r lies inside outer.
func (r NestingRange) Within(outer NestingRange) bool {
	return r.Lower >= outer.Lower && r.Upper <= outer.Upper
}

func (r NestingRange) String() string {
	return fmt.Sprintf("(%s, %s)", r.Lower, r.Upper)
}

// Semantics pairs send semantics with a nesting range.
type Semantics struct {
	Send    ast.SendSemantics
	Nesting NestingRange
}

func (s Semantics) IsAsync() bool { return s.Send == ast.Async }
func (s Semantics) IsSync() bool  { return s.Send == ast.Sync }
func (s Semantics) IsIntr() bool  { return s.Send == ast.Intr }

// SatisfiedBy reports whether an entity with semantics s may live inside one
// with semantics greater. Intr is never satisfied.
func (s Semantics) SatisfiedBy(greater Semantics) bool {
	if !s.Nesting.Within(greater.Nesting) {
		return false
	}
	switch s.Send {
	case ast.Async:
		return true
	case ast.Sync:
		return !greater.IsAsync()
	default:
		return false
	}
}

func (s Semantics) String() string {
	return fmt.Sprintf("%s %s", s.Send, s.Nesting)
}
