// Package diag holds the checker's diagnostics. There is a single severity:
// a program with any diagnostic is not well typed.
package diag

import (
	"fmt"

	"ipdl/checker-go/pkg/ast"
)

// Diagnostic is one located error message.
type Diagnostic struct {
	Loc     ast.Location
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: error: %s", d.Loc, d.Message)
}

// List accumulates diagnostics in report order. The zero value is ready to use.
type List struct {
	items []Diagnostic
}

// Errorf appends a diagnostic at loc.
func (l *List) Errorf(loc ast.Location, format string, args ...any) {
	l.items = append(l.items, Diagnostic{Loc: loc, Message: fmt.Sprintf(format, args...)})
}

// Add appends an already formed diagnostic.
func (l *List) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

func (l *List) HasErrors() bool { return l.Len() > 0 }

// Items returns a copy of the accumulated diagnostics.
func (l *List) Items() []Diagnostic {
	if l == nil || len(l.items) == 0 {
		return nil
	}
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}

// Strings renders every diagnostic as `<location>: error: <message>`.
func (l *List) Strings() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.items))
	for _, d := range l.items {
		out = append(out, d.String())
	}
	return out
}
