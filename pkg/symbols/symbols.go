// Package symbols implements the checker's lexical scope stack.
package symbols

import (
	"fmt"

	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/diag"
	"ipdl/checker-go/pkg/types"
)

// Decl binds up to three names to a type. ProgName is the form code refers
// to (a message's effective name), ShortName the unqualified name and
// FullName the namespace-qualified one. At least one must be set.
type Decl struct {
	Loc        ast.Location
	Type       types.Type
	ProgName   string
	ShortName  string
	FullName   string
	Attributes ast.Attributes
}

// Names returns the distinct non-empty name forms in declaration order.
func (d *Decl) Names() []string {
	var out []string
	for _, n := range []string{d.ProgName, d.ShortName, d.FullName} {
		if n == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == n {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, n)
		}
	}
	return out
}

type scope map[string]*Decl

// Table is a stack of scopes. The outermost scope is never popped.
type Table struct {
	scopes []scope
	diags  *diag.List
}

// NewTable returns a table with one open scope. Redeclarations are
// reported to diags.
func NewTable(diags *diag.List) *Table {
	return &Table{scopes: []scope{{}}, diags: diags}
}

func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, scope{})
}

// ExitScope pops the innermost scope. It is a no-op at the outermost scope.
func (t *Table) ExitScope() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// Depth is the number of open scopes.
func (t *Table) Depth() int { return len(t.scopes) }

// Lookup searches from the innermost scope outward. Names never shadow, so
// the search order only matters for speed.
func (t *Table) Lookup(name string) *Decl {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if d, ok := t.scopes[i][name]; ok {
			return d
		}
	}
	return nil
}

// Declare binds every name form of d in the innermost scope. A name already
// visible in any open scope is reported as a redeclaration and left bound
// to its first declaration; the remaining forms are still tried. Declare
// reports whether every form was bound. It panics when d has no name form,
// no location or no type.
func (t *Table) Declare(d *Decl) bool {
	switch {
	case len(d.Names()) == 0:
		panic(fmt.Sprintf("symbols: declaration at %s has no name", d.Loc))
	case d.Loc.IsZero():
		panic(fmt.Sprintf("symbols: declaration of %s has no location", d.Names()[0]))
	case d.Type == nil:
		panic(fmt.Sprintf("symbols: declaration of %s at %s has no type", d.Names()[0], d.Loc))
	}
	ok := true
	cur := t.scopes[len(t.scopes)-1]
	for _, name := range d.Names() {
		if old := t.Lookup(name); old != nil {
			if t.diags != nil {
				t.diags.Errorf(d.Loc, "redeclaration of symbol `%s', first declared at %s", name, old.Loc)
			}
			ok = false
			continue
		}
		cur[name] = d
	}
	return ok
}
