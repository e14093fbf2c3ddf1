package typechecker

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/diag"
)

// Options configures a Checker. Zero values fall back to the built-in
// registries.
type Options struct {
	Logger logrus.FieldLogger
	// CTypes replaces the primitive C type list when non-empty.
	CTypes []string
	// ExtraBuiltinTypes are imported into every unit besides BuiltinTypes.
	ExtraBuiltinTypes []string
	// ExtraProcessTypes are accepted by [ChildProc] and [ParentProc]
	// besides ProcessTypes.
	ExtraProcessTypes []string
}

// Checker decides whether translation units are well typed. One Checker is
// one whole-program session: declarations made while checking one unit are
// reused when another unit includes it, and so are its pass 1 errors.
type Checker struct {
	log         logrus.FieldLogger
	builtins    *builtinScope
	procOptions []string
	deco        *Decorations
}

// Result is the verdict for one translation unit.
type Result struct {
	WellTyped   bool
	Diagnostics []diag.Diagnostic
	// Pass names the pass that rejected the unit, if any.
	Pass string
	// Decorations gives access to the declarations the checker resolved.
	Decorations *Decorations
}

const (
	PassGather = "gather"
	PassCheck  = "check"
)

// Strings renders the diagnostics as `<location>: error: <message>` lines.
func (r *Result) Strings() []string {
	out := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		out = append(out, d.String())
	}
	return out
}

// New returns a checker instance.
func New(opts Options) *Checker {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	cTypes := CTypes
	if len(opts.CTypes) > 0 {
		cTypes = opts.CTypes
	}
	builtinTypes := append(append([]string{}, BuiltinTypes...), opts.ExtraBuiltinTypes...)
	procOptions := append(append(append([]string{}, processWildcards...), ProcessTypes...), opts.ExtraProcessTypes...)
	return &Checker{
		log:         log.WithField("component", "typechecker"),
		builtins:    newBuiltinScope(cTypes, builtinTypes),
		procOptions: procOptions,
		deco:        newDecorations(),
	}
}

// Decorations returns what the checker has learned so far.
func (c *Checker) Decorations() *Decorations { return c.deco }

// Check runs both passes over tu. Pass 2 only runs when pass 1 reported
// nothing. The error is reserved for misuse; ill-typed input is reported
// through the Result.
func (c *Checker) Check(tu *ast.TranslationUnit) (*Result, error) {
	if tu == nil {
		return nil, fmt.Errorf("typechecker: translation unit is nil")
	}
	log := c.log.WithField("unit", tu.Name)
	result := &Result{Decorations: c.deco}

	var diags diag.List
	g := newGatherer(c, &diags)
	g.unit(tu)
	if diags.HasErrors() {
		log.WithField("errors", diags.Len()).Debug("declaration pass failed")
		result.Diagnostics = diags.Items()
		result.Pass = PassGather
		return result, nil
	}

	k := &constraintChecker{c: c, diags: &diags}
	k.unit(tu, make(map[string]bool))
	if diags.HasErrors() {
		log.WithField("errors", diags.Len()).Debug("constraint pass failed")
		result.Diagnostics = diags.Items()
		result.Pass = PassCheck
		return result, nil
	}

	log.Debug("well typed")
	result.WellTyped = true
	return result, nil
}
