package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"ipdl/checker-go/pkg/diag"
)

// printer renders diagnostics as `<file>:<line>: error: <message>`.
type printer struct {
	w     io.Writer
	loc   *color.Color
	label *color.Color
	title *color.Color
}

func (a *app) printer() *printer {
	p := &printer{
		w:     a.stdout,
		loc:   color.New(color.Bold),
		label: color.New(color.FgRed, color.Bold),
		title: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.loc, p.label, p.title} {
		if a.noColor || !a.tty {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return p
}

func (p *printer) diagnostics(ds []diag.Diagnostic) {
	for _, d := range ds {
		fmt.Fprintf(p.w, "%s %s %s\n", p.loc.Sprintf("%s:", d.Loc), p.label.Sprint("error:"), d.Message)
	}
}

func (p *printer) heading(format string, args ...any) {
	fmt.Fprintln(p.w, p.title.Sprintf(format, args...))
}
