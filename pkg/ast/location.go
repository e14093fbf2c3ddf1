package ast

import "fmt"

// Location identifies a line in a source file.
type Location struct {
	File string
	Line int
}

// BuiltinLocation is attached to declarations the checker synthesizes.
var BuiltinLocation = Location{File: "<builtin>", Line: 0}

// UnknownLocation stands in when a node carries no position.
var UnknownLocation = Location{File: "<??>", Line: 0}

func NewLocation(file string, line int) Location {
	return Location{File: file, Line: line}
}

func (l Location) IsZero() bool { return l == Location{} }

func (l Location) String() string {
	if l.IsZero() {
		return UnknownLocation.String()
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}
