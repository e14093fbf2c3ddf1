package ast

import "fmt"

// SendSemantics is the synchronicity contract of a protocol or message,
// ordered from weakest to strongest.
type SendSemantics int

const (
	Async SendSemantics = iota
	Sync
	Intr
)

func (s SendSemantics) String() string {
	switch s {
	case Async:
		return "async"
	case Sync:
		return "sync"
	case Intr:
		return "intr"
	default:
		return fmt.Sprintf("SendSemantics(%d)", int(s))
	}
}

func ParseSendSemantics(s string) (SendSemantics, error) {
	switch s {
	case "", "async":
		return Async, nil
	case "sync":
		return Sync, nil
	case "intr":
		return Intr, nil
	default:
		return Async, fmt.Errorf("unknown send semantics %q", s)
	}
}

// Direction says which side of the channel sends a message. In is
// child-to-parent, Out is parent-to-child.
type Direction int

const (
	In Direction = iota
	Out
	InOut
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "inout"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "in", "parent":
		return In, nil
	case "out", "child":
		return Out, nil
	case "inout", "both":
		return InOut, nil
	default:
		return In, fmt.Errorf("unknown message direction %q", s)
	}
}

// Nesting is a call-nesting depth. The zero value is not a valid level.
type Nesting int

const (
	NotNested Nesting = iota + 1
	InsideSync
	InsideCPOW
)

// NestingValues lists the attribute spellings in level order.
var NestingValues = []string{"not", "inside_sync", "inside_cpow"}

func (n Nesting) String() string {
	if n >= NotNested && n <= InsideCPOW {
		return NestingValues[n-NotNested]
	}
	return fmt.Sprintf("Nesting(%d)", int(n))
}

// ParseNesting maps an attribute value to a level. Unknown values map to
// NotNested; attribute validation reports them separately.
func ParseNesting(s string) Nesting {
	for i, v := range NestingValues {
		if v == s {
			return NotNested + Nesting(i)
		}
	}
	return NotNested
}

// Priorities lists the recognized message priority names.
var Priorities = []string{"normal", "input", "vsync", "mediumhigh", "control"}

const DefaultPriority = "normal"
