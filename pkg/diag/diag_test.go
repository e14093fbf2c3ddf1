package diag

import (
	"reflect"
	"testing"

	"ipdl/checker-go/pkg/ast"
)

func TestListAccumulatesInOrder(t *testing.T) {
	var l List
	if l.HasErrors() || l.Items() != nil {
		t.Fatalf("expected empty list, got %v", l.Items())
	}

	l.Errorf(ast.Loc("PFoo.ipdl", 3), "message `%s' is bad", "Ping")
	l.Add(Diagnostic{Message: "no location"})

	if l.Len() != 2 || !l.HasErrors() {
		t.Fatalf("expected two diagnostics, got %v", l.Strings())
	}
	want := []string{
		"PFoo.ipdl:3: error: message `Ping' is bad",
		"<??>:0: error: no location",
	}
	if got := l.Strings(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}

	items := l.Items()
	items[0].Message = "changed"
	if got := l.Items()[0].Message; got != "message `Ping' is bad" {
		t.Fatalf("Items must return a copy, list now holds %q", got)
	}
}

func TestNilList(t *testing.T) {
	var l *List
	if l.Len() != 0 || l.HasErrors() || l.Strings() != nil {
		t.Fatalf("expected nil list to be empty")
	}
}
