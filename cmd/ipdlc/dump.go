package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ipdl/checker-go/pkg/ast"
	"ipdl/checker-go/pkg/typechecker"
	"ipdl/checker-go/pkg/types"
)

func (a *app) dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <unit.ipdl.yaml>",
		Short: "Print the typed protocol summary of a well-typed unit",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runDump,
	}
}

func (a *app) runDump(_ *cobra.Command, args []string) error {
	sess, err := a.newSession(args[0])
	if err != nil {
		return err
	}
	tu, res, err := sess.check(args[0])
	if err != nil {
		return err
	}
	p := a.printer()
	if !res.WellTyped {
		p.diagnostics(res.Diagnostics)
		return exitCode{Code: exitIllTyped, Err: fmt.Errorf("%s is not well typed", tu.Filename)}
	}
	if tu.Protocol == nil {
		fmt.Fprintf(a.stdout, "%s declares no protocol\n", tu.Filename)
		return nil
	}
	dumpProtocol(a.stdout, p, res.Decorations, tu.Protocol)
	return nil
}

func dumpProtocol(w io.Writer, p *printer, deco *typechecker.Decorations, proto *ast.Protocol) {
	pt := deco.ProtocolType(proto)
	p.heading("protocol %s", pt.FullName())
	fmt.Fprintf(w, "  semantics: %s\n", pt.Semantics)
	fmt.Fprintf(w, "  managers: %s\n", protocolNames(pt.Managers))
	fmt.Fprintf(w, "  manages: %s\n", protocolNames(pt.Manages))
	fmt.Fprintf(w, "  toplevels: %s\n", protocolNames(pt.Toplevels()))
	if pt.IsToplevel() && pt.NeedsOtherPid {
		fmt.Fprintln(w, "  needs other pid")
	}
	if len(proto.Messages) == 0 {
		return
	}
	fmt.Fprintln(w, "  messages:")
	for _, md := range proto.Messages {
		mt, ok := deco.TypeOf(md).(*types.MessageType)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "    %s\n", describeMessage(mt))
	}
}

func describeMessage(mt *types.MessageType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s(%s)", mt.Direction, mt.Semantics.Send, mt.Name(), typeNames(mt.Params))
	if mt.HasReply() {
		fmt.Fprintf(&b, " returns (%s)", typeNames(mt.Returns))
	}

	var flags []string
	switch {
	case mt.IsCtor():
		flags = append(flags, "ctor "+mt.Constructed.Name())
	case mt.IsDtor():
		flags = append(flags, "dtor "+mt.Constructed.Name())
	}
	if mt.Nested != ast.NotNested {
		flags = append(flags, "nested "+mt.Nested.String())
	}
	if mt.Priority != ast.DefaultPriority {
		flags = append(flags, "priority "+mt.Priority)
	}
	if mt.Compress != types.CompressNone {
		flags = append(flags, mt.Compress.String())
	}
	if mt.Tainted {
		flags = append(flags, "tainted")
	}
	if mt.LazySend {
		flags = append(flags, "lazy")
	}
	if types.HasShmem(mt) {
		flags = append(flags, "shmem")
	}
	if actors := actorNames(mt); len(actors) > 0 {
		flags = append(flags, "actors "+strings.Join(actors, ","))
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(flags, "; "))
	}
	return b.String()
}

func typeNames(ts []types.Type) string {
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		names = append(names, t.Name())
	}
	return strings.Join(names, ", ")
}

func protocolNames(ps []*types.ProtocolType) string {
	if len(ps) == 0 {
		return "-"
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name())
	}
	return strings.Join(names, ", ")
}

// actorNames lists the distinct actors reachable from a message's
// parameters and returns.
func actorNames(mt *types.MessageType) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range append(append([]types.Type{}, mt.Params...), mt.Returns...) {
		for actor := range types.ActorTypes(t) {
			if !seen[actor.Name()] {
				seen[actor.Name()] = true
				out = append(out, actor.Name())
			}
		}
	}
	return out
}
