package typechecker

import (
	"strings"

	"ipdl/checker-go/pkg/types"
)

// findCycles walks manages edges depth first from p. A protocol that shows
// up again on the current path closes a cycle; the path, with the repeated
// protocol at both ends, is returned. Self-management is not a cycle.
func findCycles(p *types.ProtocolType, stack []*types.ProtocolType) [][]*types.ProtocolType {
	var cycles [][]*types.ProtocolType
	for _, cp := range p.Manages {
		if cp == p {
			continue
		}
		if onStack(stack, cp) {
			path := make([]*types.ProtocolType, 0, len(stack)+2)
			path = append(path, stack...)
			return [][]*types.ProtocolType{append(path, p, cp)}
		}
		next := make([]*types.ProtocolType, 0, len(stack)+1)
		next = append(append(next, stack...), p)
		cycles = append(cycles, findCycles(cp, next)...)
	}
	return cycles
}

func onStack(stack []*types.ProtocolType, p *types.ProtocolType) bool {
	for _, s := range stack {
		if s == p {
			return true
		}
	}
	return false
}

// formatCycles renders cycles as "`A -> B -> A', `C -> D -> C'".
func formatCycles(cycles [][]*types.ProtocolType) string {
	parts := make([]string, 0, len(cycles))
	for _, cycle := range cycles {
		names := make([]string, 0, len(cycle))
		for _, p := range cycle {
			names = append(names, p.Name())
		}
		parts = append(parts, "`"+strings.Join(names, " -> ")+"'")
	}
	return strings.Join(parts, ", ")
}
