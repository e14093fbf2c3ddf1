package types

import "ipdl/checker-go/pkg/ast"

// AddManager records m as a manager of p. The manager's Manages list is
// filled separately, from its own `manages' statements.
func (p *ProtocolType) AddManager(m *ProtocolType) {
	p.Managers = append(p.Managers, m)
}

func (p *ProtocolType) IsManaged() bool { return len(p.Managers) > 0 }

func (p *ProtocolType) IsManager() bool { return len(p.Manages) > 0 }

func (p *ProtocolType) IsToplevel() bool { return !p.IsManaged() }

func (p *ProtocolType) IsManagerOf(other *ProtocolType) bool {
	for _, m := range p.Manages {
		if m == other {
			return true
		}
	}
	return false
}

func (p *ProtocolType) IsManagedBy(other *ProtocolType) bool {
	for _, m := range p.Managers {
		if m == other {
			return true
		}
	}
	return false
}

// Manager returns the single manager of p. ok is false when p has none or
// several.
func (p *ProtocolType) Manager() (m *ProtocolType, ok bool) {
	if len(p.Managers) != 1 {
		return nil, false
	}
	return p.Managers[0], true
}

// Toplevel returns p's unique top-level ancestor, or nil when there is not
// exactly one.
func (p *ProtocolType) Toplevel() *ProtocolType {
	tops := p.Toplevels()
	if len(tops) != 1 {
		return nil
	}
	return tops[0]
}

// Toplevels returns the distinct top-level ancestors of p in discovery
// order. A manager chain that loops back on itself contributes nothing.
func (p *ProtocolType) Toplevels() []*ProtocolType {
	var out []*ProtocolType
	seen := map[*ProtocolType]bool{}
	var visit func(q *ProtocolType)
	visit = func(q *ProtocolType) {
		if seen[q] {
			return
		}
		seen[q] = true
		if q.IsToplevel() {
			out = append(out, q)
			return
		}
		for _, m := range q.Managers {
			if m == q {
				continue
			}
			visit(m)
		}
	}
	visit(p)
	return out
}

// HasOtherPid reports whether every top-level ancestor of p needs the
// other side's process id.
func (p *ProtocolType) HasOtherPid() bool {
	tops := p.Toplevels()
	if len(tops) == 0 {
		return false
	}
	for _, t := range tops {
		if !t.NeedsOtherPid {
			return false
		}
	}
	return true
}

// Message helpers

func (m *MessageType) IsIn() bool    { return m.Direction == ast.In }
func (m *MessageType) IsOut() bool   { return m.Direction == ast.Out }
func (m *MessageType) IsInout() bool { return m.Direction == ast.InOut }

// HasReply reports whether the receiver answers the message.
func (m *MessageType) HasReply() bool {
	return len(m.Returns) > 0 || m.Semantics.IsSync()
}

// HasImplicitActorParam reports whether the message carries the new actor
// as a hidden first argument.
func (m *MessageType) HasImplicitActorParam() bool { return m.Ctor }

func (m *MessageType) IsCtor() bool { return m.Ctor }
func (m *MessageType) IsDtor() bool { return m.Dtor }
