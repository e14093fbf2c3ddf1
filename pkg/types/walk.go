package types

import "iter"

// ActorTypes yields every actor type reachable through t's components.
// Each compound is entered at most once, so recursive types terminate.
func ActorTypes(t Type) iter.Seq[*ActorType] {
	return func(yield func(*ActorType) bool) {
		walkActors(t, make(map[Compound]struct{}), yield)
	}
}

func walkActors(t Type, visited map[Compound]struct{}, yield func(*ActorType) bool) bool {
	switch t := t.(type) {
	case *ActorType:
		return yield(t)
	case Compound:
		if _, ok := visited[t]; ok {
			return true
		}
		visited[t] = struct{}{}
		for _, comp := range t.Components() {
			if !walkActors(comp, visited, yield) {
				return false
			}
		}
		return true
	default:
		if base, ok := BaseOf(t); ok {
			return walkActors(base, visited, yield)
		}
		return true
	}
}

// HasShmem reports whether a shared-memory handle is reachable from t. For
// a message the parameters and return values are searched.
func HasShmem(t Type) bool {
	return hasShmem(t, make(map[Compound]struct{}))
}

func hasShmem(t Type, visited map[Compound]struct{}) bool {
	switch t := t.(type) {
	case *ShmemType:
		return true
	case *MessageType:
		for _, p := range t.Params {
			if hasShmem(p, visited) {
				return true
			}
		}
		for _, r := range t.Returns {
			if hasShmem(r, visited) {
				return true
			}
		}
		return false
	case Compound:
		if _, ok := visited[t]; ok {
			return false
		}
		visited[t] = struct{}{}
		for _, comp := range t.Components() {
			if hasShmem(comp, visited) {
				return true
			}
		}
		return false
	default:
		if base, ok := BaseOf(t); ok {
			return hasShmem(base, visited)
		}
		return false
	}
}
