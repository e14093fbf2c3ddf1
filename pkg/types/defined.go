package types

import "math"

// FullyDefined reports whether values of t can be constructed in finite
// space. Atoms are defined, a struct needs every field defined and a union
// needs at least one alternative defined. A compound that refers back to
// itself without crossing an Array, Maybe or UniquePtr is not defined;
// crossing one of those wrappers on the way back is, since they can be
// empty.
//
// Results are cached on the compound only when they did not depend on a
// compound still being explored further up, so the answer for a type never
// depends on which type was asked about first.
func FullyDefined(t Type) bool {
	ok, _ := fullyDefined(t, make(map[Compound]exploreFrame), 0)
	return ok
}

// exploreFrame is a compound on the current path: its depth on the path and
// the number of wrappers crossed before it was entered.
type exploreFrame struct {
	depth int
	wraps int
}

// fullyDefined returns whether t is defined and the shallowest path depth
// the answer relied on, or math.MaxInt when it relied on none.
func fullyDefined(t Type, exploring map[Compound]exploreFrame, wraps int) (bool, int) {
	switch t := t.(type) {
	case *ArrayType:
		return fullyDefined(t.Base, exploring, wraps+1)
	case *MaybeType:
		return fullyDefined(t.Base, exploring, wraps+1)
	case *UniquePtrType:
		return fullyDefined(t.Base, exploring, wraps+1)
	case *NotNullType:
		return fullyDefined(t.Base, exploring, wraps)
	case Compound:
		return compoundDefined(t, exploring, wraps)
	default:
		return true, math.MaxInt
	}
}

func compoundDefined(c Compound, exploring map[Compound]exploreFrame, wraps int) (bool, int) {
	st := c.state()
	if st.defined {
		return true, math.MaxInt
	}
	if f, ok := exploring[c]; ok {
		return wraps > f.wraps, f.depth
	}
	depth := len(exploring)
	exploring[c] = exploreFrame{depth: depth, wraps: wraps}
	defer delete(exploring, c)

	isStruct := c.Kind() == KindStruct
	result := isStruct
	relied := math.MaxInt
	for _, comp := range c.Components() {
		ok, d := fullyDefined(comp, exploring, wraps)
		relied = min(relied, d)
		if isStruct && !ok {
			result = false
			break
		}
		if !isStruct && ok {
			result = true
			break
		}
	}
	if result && relied >= depth {
		st.defined = true
	}
	return result, relied
}

// MutuallyRecursiveWith reports whether t refers back to self through any
// chain of components. Every type on a discovered chain is remembered on
// self so later queries answer immediately.
func MutuallyRecursiveWith(self Compound, t Type) bool {
	return mutuallyRecursive(self, t, make(map[Compound]struct{}))
}

func mutuallyRecursive(self Compound, t Type, exploring map[Compound]struct{}) bool {
	if IsAtom(t) {
		return false
	}
	st := self.state()
	if Equal(t, self) {
		return true
	}
	if _, ok := st.mutualRec[KeyOf(t)]; ok {
		return true
	}
	if base, ok := BaseOf(t); ok {
		if mutuallyRecursive(self, base, exploring) {
			st.addMutualRec(t)
			return true
		}
		return false
	}
	c, ok := t.(Compound)
	if !ok {
		return false
	}
	if _, seen := exploring[c]; seen {
		return false
	}
	exploring[c] = struct{}{}
	defer delete(exploring, c)
	for _, comp := range c.Components() {
		if mutuallyRecursive(self, comp, exploring) {
			st.addMutualRec(comp)
			return true
		}
	}
	return false
}
