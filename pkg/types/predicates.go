package types

// IsAtom reports whether t has no component types. Compounds and wrappers
// are the only non-atoms.
func IsAtom(t Type) bool {
	switch t.Kind() {
	case KindStruct, KindUnion, KindArray, KindMaybe, KindUniquePtr, KindNotNull:
		return false
	default:
		return true
	}
}

func IsCompound(t Type) bool {
	k := t.Kind()
	return k == KindStruct || k == KindUnion
}

// IsCxx reports whether t comes from outside the IDL: void, builtin C types
// and imported C++ types.
func IsCxx(t Type) bool {
	k := t.Kind()
	return k == KindVoid || k == KindCxx
}

func IsIPDL(t Type) bool { return !IsCxx(t) }

func IsRefcounted(t Type) bool {
	switch t := t.(type) {
	case *CxxType:
		return t.Refcounted
	case *ProtocolType:
		return t.Refcounted
	case *ActorType:
		return t.Protocol.Refcounted
	default:
		return false
	}
}

func IsSendMoveOnly(t Type) bool {
	c, ok := t.(*CxxType)
	return ok && c.SendMoveOnly
}

func IsDataMoveOnly(t Type) bool {
	c, ok := t.(*CxxType)
	return ok && c.DataMoveOnly
}

// SupportsNullable reports whether a `nullable' qualifier is meaningful for t.
func SupportsNullable(t Type) bool {
	switch t := t.(type) {
	case *CxxType:
		return t.Refcounted
	case *ActorType:
		return true
	default:
		return false
	}
}

// BaseOf returns the wrapped type of an Array, Maybe, UniquePtr or NotNull.
func BaseOf(t Type) (Type, bool) {
	switch t := t.(type) {
	case *ArrayType:
		return t.Base, true
	case *MaybeType:
		return t.Base, true
	case *UniquePtrType:
		return t.Base, true
	case *NotNullType:
		return t.Base, true
	default:
		return nil, false
	}
}

func HasBaseType(t Type) bool {
	_, ok := BaseOf(t)
	return ok
}

// TypeName is the variant name used in diagnostics.
func TypeName(t Type) string {
	switch t := t.(type) {
	case *VoidType:
		return "VoidType"
	case *CxxType:
		if t.Builtin {
			return "BuiltinCType"
		}
		return "ImportedCxxType"
	case *StructType:
		return "StructType"
	case *UnionType:
		return "UnionType"
	case *ArrayType:
		return "ArrayType"
	case *MaybeType:
		return "MaybeType"
	case *UniquePtrType:
		return "UniquePtrType"
	case *NotNullType:
		return "NotNullType"
	case *ProtocolType:
		return "ProtocolType"
	case *ActorType:
		return "ActorType"
	case *MessageType:
		return "MessageType"
	case *ShmemType:
		return "ShmemType"
	case *ByteBufType:
		return "ByteBufType"
	case *FDType:
		return "FDType"
	case *EndpointType:
		return "EndpointType"
	case *ManagedEndpointType:
		return "ManagedEndpointType"
	default:
		return t.Kind().String()
	}
}
