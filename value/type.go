package value

import "stof/units"

// NumberKind refines Type for the three Num variants, per spec §3.
type NumberKind uint8

const (
	IntT NumberKind = iota
	FloatT
	UnitsT
)

// Type mirrors Value with the refinements spec §3 lists: Number carries a
// NumberKind, Obj carries an (empty = any) type name, Data carries a kind
// tag, Tuple carries its element types.
type Type struct {
	Kind     Kind
	Number   NumberKind
	ObjType  string // "" or "obj" = any object
	DataKind string
	Elems    []Type // Tuple element types
	Boxed    *Type  // non-nil when this Type is Boxed(T) (a declared Ref)
}

func VoidT() Type { return Type{Kind: KindVoid} }
func NullT() Type { return Type{Kind: KindNull} }
func UnknownT() Type {
	return Type{Kind: 255} // sentinel: matches everything in Matches
}
func BoolT() Type { return Type{Kind: KindBool} }
func StrT() Type  { return Type{Kind: KindStr} }
func BlobT() Type { return Type{Kind: KindBlob} }
func IntType() Type   { return Type{Kind: KindInt, Number: IntT} }
func FloatType() Type { return Type{Kind: KindFloat, Number: FloatT} }
func UnitsType() Type { return Type{Kind: KindUnits, Number: UnitsT} }
func ObjT(typeName string) Type { return Type{Kind: KindObj, ObjType: typeName} }
func FnT() Type                 { return Type{Kind: KindFn} }
func DataT(kind string) Type    { return Type{Kind: KindData, DataKind: kind} }
func ListT() Type               { return Type{Kind: KindList} }
func TupleT(elems []Type) Type  { return Type{Kind: KindTuple, Elems: elems} }
func SetT() Type                { return Type{Kind: KindSet} }
func MapT() Type                { return Type{Kind: KindMap} }
func SemVerT() Type             { return Type{Kind: KindSemVer} }
func BoxedT(inner Type) Type    { return Type{Kind: KindRef, Boxed: &inner} }
func PromiseT(inner Type) Type  { return Type{Kind: KindPromise, Boxed: &inner} }

const unknownKind Kind = 255

func (t Type) IsUnknown() bool { return t.Kind == unknownKind }

// TypeOf returns the dynamic Type of a Value.
func TypeOf(v Value) Type {
	v = Deref(v)
	switch v.Kind {
	case KindInt:
		return IntType()
	case KindFloat:
		return FloatType()
	case KindUnits:
		return UnitsType()
	case KindObj:
		return ObjT("")
	case KindTuple:
		elems := make([]Type, len(*v.Tup))
		for i, e := range *v.Tup {
			elems[i] = TypeOf(e)
		}
		return TupleT(elems)
	default:
		return Type{Kind: v.Kind}
	}
}

// Matches reports whether value v satisfies declared type t (invariant i).
// Unknown matches anything; an empty-named Obj type matches any object.
func Matches(v Value, t Type) bool {
	if t.IsUnknown() {
		return true
	}
	v = Deref(v)
	switch t.Kind {
	case KindObj:
		return v.Kind == KindObj
	case KindRef:
		return v.Kind == KindRef
	default:
		return v.Kind == t.Kind
	}
}

// SchemaEq implements spec §4.2's "equal iff generic types match".
func SchemaEq(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == KindTuple {
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !SchemaEq(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
	}
	return true
}

func (t Type) String() string {
	switch t.Kind {
	case KindObj:
		if t.ObjType == "" {
			return "obj"
		}
		return t.ObjType
	case KindUnits:
		return "units"
	default:
		return t.Kind.String()
	}
}

// unitsOf is a small convenience used by arith/compare for unit-bearing values.
func unitsOf(v Value) units.Units {
	if v.Kind == KindUnits {
		return v.U
	}
	return units.Undefined
}
