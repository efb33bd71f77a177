// Package value implements Stof's sum-typed runtime Value (spec §4.2): the
// single operand type threaded through the interpreter, the graph's field
// storage, and every format adapter's scalar representation.
//
// Grounded in original_source/src/data/value.rs (the Rust SVal enum) for the
// variant list and in the teacher's plain-struct-with-tag style (core/types.go,
// internal/model/model.go) for how Go expresses the sum type: one struct,
// one Kind tag, and only the fields relevant to that Kind populated.
package value

import (
	"fmt"
	"strings"

	"stof/units"
)

// NodeID and DataID are opaque graph identifiers. Defined here (rather than
// in package graph) so Value can hold Obj/Fn/Data variants without value
// importing graph - graph imports value, not the other way around.
type NodeID uint64
type DataID uint64

// Kind tags the active variant of a Value.
type Kind uint8

const (
	KindVoid Kind = iota
	KindNull
	KindBool
	KindStr
	KindBlob
	KindInt
	KindFloat
	KindUnits
	KindObj
	KindFn
	KindData
	KindList
	KindTuple
	KindSet
	KindMap
	KindSemVer
	KindRef
	KindPromise
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	case KindBlob:
		return "blob"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindUnits:
		return "units"
	case KindObj:
		return "obj"
	case KindFn:
		return "fn"
	case KindData:
		return "data"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	case KindSemVer:
		return "semver"
	case KindRef:
		return "ref"
	case KindPromise:
		return "promise"
	}
	return "unknown"
}

// SemVer is a semantic version, spec §3.
type SemVer struct {
	Major, Minor, Patch uint64
	Release             string
	Build               string
}

// Promise is a typed join handle for a spawned process (spec §3, §5).
type Promise struct {
	PID      uint64
	Expected Type
}

// Value is the Stof sum type. Only the fields relevant to Kind are
// meaningful; all others are zero. Containers (List/Tuple/Set/Map) and Ref
// hold pointers so aliasing/mutation semantics (invariant iii) are cheap.
type Value struct {
	Kind Kind

	B    bool
	S    string
	Blob []byte
	I    int64
	F    float64
	U    units.Units

	Obj  NodeID
	Fn   DataID
	Data DataID

	List *[]Value
	Tup  *[]Value
	Set  *orderedSet
	Map  *omap

	SemVer  *SemVer
	Ref     *Cell
	Promise *Promise
}

// Cell is the interior-mutable cell backing Ref values (design note:
// "aliasable mutable values"). Multiple Value{Kind:KindRef} instances can
// share a *Cell, so writing through one is observed by all aliases.
type Cell struct {
	V Value
}

func NewRef(v Value) Value { return Value{Kind: KindRef, Ref: &Cell{V: v}} }

// Deref follows through a Ref to the underlying value; a no-op on non-Refs.
// Every operator in this package calls Deref on its operands first, per
// invariant (iii): "every operator transparently unwraps through Ref".
func Deref(v Value) Value {
	for v.Kind == KindRef {
		v = v.Ref.V
	}
	return v
}

// Set writes through a Ref cell, or is a plain value replacement otherwise.
func (v *Value) Set(nv Value) {
	if v.Kind == KindRef {
		v.Ref.V = nv
		return
	}
	*v = nv
}

func Void() Value              { return Value{Kind: KindVoid} }
func Null() Value              { return Value{Kind: KindNull} }
func Bool(b bool) Value        { return Value{Kind: KindBool, B: b} }
func Str(s string) Value       { return Value{Kind: KindStr, S: s} }
func Blob(b []byte) Value      { return Value{Kind: KindBlob, Blob: b} }
func Int(i int64) Value        { return Value{Kind: KindInt, I: i} }
func Float(f float64) Value    { return Value{Kind: KindFloat, F: f} }
func Units(f float64, u units.Units) Value {
	if u == units.Undefined {
		return Float(f)
	}
	return Value{Kind: KindUnits, F: f, U: u}
}
func Obj(id NodeID) Value  { return Value{Kind: KindObj, Obj: id} }
func Fn(id DataID) Value   { return Value{Kind: KindFn, Fn: id} }
func DataV(id DataID) Value { return Value{Kind: KindData, Data: id} }
func List(items []Value) Value {
	l := append([]Value(nil), items...)
	return Value{Kind: KindList, List: &l}
}
func Tuple(items []Value) Value {
	t := append([]Value(nil), items...)
	return Value{Kind: KindTuple, Tup: &t}
}
func SemVerV(major, minor, patch uint64, release, build string) Value {
	return Value{Kind: KindSemVer, SemVer: &SemVer{major, minor, patch, release, build}}
}
func PromiseV(pid uint64, expected Type) Value {
	return Value{Kind: KindPromise, Promise: &Promise{PID: pid, Expected: expected}}
}

// NewSet and NewMap construct empty container values; both preserve
// insertion order, as the format layer and `for-in` iteration rely on
// stable iteration (spec §4.9, §4.6).
func NewSet() Value { return Value{Kind: KindSet, Set: newOrderedSet()} }
func NewMap() Value { return Value{Kind: KindMap, Map: newOMap()} }

// IsNumeric reports whether this is one of the three Num variants.
func (v Value) IsNumeric() bool {
	switch v.Kind {
	case KindInt, KindFloat, KindUnits:
		return true
	}
	return false
}

// AsFloat widens any numeric variant to float64 (losing unit information).
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.I)
	case KindFloat, KindUnits:
		return v.F
	}
	return 0
}

// Truthy implements spec §4.2's truthy table.
func Truthy(v Value) bool {
	v = Deref(v)
	switch v.Kind {
	case KindVoid, KindNull:
		return false
	case KindBool:
		return v.B
	case KindStr:
		return v.S != ""
	case KindBlob:
		return len(v.Blob) > 0
	case KindInt:
		return v.I != 0
	case KindFloat, KindUnits:
		return v.F != 0
	case KindList:
		return len(*v.List) > 0
	case KindTuple:
		return len(*v.Tup) > 0
	case KindSet:
		return v.Set.Len() > 0
	case KindMap:
		return v.Map.Len() > 0
	default:
		return true
	}
}

func (v Value) String() string {
	v = Deref(v)
	switch v.Kind {
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case KindStr:
		return v.S
	case KindBlob:
		return fmt.Sprintf("blob(%d bytes)", len(v.Blob))
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindFloat:
		return trimFloat(v.F)
	case KindUnits:
		return trimFloat(v.F) + v.U.String()
	case KindObj:
		return fmt.Sprintf("obj(%d)", v.Obj)
	case KindFn:
		return fmt.Sprintf("fn(%d)", v.Fn)
	case KindData:
		return fmt.Sprintf("data(%d)", v.Data)
	case KindList:
		parts := make([]string, len(*v.List))
		for i, item := range *v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindTuple:
		parts := make([]string, len(*v.Tup))
		for i, item := range *v.Tup {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindSet:
		parts := make([]string, 0, v.Set.Len())
		for _, item := range v.Set.Items() {
			parts = append(parts, item.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindMap:
		keys := v.Map.Keys()
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			mv, _ := v.Map.Get(k)
			parts = append(parts, k.String()+": "+mv.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindSemVer:
		s := fmt.Sprintf("%d.%d.%d", v.SemVer.Major, v.SemVer.Minor, v.SemVer.Patch)
		if v.SemVer.Release != "" {
			s += "-" + v.SemVer.Release
		}
		if v.SemVer.Build != "" {
			s += "+" + v.SemVer.Build
		}
		return s
	case KindPromise:
		return fmt.Sprintf("promise(%d)", v.Promise.PID)
	}
	return ""
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}
