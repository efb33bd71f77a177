package value

import (
	"bytes"

	"stof/units"
)

// Equal implements spec §4.2 equality: kind-wise, Ref-transparent, numbers
// compared in a common unit base. Grounded in original_source's Num PartialEq
// impl, which always normalizes angle comparisons to PositiveRadians and
// rounds to six decimal places before comparing.
func Equal(a, b Value) bool {
	a, b = Deref(a), Deref(b)

	if a.IsNumeric() && b.IsNumeric() {
		return numEqual(a, b)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindVoid, KindNull:
		return true
	case KindBool:
		return a.B == b.B
	case KindStr:
		return a.S == b.S
	case KindBlob:
		return bytes.Equal(a.Blob, b.Blob)
	case KindObj:
		return a.Obj == b.Obj
	case KindFn:
		return a.Fn == b.Fn
	case KindData:
		return a.Data == b.Data
	case KindList:
		return valueSliceEqual(*a.List, *b.List)
	case KindTuple:
		return valueSliceEqual(*a.Tup, *b.Tup)
	case KindSet:
		if a.Set.Len() != b.Set.Len() {
			return false
		}
		for _, v := range a.Set.Items() {
			if !b.Set.Has(v) {
				return false
			}
		}
		return true
	case KindMap:
		if a.Map.Len() != b.Map.Len() {
			return false
		}
		for _, k := range a.Map.Keys() {
			av, _ := a.Map.Get(k)
			bv, ok := b.Map.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindSemVer:
		return *a.SemVer == *b.SemVer
	case KindPromise:
		return a.Promise.PID == b.Promise.PID
	}
	return false
}

func valueSliceEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func numEqual(a, b Value) bool {
	au, bu := unitsOf(a), unitsOf(b)
	base := units.Common(au, bu)
	if base == units.Undefined && (au != units.Undefined || bu != units.Undefined) {
		// incompatible dimensions: never equal (spec §8, property 3).
		if au != bu {
			return false
		}
		base = au
	}
	av, aerr := units.ConvertExact(a.AsFloat(), normalizeBase(au), normalizeBase(base))
	bv, berr := units.ConvertExact(b.AsFloat(), normalizeBase(bu), normalizeBase(base))
	if aerr != nil || berr != nil {
		return a.AsFloat() == b.AsFloat()
	}
	if base.IsAngle() {
		const scale = 1000000.0
		return roundTo(av*scale) == roundTo(bv*scale)
	}
	return av == bv
}

func normalizeBase(u units.Units) units.Units {
	if u == units.Undefined {
		return units.Undefined
	}
	return u
}

func roundTo(f float64) int64 {
	if f >= 0 {
		return int64(f + 0.5)
	}
	return int64(f - 0.5)
}

// Ordering result.
type Ordering int

const (
	Less Ordering = iota - 1
	EqualOrd
	Greater
	Unordered // "ordered-but-unequal": neither < nor > holds
)

// Compare implements spec §4.2 ordering: numbers (unit-aware) and strings
// lexicographically; blobs by length; everything else Unordered.
func Compare(a, b Value) Ordering {
	a, b = Deref(a), Deref(b)
	if a.IsNumeric() && b.IsNumeric() {
		au, bu := unitsOf(a), unitsOf(b)
		base := units.Common(au, bu)
		av, aerr := units.ConvertExact(a.AsFloat(), au, base)
		bv, berr := units.ConvertExact(b.AsFloat(), bu, base)
		if aerr != nil || berr != nil {
			av, bv = a.AsFloat(), b.AsFloat()
		}
		switch {
		case av < bv:
			return Less
		case av > bv:
			return Greater
		default:
			return EqualOrd
		}
	}
	if a.Kind == KindStr && b.Kind == KindStr {
		switch {
		case a.S < b.S:
			return Less
		case a.S > b.S:
			return Greater
		default:
			return EqualOrd
		}
	}
	if a.Kind == KindBlob && b.Kind == KindBlob {
		switch {
		case len(a.Blob) < len(b.Blob):
			return Less
		case len(a.Blob) > len(b.Blob):
			return Greater
		default:
			return EqualOrd
		}
	}
	return Unordered
}

func Lt(a, b Value) bool  { return Compare(a, b) == Less }
func Lte(a, b Value) bool { o := Compare(a, b); return o == Less || o == EqualOrd }
func Gt(a, b Value) bool  { return Compare(a, b) == Greater }
func Gte(a, b Value) bool { o := Compare(a, b); return o == Greater || o == EqualOrd }
