package value

import (
	"strconv"
	"strings"

	serr "stof/errors"
	"stof/units"
)

// Add/Sub/Mul/Div/Mod implement spec §4.2 arithmetic. Null/Void act as
// identity; unit-bearing operands convert to a common base; mixing
// incompatible dimensions falls back to unitless Float (a deliberate,
// documented lossy accommodation, design notes §9).

func Add(pid uint64, a, b Value) (Value, *serr.Error) {
	a, b = Deref(a), Deref(b)
	if a.Kind == KindNull || a.Kind == KindVoid {
		return b, nil
	}
	if b.Kind == KindNull || b.Kind == KindVoid {
		return a, nil
	}
	if a.Kind == KindStr || b.Kind == KindStr {
		return Str(a.String() + b.String()), nil
	}
	if a.IsNumeric() && b.IsNumeric() {
		return numBinOp(a, b, func(x, y float64) float64 { return x + y }), nil
	}
	if a.Kind == KindList && b.Kind == KindList {
		out := append(append([]Value(nil), *a.List...), *b.List...)
		return List(out), nil
	}
	return Value{}, serr.New(pid, serr.KindArithIncompatible, "cannot add %s and %s", a.Kind, b.Kind)
}

func Sub(pid uint64, a, b Value) (Value, *serr.Error) {
	a, b = Deref(a), Deref(b)
	if a.Kind == KindNull || a.Kind == KindVoid {
		return b, nil
	}
	if b.Kind == KindNull || b.Kind == KindVoid {
		return a, nil
	}
	if a.IsNumeric() && b.IsNumeric() {
		return numBinOp(a, b, func(x, y float64) float64 { return x - y }), nil
	}
	if a.Kind == KindSet && b.Kind == KindSet {
		out := a.Set.Clone()
		for _, v := range b.Set.Items() {
			out.Remove(v)
		}
		return Value{Kind: KindSet, Set: out}, nil
	}
	return Value{}, serr.New(pid, serr.KindArithIncompatible, "cannot subtract %s and %s", a.Kind, b.Kind)
}

func Mul(pid uint64, a, b Value) (Value, *serr.Error) {
	a, b = Deref(a), Deref(b)
	if a.IsNumeric() && b.IsNumeric() {
		return numBinOp(a, b, func(x, y float64) float64 { return x * y }), nil
	}
	if a.Kind == KindStr && b.Kind == KindInt {
		return Str(strings.Repeat(a.S, int(b.I))), nil
	}
	return Value{}, serr.New(pid, serr.KindArithIncompatible, "cannot multiply %s and %s", a.Kind, b.Kind)
}

func Div(pid uint64, a, b Value) (Value, *serr.Error) {
	a, b = Deref(a), Deref(b)
	if a.Kind == KindStr && b.Kind == KindStr {
		return List(strSplit(a.S, b.S)), nil
	}
	if a.IsNumeric() && b.IsNumeric() {
		if a.Kind == KindInt && b.Kind == KindInt {
			if b.I == 0 {
				return Value{}, serr.New(pid, serr.KindArithDiv, "integer division by zero")
			}
			return Int(a.I / b.I), nil
		}
		return numBinOp(a, b, func(x, y float64) float64 { return x / y }), nil
	}
	return Value{}, serr.New(pid, serr.KindArithIncompatible, "cannot divide %s and %s", a.Kind, b.Kind)
}

func Mod(pid uint64, a, b Value) (Value, *serr.Error) {
	a, b = Deref(a), Deref(b)
	if a.Kind == KindStr && b.Kind == KindStr {
		parts := strSplit(a.S, b.S)
		if len(parts) == 0 {
			return Str(""), nil
		}
		return parts[len(parts)-1], nil
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		if b.I == 0 {
			return Value{}, serr.New(pid, serr.KindArithMod, "integer modulo by zero")
		}
		return Int(a.I % b.I), nil
	}
	if a.IsNumeric() && b.IsNumeric() {
		af, bf := a.AsFloat(), b.AsFloat()
		if bf == 0 {
			return Value{}, serr.New(pid, serr.KindArithMod, "modulo by zero")
		}
		res := numBinOp(a, b, func(x, y float64) float64 {
			m := x - y*float64(int64(x/y))
			return m
		})
		return res, nil
	}
	return Value{}, serr.New(pid, serr.KindArithIncompatible, "cannot modulo %s and %s", a.Kind, b.Kind)
}

// numBinOp converts both operands to a common unit base when dimensions
// match; when they mismatch it erases units to a plain Float (§4.2's
// "intentional lossy fallback").
func numBinOp(a, b Value, op func(x, y float64) float64) Value {
	if a.Kind == KindInt && b.Kind == KindInt {
		return Int(int64(op(float64(a.I), float64(b.I))))
	}
	au, bu := unitsOf(a), unitsOf(b)
	if au == units.Undefined && bu == units.Undefined {
		return Float(op(a.AsFloat(), b.AsFloat()))
	}
	base := units.Common(au, bu)
	if base == units.Undefined {
		// incompatible dimensions: lossy unitless fallback.
		return Float(op(a.AsFloat(), b.AsFloat()))
	}
	// Cross-unit operands route through decimal-backed conversion so the
	// combine below isn't already carrying float64 drift from the convert.
	av, _ := units.ConvertExact(a.AsFloat(), au, base)
	bv, _ := units.ConvertExact(b.AsFloat(), bu, base)
	if au == units.Undefined {
		av = a.AsFloat()
	}
	if bu == units.Undefined {
		bv = b.AsFloat()
	}
	return Units(op(av, bv), base)
}

func strSplit(s, sep string) []Value {
	parts := strings.Split(s, sep)
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = Str(p)
	}
	return out
}

// Bitwise operators: integer-coerce operands, preserve left operand's units.
func bitwiseCoerce(v Value) int64 {
	switch v.Kind {
	case KindInt:
		return v.I
	case KindFloat, KindUnits:
		return int64(v.F)
	case KindBool:
		if v.B {
			return 1
		}
		return 0
	}
	return 0
}

func bitwiseResult(a Value, r int64) Value {
	if a.Kind == KindUnits {
		return Units(float64(r), a.U)
	}
	return Int(r)
}

func And(a, b Value) Value { return bitwiseResult(a, bitwiseCoerce(a)&bitwiseCoerce(b)) }
func Or(a, b Value) Value  { return bitwiseResult(a, bitwiseCoerce(a)|bitwiseCoerce(b)) }
func Xor(a, b Value) Value { return bitwiseResult(a, bitwiseCoerce(a)^bitwiseCoerce(b)) }
func Shl(a, b Value) Value { return bitwiseResult(a, bitwiseCoerce(a)<<uint64(bitwiseCoerce(b))) }
func Shr(a, b Value) Value { return bitwiseResult(a, bitwiseCoerce(a)>>uint64(bitwiseCoerce(b))) }

// parseFloat is used by Cast for locale-independent string->number parsing.
func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

func parseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return i, err == nil
}
