package library

import (
	"math"

	serr "stof/errors"
	"stof/units"
	"stof/value"
)

// NumLib is the `Num` scope: numeric helpers and unit conversion, grounded
// in original_source's runtime/num.rs operations (abs/floor/ceil/round/
// sqrt/pow/min/max, plus `as` for unit conversion).
type NumLib struct{}

func (NumLib) Scope() string { return "Num" }

func (NumLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	if len(args) == 0 || !args[0].IsNumeric() {
		return value.Void(), argErr(name, "requires a numeric argument")
	}
	f := args[0].AsFloat()
	switch name {
	case "abs":
		return rewrap(args[0], math.Abs(f)), nil
	case "floor":
		return rewrap(args[0], math.Floor(f)), nil
	case "ceil":
		return rewrap(args[0], math.Ceil(f)), nil
	case "round":
		return rewrap(args[0], math.Round(f)), nil
	case "sqrt":
		return value.Float(math.Sqrt(f)), nil
	case "pow":
		if len(args) < 2 {
			return value.Void(), argErr(name, "requires an exponent argument")
		}
		return value.Float(math.Pow(f, args[1].AsFloat())), nil
	case "min":
		if len(args) < 2 {
			return args[0], nil
		}
		if args[1].AsFloat() < f {
			return args[1], nil
		}
		return args[0], nil
	case "max":
		if len(args) < 2 {
			return args[0], nil
		}
		if args[1].AsFloat() > f {
			return args[1], nil
		}
		return args[0], nil
	case "as":
		if len(args) < 2 {
			return value.Void(), argErr(name, "requires a target unit name")
		}
		target, ok := units.Parse(args[1].String())
		if !ok {
			return value.Void(), argErr(name, "unknown unit %q", args[1].String())
		}
		from := units.Undefined
		if args[0].Kind == value.KindUnits {
			from = args[0].U
		}
		converted, cerr := units.Convert(f, from, target)
		if cerr != nil {
			return value.Void(), serr.Wrap(host.PID(), serr.KindArithIncompatible, cerr)
		}
		return value.Value{Kind: value.KindUnits, F: converted, U: target}, nil
	}
	return value.Void(), argErr(name, "unknown Num function %q", name)
}

func rewrap(orig value.Value, f float64) value.Value {
	if orig.Kind == value.KindInt {
		return value.Int(int64(f))
	}
	if orig.Kind == value.KindUnits {
		return value.Value{Kind: value.KindUnits, F: f, U: orig.U}
	}
	return value.Float(f)
}
