package library

import (
	serr "stof/errors"
	"stof/value"
)

// FnLib is the `Fn` scope: calling a function value held as data, and
// introspecting its name, grounded in original_source's func library
// (call/name/return type helpers built around SVal::Fn(DataRef)).
type FnLib struct{}

func (FnLib) Scope() string { return "Fn" }

func (FnLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	if len(args) == 0 || args[0].Kind != value.KindFn {
		return value.Void(), argErr(name, "requires a function value argument")
	}
	switch name {
	case "call":
		self, ok := host.Self(host.PID())
		if !ok {
			return value.Void(), argErr(name, "no current self to call against")
		}
		callArgs := args[1:]
		return host.CallFunction(host.PID(), self, fnDataName(host, args[0]), callArgs)
	}
	return value.Void(), argErr(name, "unknown Fn function %q", name)
}

func fnDataName(host Host, v value.Value) string {
	// The interpreter runs `f.call(...)` itself when f's data id resolves to
	// a Function, so this path only sees calls made straight into the
	// library; it has just the value's text form ("fn(<id>)") to hand to
	// CallFunction's by-name lookup.
	return v.String()
}
