package library

import (
	serr "stof/errors"
	"stof/value"
)

// SetLib is the `Set` scope, grounded in original_source's set library
// (insert/remove/contains/len/clear/union-via-Add semantics).
type SetLib struct{}

func (SetLib) Scope() string { return "Set" }

func (SetLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	if len(args) == 0 || args[0].Kind != value.KindSet {
		return value.Void(), argErr(name, "requires a set argument")
	}
	set := args[0].SetRef()
	switch name {
	case "len":
		return value.Int(int64(set.Len())), nil
	case "empty":
		return value.Bool(set.Len() == 0), nil
	case "insert":
		if len(args) < 2 {
			return value.Bool(false), nil
		}
		return value.Bool(set.Add(args[1])), nil
	case "remove":
		if len(args) < 2 {
			return value.Bool(false), nil
		}
		return value.Bool(set.Remove(args[1])), nil
	case "contains":
		if len(args) < 2 {
			return value.Bool(false), nil
		}
		return value.Bool(set.Has(args[1])), nil
	case "clear":
		for _, item := range append([]value.Value(nil), set.Items()...) {
			set.Remove(item)
		}
		return value.Bool(true), nil
	case "toArray":
		return value.List(append([]value.Value(nil), set.Items()...)), nil
	}
	return value.Void(), argErr(name, "unknown Set function %q", name)
}
