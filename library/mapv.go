package library

import (
	serr "stof/errors"
	"stof/value"
)

// MapLib is the `Map` scope, grounded in original_source's map library
// (insert/get/remove/contains/len/keys/clear).
type MapLib struct{}

func (MapLib) Scope() string { return "Map" }

func (MapLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	if len(args) == 0 || args[0].Kind != value.KindMap {
		return value.Void(), argErr(name, "requires a map argument")
	}
	m := args[0].MapRef()
	switch name {
	case "len":
		return value.Int(int64(m.Len())), nil
	case "empty":
		return value.Bool(m.Len() == 0), nil
	case "insert", "set":
		if len(args) < 3 {
			return value.Bool(false), nil
		}
		m.Set(args[1], args[2])
		return value.Bool(true), nil
	case "get":
		if len(args) < 2 {
			return value.Null(), nil
		}
		if v, ok := m.Get(args[1]); ok {
			return v, nil
		}
		return value.Null(), nil
	case "contains":
		if len(args) < 2 {
			return value.Bool(false), nil
		}
		_, ok := m.Get(args[1])
		return value.Bool(ok), nil
	case "remove":
		if len(args) < 2 {
			return value.Bool(false), nil
		}
		return value.Bool(m.Delete(args[1])), nil
	case "keys":
		return value.List(append([]value.Value(nil), m.Keys()...)), nil
	case "clear":
		for _, k := range append([]value.Value(nil), m.Keys()...) {
			m.Delete(k)
		}
		return value.Bool(true), nil
	}
	return value.Void(), argErr(name, "unknown Map function %q", name)
}
