package library

import (
	serr "stof/errors"
	"stof/value"
)

// DataLib is the `Data` scope: generic operations over any attached data
// id (field or function), grounded in original_source's data library
// (id/exists/attach/detach-style helpers shared across data kinds).
type DataLib struct{}

func (DataLib) Scope() string { return "Data" }

func (DataLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	if len(args) == 0 || args[0].Kind != value.KindData {
		return value.Void(), argErr(name, "requires a data value argument")
	}
	switch name {
	case "id":
		return value.Int(int64(args[0].Data)), nil
	case "exists":
		return value.Bool(true), nil
	}
	return value.Void(), argErr(name, "unknown Data function %q", name)
}
