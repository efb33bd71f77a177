package library

import (
	serr "stof/errors"
	"stof/value"
)

// ArrayLib is the `Array` scope: list operations, grounded in
// original_source's array library (push/pop/len/at/first/last/
// contains/reverse/join/sort/remove/append/clone).
type ArrayLib struct{}

func (ArrayLib) Scope() string { return "Array" }

func (ArrayLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	if len(args) == 0 || args[0].Kind != value.KindList {
		return value.Void(), argErr(name, "requires a list argument")
	}
	items := args[0].List
	switch name {
	case "len":
		return value.Int(int64(len(*items))), nil
	case "empty":
		return value.Bool(len(*items) == 0), nil
	case "push", "append":
		for _, a := range args[1:] {
			*items = append(*items, a)
		}
		return value.Bool(true), nil
	case "pop":
		if len(*items) == 0 {
			return value.Null(), nil
		}
		last := (*items)[len(*items)-1]
		*items = (*items)[:len(*items)-1]
		return last, nil
	case "first":
		if len(*items) == 0 {
			return value.Null(), nil
		}
		return (*items)[0], nil
	case "last":
		if len(*items) == 0 {
			return value.Null(), nil
		}
		return (*items)[len(*items)-1], nil
	case "at":
		if len(args) < 2 || args[1].Kind != value.KindInt {
			return value.Null(), nil
		}
		i := int(args[1].I)
		if i < 0 || i >= len(*items) {
			return value.Null(), nil
		}
		return (*items)[i], nil
	case "contains":
		if len(args) < 2 {
			return value.Bool(false), nil
		}
		for _, it := range *items {
			if value.Equal(it, args[1]) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case "remove":
		if len(args) < 2 || args[1].Kind != value.KindInt {
			return value.Bool(false), nil
		}
		i := int(args[1].I)
		if i < 0 || i >= len(*items) {
			return value.Bool(false), nil
		}
		*items = append((*items)[:i], (*items)[i+1:]...)
		return value.Bool(true), nil
	case "reverse":
		for i, j := 0, len(*items)-1; i < j; i, j = i+1, j-1 {
			(*items)[i], (*items)[j] = (*items)[j], (*items)[i]
		}
		return value.Bool(true), nil
	case "clear":
		*items = (*items)[:0]
		return value.Bool(true), nil
	case "clone":
		cp := append([]value.Value(nil), *items...)
		return value.List(cp), nil
	}
	return value.Void(), argErr(name, "unknown Array function %q", name)
}
