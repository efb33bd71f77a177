package library

import (
	serr "stof/errors"
	"stof/value"
)

// ObjLib is the `Obj` scope: node introspection and mutation (name, path,
// parent, children, fields, funcs, move, prototypes), grounded
// in original_source/src/model/libraries/obj/mod.rs's Obj library enum.
type ObjLib struct{}

func (ObjLib) Scope() string { return "Obj" }

func objArg(args []value.Value) (value.NodeID, bool) {
	if len(args) == 0 || args[0].Kind != value.KindObj {
		return 0, false
	}
	return args[0].Obj, true
}

func (ObjLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	node, hasObj := objArg(args)
	switch name {
	case "name":
		if !hasObj {
			return value.Void(), argErr(name, "requires an object argument")
		}
		return value.Str(host.NodeName(node)), nil
	case "path":
		if !hasObj {
			return value.Void(), argErr(name, "requires an object argument")
		}
		return value.Str(host.NodePath(node)), nil
	case "parent":
		if !hasObj {
			return value.Void(), argErr(name, "requires an object argument")
		}
		if p, ok := host.ParentOf(node); ok {
			return value.Obj(p), nil
		}
		return value.Null(), nil
	case "children":
		if !hasObj {
			return value.Void(), argErr(name, "requires an object argument")
		}
		kids := host.ChildrenOf(node)
		items := make([]value.Value, 0, len(kids))
		for _, k := range kids {
			items = append(items, value.Obj(k))
		}
		return value.List(items), nil
	case "exists":
		return value.Bool(hasObj), nil
	case "isRoot":
		if !hasObj {
			return value.Bool(false), nil
		}
		_, ok := host.ParentOf(node)
		return value.Bool(!ok), nil
	case "fields":
		if !hasObj {
			return value.Void(), argErr(name, "requires an object argument")
		}
		items := make([]value.Value, 0)
		for _, n := range host.FieldNames(node) {
			items = append(items, value.Str(n))
		}
		return value.List(items), nil
	case "funcs":
		if !hasObj {
			return value.Void(), argErr(name, "requires an object argument")
		}
		items := make([]value.Value, 0)
		for _, n := range host.FunctionNames(node) {
			items = append(items, value.Str(n))
		}
		return value.List(items), nil
	case "get":
		if !hasObj || len(args) < 2 {
			return value.Void(), argErr(name, "requires (object, field name)")
		}
		if v, ok := host.FieldByName(node, args[1].String()); ok {
			return v, nil
		}
		return value.Null(), nil
	case "set", "insert":
		if !hasObj || len(args) < 3 {
			return value.Void(), argErr(name, "requires (object, field name, value)")
		}
		if err := host.SetField(node, args[1].String(), args[2]); err != nil {
			return value.Bool(false), serr.Wrap(host.PID(), serr.KindObjGet, err)
		}
		return value.Bool(true), nil
	case "contains":
		if !hasObj || len(args) < 2 {
			return value.Bool(false), nil
		}
		_, ok := host.FieldByName(node, args[1].String())
		return value.Bool(ok), nil
	case "remove":
		if !hasObj || len(args) < 2 {
			return value.Bool(false), nil
		}
		return value.Bool(host.RemoveField(node, args[1].String())), nil
	case "empty":
		if !hasObj {
			return value.Bool(true), nil
		}
		return value.Bool(len(host.FieldNames(node)) == 0 && len(host.FunctionNames(node)) == 0 && len(host.ChildrenOf(node)) == 0), nil
	case "move":
		if !hasObj || len(args) < 2 || args[1].Kind != value.KindObj {
			return value.Void(), argErr(name, "requires (object, destination object)")
		}
		if err := host.MoveNode(node, args[1].Obj); err != nil {
			return value.Bool(false), serr.Wrap(host.PID(), serr.KindObjGet, err)
		}
		return value.Bool(true), nil
	case "instanceOf":
		if !hasObj || len(args) < 2 {
			return value.Bool(false), nil
		}
		return value.Bool(host.InstanceOf(node, args[1].String())), nil
	case "typename":
		if !hasObj {
			return value.Null(), nil
		}
		if t, ok := host.TypeName(node); ok {
			return value.Str(t), nil
		}
		return value.Null(), nil
	case "run":
		if !hasObj {
			return value.Void(), argErr(name, "requires an object argument")
		}
		return host.CallFunction(host.PID(), node, "main", nil)
	}
	return value.Void(), argErr(name, "unknown Obj function %q", name)
}
