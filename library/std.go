package library

import (
	"fmt"

	difflib "github.com/pmezard/go-difflib/difflib"
	gonanoid "github.com/matoous/go-nanoid/v2"

	serr "stof/errors"
	"stof/value"
)

// StdLib is the `std` scope: parsing/exporting, assertions, tracing,
// nanoid generation, and the isX family of type predicates (spec §4.7),
// grounded in original_source's StdLibrary::call match arms.
type StdLib struct{}

func (StdLib) Scope() string { return "std" }

func (StdLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	switch name {
	case "parse":
		return stdParse(host, args)
	case "stringify":
		return stdStringify(host, args)
	case "blobify":
		return stdBlobify(host, args)
	case "hasFormat":
		if len(args) < 1 {
			return value.Bool(false), nil
		}
		return value.Bool(host.HasFormat(args[0].String())), nil
	case "formats":
		items := make([]value.Value, 0)
		for _, f := range host.Formats() {
			items = append(items, value.Str(f))
		}
		return value.List(items), nil
	case "pln":
		for _, a := range args {
			host.Print(fmtVal(a))
		}
		return value.Void(), nil
	case "dbg":
		for _, a := range args {
			host.Debug(fmtVal(a))
		}
		return value.Void(), nil
	case "err":
		msg := ""
		if len(args) > 0 {
			msg = args[0].String()
		}
		return value.Void(), serr.New(host.PID(), serr.Thrown("err"), "%s", msg)
	case "throw":
		msg := ""
		if len(args) > 0 {
			msg = args[0].String()
		}
		kind := "user"
		if len(args) > 1 {
			kind = args[1].String()
		}
		return value.Void(), serr.New(host.PID(), serr.Thrown(kind), "%s", msg)
	case "assert":
		if len(args) != 1 || !value.Truthy(args[0]) {
			return value.Void(), argErr("assert", "assertion failed")
		}
		return value.Void(), nil
	case "assertNot":
		if len(args) != 1 || value.Truthy(args[0]) {
			return value.Void(), argErr("assertNot", "assertion failed")
		}
		return value.Void(), nil
	case "assertNull":
		if len(args) != 1 || args[0].Kind != value.KindNull {
			return value.Void(), argErr("assertNull", "value is not null")
		}
		return value.Void(), nil
	case "assertEq":
		return value.Void(), assertEq(args)
	case "assertNeq":
		return value.Void(), assertNeq(args)
	case "nanoid":
		n := 21
		if len(args) > 0 && args[0].Kind == value.KindInt {
			n = int(args[0].I)
		}
		id, err := gonanoid.New(n)
		if err != nil {
			return value.Void(), serr.Wrap(host.PID(), serr.Std("nanoid"), err)
		}
		return value.Str(id), nil
	case "isNumber":
		return value.Bool(len(args) == 1 && args[0].IsNumeric()), nil
	case "isString":
		return value.Bool(len(args) == 1 && args[0].Kind == value.KindStr), nil
	case "isBool":
		return value.Bool(len(args) == 1 && args[0].Kind == value.KindBool), nil
	case "isNull":
		return value.Bool(len(args) == 1 && args[0].Kind == value.KindNull), nil
	case "isObject":
		return value.Bool(len(args) == 1 && args[0].Kind == value.KindObj), nil
	case "isArray":
		return value.Bool(len(args) == 1 && args[0].Kind == value.KindList), nil
	case "isMap":
		return value.Bool(len(args) == 1 && args[0].Kind == value.KindMap), nil
	case "isSet":
		return value.Bool(len(args) == 1 && args[0].Kind == value.KindSet), nil
	case "isBlob":
		return value.Bool(len(args) == 1 && args[0].Kind == value.KindBlob), nil
	case "isFunc":
		return value.Bool(len(args) == 1 && args[0].Kind == value.KindFn), nil
	case "libraries":
		return value.Str("std,Obj,Array,Map,Set,Num,Str,Fn,Data,fs,time,SemVer"), nil
	}
	return value.Void(), argErr(name, "unknown std function %q", name)
}

func stdParse(host Host, args []value.Value) (value.Value, *serr.Error) {
	if len(args) == 0 {
		return value.Bool(false), nil
	}
	format := "stof"
	if len(args) > 1 {
		format = args[1].String()
	}
	asPath := "root"
	if self, ok := host.Self(host.PID()); ok {
		asPath = host.NodePath(self)
	}
	if len(args) > 2 {
		req := args[2].String()
		asPath = joinRelative(asPath, req)
	}
	if args[0].Kind != value.KindStr {
		return value.Bool(false), nil
	}
	if err := host.StringImport(host.PID(), format, args[0].S, asPath); err != nil {
		return value.Void(), err
	}
	return value.Bool(true), nil
}

func joinRelative(base, req string) string {
	if len(req) >= 4 && req[:4] == "self" {
		return base + "." + req
	}
	if len(req) >= 5 && req[:5] == "super" {
		return base + "." + req
	}
	return req
}

func stdStringify(host Host, args []value.Value) (value.Value, *serr.Error) {
	if len(args) == 0 {
		return value.Null(), nil
	}
	format := "stof"
	if len(args) > 1 {
		format = args[1].String()
	}
	pretty := false
	if len(args) > 2 {
		pretty = value.Truthy(args[2])
	}
	if args[0].Kind != value.KindObj {
		out, err := host.StringExport(host.PID(), format, 0, pretty)
		if err != nil {
			return value.Void(), err
		}
		return value.Str(out), nil
	}
	out, err := host.StringExport(host.PID(), format, args[0].Obj, pretty)
	if err != nil {
		return value.Void(), err
	}
	return value.Str(out), nil
}

func stdBlobify(host Host, args []value.Value) (value.Value, *serr.Error) {
	if len(args) == 0 {
		return value.Null(), nil
	}
	format := "stof"
	if len(args) > 1 {
		format = args[1].String()
	}
	if args[0].Kind != value.KindObj {
		return value.Void(), argErr("blobify", "first argument must be an object")
	}
	bytes, err := host.BytesExport(host.PID(), format, args[0].Obj)
	if err != nil {
		return value.Void(), err
	}
	return value.Blob(bytes), nil
}

func assertEq(args []value.Value) *serr.Error {
	if len(args) != 2 {
		return argErr("assertEq", "must give 2 parameters to assert they equal each other")
	}
	if value.Equal(args[0], args[1]) {
		return nil
	}
	diff := unifiedDiff(args[0], args[1])
	return argErr("assertEq", "%s != %s\n%s", args[0].String(), args[1].String(), diff)
}

func assertNeq(args []value.Value) *serr.Error {
	if len(args) != 2 {
		return argErr("assertNeq", "must give 2 arguments to assert they do not equal each other")
	}
	if !value.Equal(args[0], args[1]) {
		return nil
	}
	return argErr("assertNeq", "%s == %s", args[0].String(), args[1].String())
}

// unifiedDiff renders a line-level diff for assertEq failures, grounded in
// the teacher's pmezard/go-difflib usage for readable test-failure output.
func unifiedDiff(a, b value.Value) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a.String()),
		B:        difflib.SplitLines(b.String()),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("(diff unavailable: %s)", err)
	}
	return text
}
