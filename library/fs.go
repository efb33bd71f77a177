package library

import (
	serr "stof/errors"
	"stof/value"
)

// FsLib is the `fs` scope: filesystem helpers available to interpreted
// code (read/write/glob), grounded in original_source's fs library and
// wired to the host's RuntimeConfig-gated filesystem access (spec §5's
// permission model — a Host implementation is free to refuse these calls
// entirely when sandboxing is configured).
type FsLib struct{}

func (FsLib) Scope() string { return "fs" }

func (FsLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	switch name {
	case "read":
		if len(args) < 1 {
			return value.Void(), wantArgs(name, len(args), 1)
		}
		contents, err := host.FileRead(args[0].String())
		if err != nil {
			return value.Void(), err
		}
		return value.Str(contents), nil
	case "write":
		if len(args) < 2 {
			return value.Void(), wantArgs(name, len(args), 2)
		}
		if err := host.FileWrite(args[0].String(), args[1].String()); err != nil {
			return value.Bool(false), err
		}
		return value.Bool(true), nil
	case "glob":
		if len(args) < 1 {
			return value.Void(), wantArgs(name, len(args), 1)
		}
		matches, err := host.FileGlob(args[0].String())
		if err != nil {
			return value.Void(), err
		}
		items := make([]value.Value, 0, len(matches))
		for _, m := range matches {
			items = append(items, value.Str(m))
		}
		return value.List(items), nil
	}
	return value.Void(), argErr(name, "unknown fs function %q", name)
}
