package library

import (
	"fmt"

	serr "stof/errors"
	"stof/value"
)

// SemVerLib is the `SemVer` scope (SPEC_FULL.md §12.2): accessors for a
// semantic version value plus the supplemented range-matching predicate
// `v.satisfies("^1.2")`, grounded the same way ArrayLib/MapLib dispatch a
// receiver-as-first-arg call against their own value kind.
type SemVerLib struct{}

func (SemVerLib) Scope() string { return "SemVer" }

func (SemVerLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	if len(args) < 1 || args[0].Kind != value.KindSemVer || args[0].SemVer == nil {
		return value.Void(), argErr(name, "SemVer method called on a non-semver value")
	}
	sv := args[0].SemVer
	switch name {
	case "satisfies":
		if len(args) < 2 {
			return value.Void(), wantArgs(name, len(args), 2)
		}
		return value.Bool(sv.Satisfies(args[1].String())), nil
	case "major":
		return value.Int(int64(sv.Major)), nil
	case "minor":
		return value.Int(int64(sv.Minor)), nil
	case "patch":
		return value.Int(int64(sv.Patch)), nil
	case "release":
		return value.Str(sv.Release), nil
	case "build":
		return value.Str(sv.Build), nil
	case "str":
		return value.Str(semVerString(sv)), nil
	}
	return value.Void(), argErr(name, "unknown SemVer function %q", name)
}

func semVerString(sv *value.SemVer) string {
	s := fmt.Sprintf("%d.%d.%d", sv.Major, sv.Minor, sv.Patch)
	if sv.Release != "" {
		s += "-" + sv.Release
	}
	if sv.Build != "" {
		s += "+" + sv.Build
	}
	return s
}
