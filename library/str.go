package library

import (
	"strings"

	serr "stof/errors"
	"stof/value"
)

// StrLib is the `Str` scope: string manipulation helpers, grounded in
// original_source's str library module (len/upper/lower/trim/split/
// replace/contains/startsWith/endsWith/indexOf/substring).
type StrLib struct{}

func (StrLib) Scope() string { return "Str" }

func (StrLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	if len(args) == 0 || args[0].Kind != value.KindStr {
		return value.Void(), argErr(name, "requires a string argument")
	}
	s := args[0].S
	switch name {
	case "len":
		return value.Int(int64(len(s))), nil
	case "upper":
		return value.Str(strings.ToUpper(s)), nil
	case "lower":
		return value.Str(strings.ToLower(s)), nil
	case "trim":
		return value.Str(strings.TrimSpace(s)), nil
	case "startsWith":
		if len(args) < 2 {
			return value.Bool(false), nil
		}
		return value.Bool(strings.HasPrefix(s, args[1].String())), nil
	case "endsWith":
		if len(args) < 2 {
			return value.Bool(false), nil
		}
		return value.Bool(strings.HasSuffix(s, args[1].String())), nil
	case "contains":
		if len(args) < 2 {
			return value.Bool(false), nil
		}
		return value.Bool(strings.Contains(s, args[1].String())), nil
	case "indexOf":
		if len(args) < 2 {
			return value.Int(-1), nil
		}
		return value.Int(int64(strings.Index(s, args[1].String()))), nil
	case "replace":
		if len(args) < 3 {
			return value.Str(s), nil
		}
		return value.Str(strings.ReplaceAll(s, args[1].String(), args[2].String())), nil
	case "split":
		sep := " "
		if len(args) > 1 {
			sep = args[1].String()
		}
		parts := strings.Split(s, sep)
		items := make([]value.Value, 0, len(parts))
		for _, p := range parts {
			items = append(items, value.Str(p))
		}
		return value.List(items), nil
	case "substring":
		if len(args) < 3 {
			return value.Str(s), nil
		}
		start, end := int(args[1].I), int(args[2].I)
		if start < 0 {
			start = 0
		}
		if end > len(s) {
			end = len(s)
		}
		if start > end {
			return value.Str(""), nil
		}
		return value.Str(s[start:end]), nil
	case "reverse":
		r := []rune(s)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return value.Str(string(r)), nil
	}
	return value.Void(), argErr(name, "unknown Str function %q", name)
}
