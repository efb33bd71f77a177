package library

import (
	serr "stof/errors"
	"stof/value"
)

// TimeLib is the `time` scope: wall-clock access and cooperative sleeps,
// grounded in original_source's time library (now/sleep-as-yield-point),
// reading through Host so process scheduling stays out of this package.
type TimeLib struct{}

func (TimeLib) Scope() string { return "time" }

func (TimeLib) Call(host Host, name string, args []value.Value) (value.Value, *serr.Error) {
	switch name {
	case "now":
		return value.Int(host.NowUnixMillis()), nil
	case "sleep":
		// Only checks that a numeric duration was given and returns void:
		// the calling process is not suspended and no wake time is set.
		if len(args) < 1 || !args[0].IsNumeric() {
			return value.Void(), wantArgs(name, len(args), 1)
		}
		return value.Void(), nil
	}
	return value.Void(), argErr(name, "unknown time function %q", name)
}
