// Package errors defines the Stof error taxonomy (spec §7): a typed Kind,
// a call-stack-carrying Error value, and sentinel errors for programmatic
// checks, mirroring the teacher's model.ErrorCode + sentinel-error pattern.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind groups errors by origin, per spec §7.
type Kind string

const (
	KindParse             Kind = "Parse"
	KindCast              Kind = "Cast"
	KindType              Kind = "Type"
	KindArithDiv          Kind = "ArithDivZero"
	KindArithMod          Kind = "ArithModZero"
	KindArithAnd          Kind = "ArithAND"
	KindArithOr           Kind = "ArithOR"
	KindArithXor          Kind = "ArithXOR"
	KindArithShl          Kind = "ArithSHL"
	KindArithShr          Kind = "ArithSHR"
	KindArithIncompatible Kind = "ArithIncompatible"
	KindStackError        Kind = "StackError"
	KindCastStackError    Kind = "CastStackError"
	KindDeclareExisting   Kind = "DeclareExisting"
	KindDeclareInvalid    Kind = "DeclareInvalidName"
	KindAssignSelf        Kind = "AssignSelf"
	KindAssignSuper       Kind = "AssignSuper"
	KindAssignExistRoot   Kind = "AssignExistingRoot"
	KindAssignRootNonObj  Kind = "AssignRootNonObj"
	KindFieldPrivate      Kind = "FieldPrivate"
	KindFieldReadOnlySet  Kind = "FieldReadOnlySet"
	KindCallStackError    Kind = "CallStackError"
	KindSelfStackError    Kind = "SelfStackError"
	KindNewStackError     Kind = "NewStackError"
	KindObjName           Kind = "ObjName"
	KindObjGet            Kind = "ObjGet"
	KindObjSetProto       Kind = "ObjSetProto"
	KindFilesystem        Kind = "Filesystem"
	KindRefPoisoned       Kind = "RefPoisoned"
	KindCancelled         Kind = "Cancelled"
)

// Std builds the Fmt/Std/Thrown composite kinds, which carry a sub-name.
func Fmt(format string) Kind   { return Kind("Fmt(" + format + ")") }
func Std(name string) Kind     { return Kind("Std(" + name + ")") }
func Thrown(kind string) Kind  { return Kind("Thrown(" + kind + ")") }

// Sentinel errors for errors.Is-style checks, mirroring model.ErrNoMatchesFound.
var (
	ErrNotFound      = errors.New("not found")
	ErrCycle         = errors.New("would create a cycle")
	ErrDuplicateRoot = errors.New("root name already exists")
	ErrDanglingData  = errors.New("dangling data reference")
)

// Error is the runtime error value threaded through the interpreter, per spec §7:
// (pid, kind, message, call_stack).
type Error struct {
	PID       uint64
	Kind      Kind
	Message   string
	CallStack []string
	wrapped   error
}

func New(pid uint64, kind Kind, format string, args ...any) *Error {
	return &Error{PID: pid, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an underlying Go error (e.g. a format codec failure).
func Wrap(pid uint64, kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{PID: pid, Kind: kind, Message: err.Error(), wrapped: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	if len(e.CallStack) > 0 {
		b.WriteString("\n  at ")
		b.WriteString(strings.Join(e.CallStack, "\n  at "))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.wrapped }

// PushFrame appends a call-stack frame (innermost first) as the error unwinds
// through PopCall, mirroring spec §4.6's "unwind scopes, emit a call-stack trace".
func (e *Error) PushFrame(fn string) *Error {
	e.CallStack = append(e.CallStack, fn)
	return e
}

// Is supports errors.Is comparisons keyed on Kind, so callers can write
// errors.Is(err, errors.New(0, KindFieldPrivate, "")) style kind checks.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}
