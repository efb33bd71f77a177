// Package library implements Stof's named library dispatch (spec §4.7):
// std, Obj, Array, Map, Set, Num, Str, Fn, Data, fs, time, each reachable
// as `Scope.function(...)` from interpreted code.
//
// Grounded in original_source/src/core/runtime/library.rs's `Library`
// trait (scope() + call(pid, doc, name, params)) and `SLibraries`
// registry (a BTreeMap<String, Arc<dyn Library>>), translated into a Go
// interface + map registry in the teacher's internal/registry style
// (lookup-by-name with a construction-time Register call).
package library

import (
	"fmt"

	serr "stof/errors"
	"stof/value"
)

// Host is the slice of document/runtime functionality a library needs,
// kept as an interface so this package never imports proc/interp/doc and
// stays at the bottom of the dependency graph alongside graph and value.
type Host interface {
	Self(pid uint64) (value.NodeID, bool)
	PID() uint64

	FieldByName(node value.NodeID, name string) (value.Value, bool)
	SetField(node value.NodeID, name string, v value.Value) error
	RemoveField(node value.NodeID, name string) bool
	FieldNames(node value.NodeID) []string

	CallFunction(pid uint64, node value.NodeID, name string, args []value.Value) (value.Value, *serr.Error)
	FunctionNames(node value.NodeID) []string

	NodePath(node value.NodeID) string
	NodeName(node value.NodeID) string
	ChildrenOf(node value.NodeID) []value.NodeID
	ParentOf(node value.NodeID) (value.NodeID, bool)
	MoveNode(node, newParent value.NodeID) error
	RemoveNode(node value.NodeID)
	InstanceOf(node value.NodeID, typeName string) bool
	TypeName(node value.NodeID) (string, bool)

	StringImport(pid uint64, format, src, asPath string) *serr.Error
	StringExport(pid uint64, format string, node value.NodeID, pretty bool) (string, *serr.Error)
	BytesExport(pid uint64, format string, node value.NodeID) ([]byte, *serr.Error)
	HasFormat(format string) bool
	Formats() []string

	Print(msg string)
	Debug(msg string)

	FileRead(path string) (string, *serr.Error)
	FileWrite(path, contents string) *serr.Error
	FileGlob(pattern string) ([]string, *serr.Error)

	NowUnixMillis() int64
	SpawnProcess(body interface{}, expected value.Type) uint64
}

// CurrentSetter is an optional Host capability: a Host that tracks "the
// pid/self a library call is happening on" (needed since Library.Call
// takes no pid of its own, only args) implements this, and the scheduler
// updates it immediately before every library dispatch. Kept separate
// from Host itself so a Host that never needs Self/PID (a test double
// calling into a single known process) isn't forced to implement it.
type CurrentSetter interface {
	SetCurrent(pid uint64, self value.NodeID)
}

// Library is one named scope of built-in callable functions.
type Library interface {
	Scope() string
	Call(host Host, name string, args []value.Value) (value.Value, *serr.Error)
}

// Registry is the set of installed libraries, keyed by scope.
type Registry struct {
	libs map[string]Library
}

func NewRegistry() *Registry { return &Registry{libs: make(map[string]Library)} }

func (r *Registry) Register(lib Library) {
	if lib.Scope() == "" {
		return
	}
	r.libs[lib.Scope()] = lib
}

func (r *Registry) Get(scope string) (Library, bool) {
	l, ok := r.libs[scope]
	return l, ok
}

func (r *Registry) Available() []string {
	out := make([]string, 0, len(r.libs))
	for k := range r.libs {
		out = append(out, k)
	}
	return out
}

// Default returns a registry with every built-in library installed,
// mirroring original_source's SDoc::new() default-library wiring.
func Default() *Registry {
	r := NewRegistry()
	r.Register(&StdLib{})
	r.Register(&ObjLib{})
	r.Register(&StrLib{})
	r.Register(&NumLib{})
	r.Register(&ArrayLib{})
	r.Register(&SetLib{})
	r.Register(&MapLib{})
	r.Register(&FnLib{})
	r.Register(&DataLib{})
	r.Register(&FsLib{})
	r.Register(&TimeLib{})
	r.Register(&SemVerLib{})
	return r
}

// argErr builds a standard-library-style error (spec §7's Std(name) kind).
func argErr(name, format string, args ...any) *serr.Error {
	return serr.New(0, serr.Std(name), format, args...)
}

func wantArgs(name string, got, want int) *serr.Error {
	return argErr(name, "expected %d argument(s), got %d", want, got)
}

func fmtVal(v value.Value) string { return fmt.Sprintf("%v", v.String()) }
