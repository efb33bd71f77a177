// Package proc implements the Stof process environment (spec §4.5): the
// symbol table, the self/call/new/loop/return stacks, and the permission
// check every field/function/scope mutation consults (spec §5).
//
// Grounded in other_examples' funvibe/funxy Evaluator (CallStack
// []CallFrame, GlobalEnv *Environment, scoped environments) for the shape
// of "one struct holding every stack a tree-walking interpreter needs".
package proc

import (
	serr "stof/errors"
	"stof/graph"
	"stof/value"
)

// Variable is a symbol-table binding: a value, mutability, and an optional
// declared type used for cast-on-assignment checks (spec §4.5).
type Variable struct {
	Value        value.Value
	Mutable      bool
	DeclaredType value.Type
	HasType      bool
}

// Scope is one level of the symbol table stack.
type Scope struct {
	vars map[string]*Variable
}

func newScope() *Scope { return &Scope{vars: make(map[string]*Variable)} }

// SymbolTable is a stack of scopes, innermost last.
type SymbolTable struct {
	scopes []*Scope
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopes: []*Scope{newScope()}}
}

func (st *SymbolTable) PushScope()   { st.scopes = append(st.scopes, newScope()) }
func (st *SymbolTable) PopScope()    { if len(st.scopes) > 1 { st.scopes = st.scopes[:len(st.scopes)-1] } }
func (st *SymbolTable) Depth() int   { return len(st.scopes) }

func (st *SymbolTable) PopScopeToDepth(depth int) {
	if depth < 1 {
		depth = 1
	}
	for len(st.scopes) > depth {
		st.scopes = st.scopes[:len(st.scopes)-1]
	}
}

func isReservedName(name string) bool {
	return name == "self" || name == "super"
}

// Declare fails if name exists in the current (innermost) scope or is a
// reserved/dotted name (spec §4.5).
func (st *SymbolTable) Declare(name string, v value.Value, mutable bool, t value.Type, hasType bool) *serr.Error {
	if isReservedName(name) || containsDot(name) {
		return serr.New(0, serr.KindDeclareInvalid, "invalid variable name %q", name)
	}
	cur := st.scopes[len(st.scopes)-1]
	if _, exists := cur.vars[name]; exists {
		return serr.New(0, serr.KindDeclareExisting, "%q already declared in this scope", name)
	}
	cur.vars[name] = &Variable{Value: v, Mutable: mutable, DeclaredType: t, HasType: hasType}
	return nil
}

func containsDot(s string) bool {
	for _, r := range s {
		if r == '.' {
			return true
		}
	}
	return false
}

// Load searches outward from the innermost scope for name.
func (st *SymbolTable) Load(name string) (*Variable, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if v, ok := st.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Drop removes a binding if present in any scope, innermost first.
func (st *SymbolTable) Drop(name string) bool {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if _, ok := st.scopes[i].vars[name]; ok {
			delete(st.scopes[i].vars, name)
			return true
		}
	}
	return false
}

// LoopTag identifies a loop frame for break/continue targeting.
type LoopTag struct {
	BreakTag    int
	ContinueTag int
}

// Env is everything a Process owns besides the instruction cursor itself
// (spec §4.5): symbol table, operand stack, and the self/call/new/loop/
// return stacks.
type Env struct {
	Symbols *SymbolTable

	Operand []Variable
	Self    []value.NodeID
	Call    []value.DataID
	New     []value.NodeID
	Loop    []LoopTag
	Return  []value.DataID

	BubbleControlFlow int // spec §4.6: break/continue propagate only when > 0

	PID         uint64
	SpawnSlot   *SpawnRequest
	Spawned     bool

	// Cooperative scheduling: suspend cursor and optional wake trigger.
	SuspendAt   int
	WakeRef     string
	WakeAt      int64 // absolute deadline, ns since an arbitrary epoch
}

// SpawnRequest captures a pending Spawn(body, T) until the scheduler picks
// it up and creates the child Process (spec §5 "spawn slot").
type SpawnRequest struct {
	Body     interface{} // instr.Stream; interface{} here avoids an import cycle
	Expected value.Type
}

func NewEnv(pid uint64) *Env {
	return &Env{Symbols: NewSymbolTable(), PID: pid}
}

func (e *Env) PushSelf(n value.NodeID) { e.Self = append(e.Self, n) }
func (e *Env) PopSelf() (value.NodeID, *serr.Error) {
	if len(e.Self) == 0 {
		return 0, serr.New(e.PID, serr.KindSelfStackError, "self stack underflow")
	}
	n := e.Self[len(e.Self)-1]
	e.Self = e.Self[:len(e.Self)-1]
	return n, nil
}
func (e *Env) CurrentSelf() (value.NodeID, bool) {
	if len(e.Self) == 0 {
		return 0, false
	}
	return e.Self[len(e.Self)-1], true
}

func (e *Env) PushCall(d value.DataID) { e.Call = append(e.Call, d) }
func (e *Env) PopCall() (value.DataID, *serr.Error) {
	if len(e.Call) == 0 {
		return 0, serr.New(e.PID, serr.KindCallStackError, "call stack underflow")
	}
	d := e.Call[len(e.Call)-1]
	e.Call = e.Call[:len(e.Call)-1]
	return d, nil
}

func (e *Env) PushNew(n value.NodeID) { e.New = append(e.New, n) }
func (e *Env) PopNew() (value.NodeID, *serr.Error) {
	if len(e.New) == 0 {
		return 0, serr.New(e.PID, serr.KindNewStackError, "new stack underflow")
	}
	n := e.New[len(e.New)-1]
	e.New = e.New[:len(e.New)-1]
	return n, nil
}

func (e *Env) PushLoop(t LoopTag) { e.Loop = append(e.Loop, t) }
func (e *Env) PopLoop() {
	if len(e.Loop) > 0 {
		e.Loop = e.Loop[:len(e.Loop)-1]
	}
}
func (e *Env) CurrentLoop() (LoopTag, bool) {
	if len(e.Loop) == 0 {
		return LoopTag{}, false
	}
	return e.Loop[len(e.Loop)-1], true
}

func (e *Env) PushReturn(d value.DataID) { e.Return = append(e.Return, d) }
func (e *Env) PopReturn() (value.DataID, bool) {
	if len(e.Return) == 0 {
		return 0, false
	}
	d := e.Return[len(e.Return)-1]
	e.Return = e.Return[:len(e.Return)-1]
	return d, true
}

func (e *Env) Push(v Variable) { e.Operand = append(e.Operand, v) }
func (e *Env) Pop() (Variable, bool) {
	if len(e.Operand) == 0 {
		return Variable{}, false
	}
	v := e.Operand[len(e.Operand)-1]
	e.Operand = e.Operand[:len(e.Operand)-1]
	return v, true
}
func (e *Env) Peek() (Variable, bool) {
	if len(e.Operand) == 0 {
		return Variable{}, false
	}
	return e.Operand[len(e.Operand)-1], true
}

// Balanced reports property 7 from spec §8: no unresolved PushSelf/PopSelf
// imbalance outside instruction dispatch.
func (e *Env) Balanced() bool { return len(e.Self) == 0 }

// Resolver is the minimal graph access Set needs to fall back to field
// resolution/root installation (spec §4.5), kept as an interface so proc
// does not need to import the whole graph mutation surface beyond what it
// uses.
type Resolver interface {
	FieldByName(node value.NodeID, name string) (value.DataID, *graph.Field, bool)
	EnsurePath(start value.NodeID, path string) (value.NodeID, error)
	PutData(node value.NodeID, d graph.Data) (value.DataID, error)
	RootByName(name string) (value.NodeID, bool)
	InsertRoot(name string) (value.NodeID, error)
	MoveNode(node, newParent value.NodeID, asRoot bool, newName string) error
}

// Set implements spec §4.5's *set* rule: walk outward for an existing
// binding; else fall back to graph field resolution rooted at self
// (writing to or creating a field); else, for a bare unknown name whose
// value is an Obj, install it as a new root unless one already exists.
func Set(st *SymbolTable, g Resolver, self value.NodeID, name string, v value.Value) *serr.Error {
	if vr, ok := st.Load(name); ok {
		if !vr.Mutable {
			return serr.New(0, serr.KindFieldReadOnlySet, "%q is not mutable", name)
		}
		vr.Value = v
		return nil
	}
	if containsDot(name) {
		container, err := g.EnsurePath(self, parentPath(name))
		if err != nil {
			return serr.New(0, serr.KindObjGet, "%s", err.Error())
		}
		_, f, ok := g.FieldByName(container, lastSeg(name))
		if ok {
			if !f.Set(v) {
				return nil // silent no-op on read-only/permission denial (spec §5)
			}
			return nil
		}
		if _, err := g.PutData(container, graph.NewField(lastSeg(name), v)); err != nil {
			return serr.New(0, serr.KindObjGet, "%s", err.Error())
		}
		return nil
	}
	if _, f, ok := g.FieldByName(self, name); ok {
		f.Set(v)
		return nil
	}
	if v.Kind == value.KindObj {
		if _, exists := g.RootByName(name); exists {
			return serr.New(0, serr.KindAssignExistRoot, "root %q already exists", name)
		}
		if err := g.MoveNode(v.Obj, 0, true, name); err != nil {
			return serr.New(0, serr.KindAssignRootNonObj, "%s", err.Error())
		}
		return nil
	}
	if _, err := g.PutData(self, graph.NewField(name, v)); err != nil {
		return serr.New(0, serr.KindObjGet, "%s", err.Error())
	}
	return nil
}

func parentPath(dotted string) string {
	last := -1
	for i, r := range dotted {
		if r == '.' {
			last = i
		}
	}
	if last < 0 {
		return ""
	}
	return dotted[:last]
}

func lastSeg(dotted string) string {
	last := -1
	for i, r := range dotted {
		if r == '.' {
			last = i
		}
	}
	if last < 0 {
		return dotted
	}
	return dotted[last+1:]
}
