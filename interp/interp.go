// Package interp implements the tree-walking instruction interpreter
// (spec §4.5, §4.6): one Process per pid, a cooperative Scheduler running
// many Processes against a shared Graph, and direct execution of the macro
// instructions (If/While/Switch/ForIn/TryCatch/NewObj/FuncCall/Return).
//
// Grounded in morfx's internal/evaluator (a tree-walking query evaluator
// with an explicit operand stack) for the step-loop shape, generalized
// from "evaluate one query AST" to "run one instruction stream to
// completion or suspension."
package interp

import (
	serr "stof/errors"
	"stof/graph"
	"stof/instr"
	"stof/library"
	"stof/proc"
	"stof/types"
	"stof/value"
)

// Frame is one active instruction-stream execution context: the stream
// itself plus a cursor. Calling into a function pushes a new Frame.
type Frame struct {
	Stream instr.Stream
	Cursor int
}

// Process is a single cooperative thread of execution (spec §4.5's
// "process"): its own Env (stacks) plus a call-frame stack of Frames.
type Process struct {
	PID     uint64
	Env     *proc.Env
	Frames  []Frame
	Done    bool
	Result  value.Value
	Err     *serr.Error
	WakeAt  int64
	WakeRef string
}

func newProcess(pid uint64, body instr.Stream, self value.NodeID) *Process {
	p := &Process{PID: pid, Env: proc.NewEnv(pid)}
	p.Env.PushSelf(self)
	p.Frames = []Frame{{Stream: body}}
	return p
}

func (p *Process) current() (*Frame, bool) {
	if len(p.Frames) == 0 {
		return nil, false
	}
	return &p.Frames[len(p.Frames)-1], true
}

// Scheduler runs many Processes cooperatively over one shared Graph,
// grounded in spec §4.5's spawn/await model: Spawn creates a child
// Process sharing the Graph, seeded with copies of the parent's
// self/call/new/loop/return stacks, an empty operand stack and symbol
// table, and a fresh pid; Await blocks the caller until the target pid
// terminates.
type Scheduler struct {
	Graph     *graph.Graph
	Libraries *library.Registry
	Host      library.Host

	procs  map[uint64]*Process
	nextPID uint64
	order  []uint64
}

func NewScheduler(g *graph.Graph, libs *library.Registry, host library.Host) *Scheduler {
	return &Scheduler{Graph: g, Libraries: libs, Host: host, procs: make(map[uint64]*Process), nextPID: 1}
}

// Spawn creates a new top-level Process running body rooted at self and
// returns its pid.
func (s *Scheduler) Spawn(body instr.Stream, self value.NodeID) uint64 {
	pid := s.nextPID
	s.nextPID++
	p := newProcess(pid, body, self)
	s.procs[pid] = p
	s.order = append(s.order, pid)
	return pid
}

// Run drives every non-done process to completion or suspension once;
// callers loop calling Run until all processes report Done (spec §5's
// cooperative, non-preemptive scheduling: each step runs until the
// process yields via Suspend, Await or Exit, or runs out of instructions;
// exec has no case for SleepFor/SleepRef, so those fail as unimplemented
// instructions).
func (s *Scheduler) Run() {
	for _, pid := range s.order {
		p := s.procs[pid]
		if p.Done {
			continue
		}
		s.step(p)
	}
}

// AllDone reports whether every spawned process has terminated.
func (s *Scheduler) AllDone() bool {
	for _, p := range s.procs {
		if !p.Done {
			return false
		}
	}
	return true
}

func (s *Scheduler) Process(pid uint64) (*Process, bool) {
	p, ok := s.procs[pid]
	return p, ok
}

// NewPID reserves a pid without creating a process, for host-initiated
// one-off calls (package doc's Document.Call) that need a pid identity to
// pass through CallFunction but have no running Process of their own.
func (s *Scheduler) NewPID() uint64 {
	pid := s.nextPID
	s.nextPID++
	return pid
}

// step executes instructions from p's current frame until the frame
// stack empties (the process terminates) or an instruction suspends it.
func (s *Scheduler) step(p *Process) {
	for {
		fr, ok := p.current()
		if !ok {
			p.Done = true
			return
		}
		if fr.Cursor >= len(fr.Stream.Instructions) {
			p.Frames = p.Frames[:len(p.Frames)-1]
			continue
		}
		ins := fr.Stream.Instructions[fr.Cursor]
		fr.Cursor++

		suspend, err := s.exec(p, ins)
		if err != nil {
			p.Err = err
			p.Done = true
			return
		}
		if suspend {
			return
		}
	}
}

// exec dispatches one instruction. Returns (suspend, error); suspend
// means the scheduler should stop driving this process for this Run.
func (s *Scheduler) exec(p *Process, ins instr.Instruction) (bool, *serr.Error) {
	switch ins.Op {
	case instr.OpNoOp:
		return false, nil
	case instr.OpLiteral:
		p.Env.Push(proc.Variable{Value: ins.Literal})
		return false, nil
	case instr.OpPushSelf:
		self, _ := p.Env.CurrentSelf()
		p.Env.PushSelf(self)
		return false, nil
	case instr.OpPopSelf:
		if _, err := p.Env.PopSelf(); err != nil {
			return false, err
		}
		return false, nil
	case instr.OpDeclareVar, instr.OpDeclareConstVar:
		v, _ := p.Env.Pop()
		mutable := ins.Op == instr.OpDeclareVar
		if err := p.Env.Symbols.Declare(ins.Name, v.Value, mutable, ins.DeclType, ins.DeclType.Kind != value.KindVoid); err != nil {
			return false, err
		}
		return false, nil
	case instr.OpLoadVariable:
		vr, ok := p.Env.Symbols.Load(ins.Name)
		if !ok {
			return false, serr.New(p.PID, serr.KindObjGet, "undeclared variable %q", ins.Name)
		}
		if ins.ByRef {
			p.Env.Push(proc.Variable{Value: value.NewRef(vr.Value)})
		} else {
			p.Env.Push(proc.Variable{Value: vr.Value})
		}
		return false, nil
	case instr.OpSetVariable:
		v, _ := p.Env.Pop()
		self, _ := p.Env.CurrentSelf()
		if err := proc.Set(p.Env.Symbols, s.Graph, self, ins.Name, v.Value); err != nil {
			return false, err
		}
		return false, nil
	case instr.OpDropVariable:
		p.Env.Symbols.Drop(ins.Name)
		return false, nil
	case instr.OpPushSymbolScope:
		p.Env.Symbols.PushScope()
		return false, nil
	case instr.OpPopSymbolScope:
		p.Env.Symbols.PopScope()
		return false, nil
	case instr.OpDup:
		v, ok := p.Env.Peek()
		if ok {
			p.Env.Push(v)
		}
		return false, nil
	case instr.OpPopStack:
		p.Env.Pop()
		return false, nil
	case instr.OpAdd, instr.OpSub, instr.OpMul, instr.OpDiv, instr.OpMod:
		return false, s.binOp(p, ins.Op)
	case instr.OpEq, instr.OpNeq, instr.OpLt, instr.OpLte, instr.OpGt, instr.OpGte:
		return false, s.cmpOp(p, ins.Op)
	case instr.OpTruthy, instr.OpNotTruthy, instr.OpIsNull:
		return false, s.unaryPredicate(p, ins.Op)
	case instr.OpCast:
		v, _ := p.Env.Pop()
		cast, err := value.Cast(p.PID, v.Value, ins.CastTo)
		if err != nil {
			return false, err
		}
		p.Env.Push(proc.Variable{Value: cast})
		return false, nil
	case instr.OpReturn:
		return s.execReturn(p, ins)
	case instr.OpEmptyReturn:
		p.Env.PushReturn(0)
		return false, nil
	case instr.OpBlock:
		return false, s.execBlock(p, ins)
	case instr.OpIf:
		return false, s.execIf(p, ins)
	case instr.OpWhile:
		return false, s.execWhile(p, ins)
	case instr.OpSwitch:
		return false, s.execSwitch(p, ins)
	case instr.OpForIn:
		return false, s.execForIn(p, ins)
	case instr.OpTryCatch:
		return false, s.execTryCatch(p, ins)
	case instr.OpFuncCall:
		return false, s.execFuncCall(p, ins)
	case instr.OpSuspend:
		return true, nil
	case instr.OpExit:
		return true, nil
	case instr.OpAwait:
		return s.execAwait(p, ins)
	case instr.OpSpawn:
		return false, s.execSpawn(p, ins)
	case instr.OpNewObj:
		return false, s.execNewObj(p, ins)
	case instr.OpAnd, instr.OpOr, instr.OpXor, instr.OpShl, instr.OpShr:
		return false, s.bitwiseOp(p, ins.Op)
	case instr.OpTypeOf:
		v, _ := p.Env.Pop()
		p.Env.Push(proc.Variable{Value: value.Str(value.TypeOf(v.Value).String())})
		return false, nil
	case instr.OpTypeName:
		v, _ := p.Env.Pop()
		if v.Value.Kind == value.KindObj {
			if t, ok := s.Graph.PrototypeOf(v.Value.Obj); ok {
				p.Env.Push(proc.Variable{Value: value.Str(t.TypeName)})
				return false, nil
			}
		}
		p.Env.Push(proc.Variable{Value: value.Str(v.Value.Kind.String())})
		return false, nil
	case instr.OpInstanceOf:
		v, _ := p.Env.Pop()
		result := v.Value.Kind == value.KindObj && s.Graph.InstanceOf(v.Value.Obj, ins.Name)
		p.Env.Push(proc.Variable{Value: value.Bool(result)})
		return false, nil
	case instr.OpPushNew:
		self, _ := p.Env.CurrentSelf()
		p.Env.PushNew(self)
		return false, nil
	case instr.OpPopNew:
		if _, err := p.Env.PopNew(); err != nil {
			return false, err
		}
		return false, nil
	case instr.OpPushCall:
		v, _ := p.Env.Pop()
		if v.Value.Kind == value.KindData {
			p.Env.PushCall(v.Value.Data)
		}
		return false, nil
	case instr.OpPopCall:
		if _, err := p.Env.PopCall(); err != nil {
			return false, err
		}
		return false, nil
	case instr.OpFnReturn:
		return true, nil
	case instr.OpDeclareField:
		return false, s.execDeclareField(p, ins)
	case instr.OpDeclareFunc:
		return false, s.execDeclareFunc(p, ins)
	case instr.OpDeclareType:
		return false, s.execDeclareType(p, ins)
	case instr.OpImport:
		return false, s.execImport(p, ins)
	}
	return false, serr.New(p.PID, serr.KindStackError, "unimplemented instruction %v", ins.Op)
}

func (s *Scheduler) binOp(p *Process, op instr.Op) *serr.Error {
	b, _ := p.Env.Pop()
	a, _ := p.Env.Pop()
	var out value.Value
	var err *serr.Error
	switch op {
	case instr.OpAdd:
		out, err = value.Add(p.PID, a.Value, b.Value)
	case instr.OpSub:
		out, err = value.Sub(p.PID, a.Value, b.Value)
	case instr.OpMul:
		out, err = value.Mul(p.PID, a.Value, b.Value)
	case instr.OpDiv:
		out, err = value.Div(p.PID, a.Value, b.Value)
	case instr.OpMod:
		out, err = value.Mod(p.PID, a.Value, b.Value)
	}
	if err != nil {
		return err
	}
	p.Env.Push(proc.Variable{Value: out})
	return nil
}

func (s *Scheduler) cmpOp(p *Process, op instr.Op) *serr.Error {
	b, _ := p.Env.Pop()
	a, _ := p.Env.Pop()
	var result bool
	switch op {
	case instr.OpEq:
		result = value.Equal(a.Value, b.Value)
	case instr.OpNeq:
		result = !value.Equal(a.Value, b.Value)
	case instr.OpLt:
		result = value.Lt(a.Value, b.Value)
	case instr.OpLte:
		result = value.Lte(a.Value, b.Value)
	case instr.OpGt:
		result = value.Gt(a.Value, b.Value)
	case instr.OpGte:
		result = value.Gte(a.Value, b.Value)
	}
	p.Env.Push(proc.Variable{Value: value.Bool(result)})
	return nil
}

func (s *Scheduler) unaryPredicate(p *Process, op instr.Op) *serr.Error {
	v, _ := p.Env.Pop()
	var result bool
	switch op {
	case instr.OpTruthy:
		result = value.Truthy(v.Value)
	case instr.OpNotTruthy:
		result = !value.Truthy(v.Value)
	case instr.OpIsNull:
		result = v.Value.Kind == value.KindNull
	}
	p.Env.Push(proc.Variable{Value: value.Bool(result)})
	return nil
}

func (s *Scheduler) execReturn(p *Process, ins instr.Instruction) (bool, *serr.Error) {
	p.Frames = append(p.Frames, Frame{Stream: ins.ReturnExpr})
	return false, nil
}

func (s *Scheduler) execBlock(p *Process, ins instr.Instruction) *serr.Error {
	if ins.Block == nil {
		return nil
	}
	body := ins.Block.Body
	if ins.Block.Scoped {
		scoped := instr.Stream{}
		scoped.Append(instr.Instruction{Op: instr.OpPushSymbolScope})
		scoped.AppendStream(body)
		scoped.Append(instr.Instruction{Op: instr.OpPopSymbolScope})
		body = scoped
	}
	p.Frames = append(p.Frames, Frame{Stream: body})
	return nil
}

func (s *Scheduler) execIf(p *Process, ins instr.Instruction) *serr.Error {
	if ins.If == nil {
		return nil
	}
	cond := p.runSubStream(s, ins.If.Cond)
	if cond.Err != nil {
		return cond.Err
	}
	if value.Truthy(cond.Value) {
		p.Frames = append(p.Frames, Frame{Stream: ins.If.Then})
		return nil
	}
	for _, elif := range ins.If.Elifs {
		c := p.runSubStream(s, elif.Cond)
		if c.Err != nil {
			return c.Err
		}
		if value.Truthy(c.Value) {
			p.Frames = append(p.Frames, Frame{Stream: elif.Body})
			return nil
		}
	}
	p.Frames = append(p.Frames, Frame{Stream: ins.If.Else})
	return nil
}

func (s *Scheduler) execWhile(p *Process, ins instr.Instruction) *serr.Error {
	if ins.While == nil {
		return nil
	}
	for {
		cond := p.runSubStream(s, ins.While.Cond)
		if cond.Err != nil {
			return cond.Err
		}
		if !value.Truthy(cond.Value) {
			return nil
		}
		res := p.runSubStream(s, ins.While.Body)
		if res.Err != nil {
			return res.Err
		}
	}
}

func (s *Scheduler) execSwitch(p *Process, ins instr.Instruction) *serr.Error {
	if ins.Switch == nil {
		return nil
	}
	subj := p.runSubStream(s, ins.Switch.Expr)
	if subj.Err != nil {
		return subj.Err
	}
	for _, c := range ins.Switch.Cases {
		if value.Equal(subj.Value, c.Match) {
			p.Frames = append(p.Frames, Frame{Stream: c.Body})
			return nil
		}
	}
	p.Frames = append(p.Frames, Frame{Stream: ins.Switch.Default})
	return nil
}

// execForIn iterates the evaluated iterable's List/Set/Map items directly
// (spec §4.6's ForIn, with no len/at/index lowering), binding VarName (and optional
// IndexName/IsFirst/IsLast sentinels) in a fresh scope per iteration.
func (s *Scheduler) execForIn(p *Process, ins instr.Instruction) *serr.Error {
	if ins.ForIn == nil {
		return nil
	}
	iterable := p.runSubStream(s, ins.ForIn.Iterable)
	if iterable.Err != nil {
		return iterable.Err
	}
	items := forInItems(iterable.Value)
	for i, item := range items {
		p.Env.Symbols.PushScope()
		p.Env.Symbols.Declare(ins.ForIn.VarName, item, true, value.Type{}, false)
		if ins.ForIn.IndexName != "" {
			p.Env.Symbols.Declare(ins.ForIn.IndexName, value.Int(int64(i)), true, value.Type{}, false)
		}
		if ins.ForIn.IsFirst != "" {
			p.Env.Symbols.Declare(ins.ForIn.IsFirst, value.Bool(i == 0), true, value.Type{}, false)
		}
		if ins.ForIn.IsLast != "" {
			p.Env.Symbols.Declare(ins.ForIn.IsLast, value.Bool(i == len(items)-1), true, value.Type{}, false)
		}
		res := p.runSubStream(s, ins.ForIn.Body)
		p.Env.Symbols.PopScope()
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}

func forInItems(v value.Value) []value.Value {
	switch v.Kind {
	case value.KindList:
		return v.ListItems()
	case value.KindSet:
		return v.SetRef().Items()
	case value.KindMap:
		out := make([]value.Value, 0, v.MapRef().Len())
		for _, k := range v.MapRef().Keys() {
			out = append(out, k)
		}
		return out
	}
	return nil
}

// execTryCatch runs the try stream; on failure, materializes the error
// into CatchVar per CatchType (Str/Tuple(Str,Str)/Map), then runs catch.
func (s *Scheduler) execTryCatch(p *Process, ins instr.Instruction) *serr.Error {
	if ins.TryCatch == nil {
		return nil
	}
	res := p.runSubStream(s, ins.TryCatch.Try)
	if res.Err == nil {
		return nil
	}
	p.Env.Symbols.PushScope()
	defer p.Env.Symbols.PopScope()
	caught := materializeError(res.Err, ins.TryCatch.CatchType)
	p.Env.Symbols.Declare(ins.TryCatch.CatchVar, caught, true, ins.TryCatch.CatchType, true)
	catchRes := p.runSubStream(s, ins.TryCatch.Catch)
	return catchRes.Err
}

func materializeError(err *serr.Error, t value.Type) value.Value {
	switch t.Kind {
	case value.KindTuple:
		return value.Tuple([]value.Value{value.Str(string(err.Kind)), value.Str(err.Message)})
	case value.KindMap:
		m := value.NewMap()
		m.MapRef().Set(value.Str("type"), value.Str(string(err.Kind)))
		m.MapRef().Set(value.Str("message"), value.Str(err.Message))
		stack := make([]value.Value, 0, len(err.CallStack))
		for _, f := range err.CallStack {
			stack = append(stack, value.Str(f))
		}
		m.MapRef().Set(value.Str("stack"), value.List(stack))
		return m
	default:
		return value.Str(err.Message)
	}
}

// lastPathSegment returns the final '.'-separated segment of a dotted
// path, or the whole string if it has none.
func lastPathSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
	}
	return path
}

// libraryScopeFor maps a value's runtime Kind to its dispatch scope name
// (spec §4.7: every built-in kind has a library of the same family the
// way `"abc".upper()` resolves against the `Str` scope).
func libraryScopeFor(v value.Value) (string, bool) {
	switch v.Kind {
	case value.KindStr:
		return "Str", true
	case value.KindList, value.KindTuple:
		return "Array", true
	case value.KindMap:
		return "Map", true
	case value.KindSet:
		return "Set", true
	case value.KindInt, value.KindFloat, value.KindUnits:
		return "Num", true
	case value.KindFn:
		return "Fn", true
	case value.KindData:
		return "Data", true
	case value.KindObj:
		return "Obj", true
	case value.KindSemVer:
		return "SemVer", true
	}
	return "", false
}

// execFuncCall resolves the target function and runs it. Target paths
// resolve against a graph.Function attached to the resolved self (an
// Obj target, or the process's current self for a bare call); failing
// that, or when the target evaluates to a non-Obj built-in value, the
// call dispatches to the matching named library (spec §4.7), explicit
// scope-prefixed calls (`std.pln(...)`) taking priority over both.
func (s *Scheduler) execFuncCall(p *Process, ins instr.Instruction) *serr.Error {
	if ins.FuncCall == nil {
		return nil
	}
	args := make([]value.Value, 0, len(ins.FuncCall.ArgExprs))
	for _, argStream := range ins.FuncCall.ArgExprs {
		res := p.runSubStream(s, argStream)
		if res.Err != nil {
			return res.Err
		}
		args = append(args, res.Value)
	}

	self, _ := p.Env.CurrentSelf()
	hasTarget := ins.FuncCall.Target.Instructions != nil
	var targetVal value.Value
	targetIsObj := false
	if hasTarget {
		t := p.runSubStream(s, ins.FuncCall.Target)
		if t.Err != nil {
			return t.Err
		}
		targetVal = t.Value
		if t.Value.Kind == value.KindObj {
			self = t.Value.Obj
			targetIsObj = true
		}
	}

	fnName := ins.FuncCall.Path
	if hasTarget {
		fnName = lastPathSegment(ins.FuncCall.Path)
	}

	// Explicit library scope prefix, e.g. `std.pln(...)` or `time.now()`.
	if !hasTarget {
		if segs := splitFirstDot(ins.FuncCall.Path); segs.rest != "" {
			if lib, ok := s.Libraries.Get(segs.first); ok {
				return s.callLibrary(p, lib, segs.rest, args)
			}
		}
	}

	if !hasTarget || targetIsObj {
		if did, fn, ok := s.Graph.FindFunction(self, fnName); ok {
			return s.invokeFunction(p, did, fn, args)
		}
	}

	// `f.call(...)` on a Fn value runs the function its data id points to.
	if hasTarget && targetVal.Kind == value.KindFn && fnName == "call" {
		if d, ok := s.Graph.GetData(targetVal.Fn); ok {
			if fn, ok := d.(*graph.Function); ok {
				return s.invokeFunction(p, targetVal.Fn, fn, args)
			}
		}
	}

	if hasTarget {
		if scope, ok := libraryScopeFor(targetVal); ok {
			if lib, ok := s.Libraries.Get(scope); ok {
				callArgs := append([]value.Value{targetVal}, args...)
				return s.callLibrary(p, lib, fnName, callArgs)
			}
		}
	}

	// Bare, unresolved name: fall back to the std scope (spec §4.7).
	if !hasTarget {
		if lib, ok := s.Libraries.Get("std"); ok {
			return s.callLibrary(p, lib, fnName, args)
		}
	}

	return serr.New(p.PID, serr.KindCallStackError, "function %q not found", ins.FuncCall.Path)
}

type dotSplit struct {
	first string
	rest  string
}

// splitFirstDot splits "scope.rest.of.path" into its first segment and
// the remainder; rest is "" if path has no '.'.
func splitFirstDot(path string) dotSplit {
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			return dotSplit{first: path[:i], rest: path[i+1:]}
		}
	}
	return dotSplit{first: path}
}

func (s *Scheduler) callLibrary(p *Process, lib library.Library, name string, args []value.Value) *serr.Error {
	if setter, ok := s.Host.(library.CurrentSetter); ok {
		self, _ := p.Env.CurrentSelf()
		setter.SetCurrent(p.PID, self)
	}
	v, err := lib.Call(s.Host, name, args)
	if err != nil {
		return err
	}
	p.Env.Push(proc.Variable{Value: v})
	return nil
}

func (s *Scheduler) invokeFunction(p *Process, did value.DataID, fn *graph.Function, args []value.Value) *serr.Error {
	p.Env.PushCall(did)
	defer p.Env.PopCall()

	p.Env.Symbols.PushScope()
	defer p.Env.Symbols.PopScope()
	for i, param := range fn.Params {
		var v value.Value
		if i < len(args) {
			v = args[i]
		} else if param.Default != nil {
			r := p.runSubStream(s, *param.Default)
			if r.Err != nil {
				return r.Err
			}
			v = r.Value
		}
		p.Env.Symbols.Declare(param.Name, v, true, param.Type, true)
	}

	res := p.runSubStream(s, fn.Body)
	if res.Err != nil {
		return res.Err.PushFrame(fn.Name)
	}
	p.Env.Push(proc.Variable{Value: res.Value})
	return nil
}

func (s *Scheduler) execAwait(p *Process, ins instr.Instruction) (bool, *serr.Error) {
	v, _ := p.Env.Pop()
	if v.Value.Kind != value.KindPromise {
		p.Env.Push(v)
		return false, nil
	}
	target, ok := s.procs[v.Value.Promise.PID]
	if !ok || target.Done {
		if ok {
			cast, err := value.Cast(p.PID, target.Result, v.Value.Promise.Expected)
			if err != nil {
				return false, err
			}
			p.Env.Push(proc.Variable{Value: cast})
		} else {
			p.Env.Push(proc.Variable{Value: value.Null()})
		}
		return false, nil
	}
	// Not ready: push the promise back, rewind cursor, suspend this tick.
	p.Env.Push(v)
	fr, _ := p.current()
	fr.Cursor--
	return true, nil
}

func (s *Scheduler) bitwiseOp(p *Process, op instr.Op) *serr.Error {
	b, _ := p.Env.Pop()
	a, _ := p.Env.Pop()
	var out value.Value
	switch op {
	case instr.OpAnd:
		out = value.And(a.Value, b.Value)
	case instr.OpOr:
		out = value.Or(a.Value, b.Value)
	case instr.OpXor:
		out = value.Xor(a.Value, b.Value)
	case instr.OpShl:
		out = value.Shl(a.Value, b.Value)
	case instr.OpShr:
		out = value.Shr(a.Value, b.Value)
	}
	p.Env.Push(proc.Variable{Value: out})
	return nil
}

// execNewObj creates a fresh object node under the current self, or under
// the object ParentExpr evaluates to (spec §4.8). When TypeName names a declared type (found via
// graph.TypeDef), construction defers to types.New so schema defaults
// and required-field validation apply; explicit field initializers in
// the `new T{...}` literal are evaluated first and passed through as
// overrides. An untyped `new {...}` (TypeName == "") just creates a bare
// object and attaches the given fields directly.
func (s *Scheduler) execNewObj(p *Process, ins instr.Instruction) *serr.Error {
	if ins.NewObj == nil {
		return nil
	}
	parent, _ := p.Env.CurrentSelf()
	if ins.NewObj.ParentExpr.Instructions != nil {
		pv := p.runSubStream(s, ins.NewObj.ParentExpr)
		if pv.Err != nil {
			return pv.Err
		}
		if pv.Value.Kind == value.KindObj {
			parent = pv.Value.Obj
		}
	}

	fieldVals := make(map[string]value.Value, len(ins.NewObj.FieldInit))
	for _, fi := range ins.NewObj.FieldInit {
		res := p.runSubStream(s, fi.Expr)
		if res.Err != nil {
			return res.Err
		}
		fieldVals[fi.Name] = res.Value
	}

	if ins.NewObj.TypeName != "" {
		if defNode, ok := s.Graph.TypeDef(ins.NewObj.TypeName); ok {
			node, err := types.New(s.Graph, parent, ins.NewObj.TypeName, defNode, fieldVals, false)
			if err != nil {
				return serr.Wrap(p.PID, serr.KindDeclareInvalid, err)
			}
			p.Env.Push(proc.Variable{Value: value.Obj(node)})
			return nil
		}
	}

	node, err := s.Graph.InsertChild(parent, "")
	if err != nil {
		return serr.Wrap(p.PID, serr.KindObjName, err)
	}
	if ins.NewObj.TypeName != "" {
		if _, err := s.Graph.PutData(node, &graph.Prototype{TypeName: ins.NewObj.TypeName, DefNode: node}); err != nil {
			return serr.Wrap(p.PID, serr.KindObjSetProto, err)
		}
	}
	for _, fi := range ins.NewObj.FieldInit {
		if _, err := s.Graph.PutData(node, graph.NewField(fi.Name, fieldVals[fi.Name])); err != nil {
			return serr.Wrap(p.PID, serr.KindObjGet, err)
		}
	}
	p.Env.Push(proc.Variable{Value: value.Obj(node)})
	return nil
}

// execDeclareField attaches a graph.Field to the current self (spec §3),
// distinct from a `let`/`const` symbol: document and type-body field
// declarations are data, visible to reflection (FieldNames, schemafy) and
// persisted across format export/import.
func (s *Scheduler) execDeclareField(p *Process, ins instr.Instruction) *serr.Error {
	d := ins.FieldDecl
	if d == nil {
		return nil
	}
	self, _ := p.Env.CurrentSelf()
	var v value.Value
	if d.HasValue {
		res := p.runSubStream(s, d.Value)
		if res.Err != nil {
			return res.Err
		}
		v = res.Value
	} else {
		v = value.Void()
	}
	f := graph.NewField(d.Name, v)
	for k, av := range d.Attributes {
		f.Attributes[k] = av
	}
	if _, err := s.Graph.PutData(self, f); err != nil {
		return serr.Wrap(p.PID, serr.KindDeclareExisting, err)
	}
	return nil
}

// execDeclareFunc attaches a graph.Function to the current self. When
// the declaration carries a `decorator` attribute (spec §4.4), the named
// decorator function (itself `fn(fn) -> fn`) is invoked with the raw
// function as a Fn value and its returned function's body/params/return
// type replace the declared ones before attachment -- decorators can only
// run once the interpreter exists to call them, so this happens here
// rather than at parse time.
func (s *Scheduler) execDeclareFunc(p *Process, ins instr.Instruction) *serr.Error {
	d := ins.FuncDecl
	if d == nil {
		return nil
	}
	self, _ := p.Env.CurrentSelf()
	fn := graph.NewFunction(d.Name)
	fn.ReturnType = d.ReturnType
	fn.Body = d.Body
	for _, pd := range d.Params {
		fn.Params = append(fn.Params, graph.FuncParam{Name: pd.Name, Type: pd.Type, Default: pd.Default})
	}
	for k, av := range d.Attributes {
		fn.Attributes[k] = av
	}
	did, err := s.Graph.PutData(self, fn)
	if err != nil {
		return serr.Wrap(p.PID, serr.KindDeclareExisting, err)
	}
	if decoName, ok := fn.Attributes["decorator"]; ok && decoName.Kind == value.KindStr {
		if err := s.applyDecorator(p, self, did, fn, decoName.S); err != nil {
			return err
		}
	}
	return nil
}

// applyDecorator calls the named decorator function with fn as a Fn
// value operand and, if it returns another Fn, replaces the declared
// function's body/params/return type with the decorator result's.
func (s *Scheduler) applyDecorator(p *Process, self value.NodeID, did value.DataID, fn *graph.Function, decoName string) *serr.Error {
	decoDid, deco, ok := s.Graph.FindFunction(self, decoName)
	if !ok {
		return serr.New(p.PID, serr.KindCallStackError, "decorator %q not found", decoName)
	}
	if len(deco.Params) == 0 {
		return serr.New(p.PID, serr.KindCallStackError, "decorator %q must accept the function it decorates", decoName)
	}
	p.Env.Symbols.PushScope()
	p.Env.Symbols.Declare(deco.Params[0].Name, value.Fn(did), true, deco.Params[0].Type, false)
	p.Env.PushCall(decoDid)
	res := p.runSubStream(s, deco.Body)
	p.Env.PopCall()
	p.Env.Symbols.PopScope()
	if res.Err != nil {
		return res.Err.PushFrame(decoName)
	}
	if res.Value.Kind != value.KindFn {
		return nil
	}
	if replacedFn, ok := s.Graph.GetData(res.Value.Fn); ok {
		if rf, ok := replacedFn.(*graph.Function); ok {
			fn.Params = rf.Params
			fn.ReturnType = rf.ReturnType
			fn.Body = rf.Body
		}
	}
	return nil
}

// execDeclareType creates a type-defining node under self, attaches its
// Prototype (spec §4.8; resolving Parent via graph.TypeDef when set),
// then runs Body with the defining node pushed as self so nested
// field/function declarations attach to it rather than to the document.
func (s *Scheduler) execDeclareType(p *Process, ins instr.Instruction) *serr.Error {
	d := ins.TypeDecl
	if d == nil {
		return nil
	}
	self, _ := p.Env.CurrentSelf()
	defNode, err := s.Graph.InsertChild(self, d.Name)
	if err != nil {
		return serr.Wrap(p.PID, serr.KindObjName, err)
	}
	proto := &graph.Prototype{TypeName: d.Name, DefNode: defNode}
	if d.Parent != "" {
		if parentDef, ok := s.Graph.TypeDef(d.Parent); ok {
			proto.Parent = parentDef
			proto.HasParent = true
		}
	}
	if _, err := s.Graph.PutData(defNode, proto); err != nil {
		return serr.Wrap(p.PID, serr.KindObjSetProto, err)
	}
	p.Env.PushSelf(defNode)
	res := p.runSubStream(s, d.Body)
	p.Env.PopSelf()
	return res.Err
}

// execImport runs an ImportMacro's already-compiled Body (SPEC_FULL.md
// §12.4): inline at the current self when Alias is empty, or with self
// pushed to an alias-named child (created if missing) otherwise.
func (s *Scheduler) execImport(p *Process, ins instr.Instruction) *serr.Error {
	d := ins.Import
	if d == nil {
		return nil
	}
	if d.Alias == "" {
		res := p.runSubStream(s, d.Body)
		return res.Err
	}
	self, _ := p.Env.CurrentSelf()
	target, err := s.Graph.EnsurePath(self, d.Alias)
	if err != nil {
		return serr.Wrap(p.PID, serr.KindObjName, err)
	}
	p.Env.PushSelf(target)
	res := p.runSubStream(s, d.Body)
	p.Env.PopSelf()
	return res.Err
}

func (s *Scheduler) execSpawn(p *Process, ins instr.Instruction) *serr.Error {
	self, _ := p.Env.CurrentSelf()
	childPID := s.nextPID
	s.nextPID++
	child := newProcess(childPID, ins.SpawnBody, self)
	child.Env.Self = append([]value.NodeID(nil), p.Env.Self...)
	child.Env.Call = append([]value.DataID(nil), p.Env.Call...)
	child.Env.New = append([]value.NodeID(nil), p.Env.New...)
	child.Env.Loop = append([]proc.LoopTag(nil), p.Env.Loop...)
	child.Env.Return = append([]value.DataID(nil), p.Env.Return...)
	s.procs[childPID] = child
	s.order = append(s.order, childPID)
	p.Env.Push(proc.Variable{Value: value.PromiseV(childPID, ins.SpawnPromise)})
	return nil
}

// subResult is the outcome of running a nested instruction stream to
// completion within the current scheduler tick (used for expression
// sub-streams inside If/While/Switch/ForIn/TryCatch, which never suspend
// mid-evaluation in this interpreter).
type subResult struct {
	Value value.Value
	Err   *serr.Error
}

func (p *Process) runSubStream(s *Scheduler, stream instr.Stream) subResult {
	sub := &Process{PID: p.PID, Env: p.Env, Frames: []Frame{{Stream: stream}}}
	for {
		fr, ok := sub.current()
		if !ok {
			v, _ := p.Env.Pop()
			return subResult{Value: v.Value}
		}
		if fr.Cursor >= len(fr.Stream.Instructions) {
			sub.Frames = sub.Frames[:len(sub.Frames)-1]
			continue
		}
		ins := fr.Stream.Instructions[fr.Cursor]
		fr.Cursor++
		_, err := s.exec(sub, ins)
		if err != nil {
			return subResult{Err: err}
		}
	}
}

// CallFunction resolves name on node and runs it to completion, synchronously,
// within the scheduler tick. This is the bridge library.Host.CallFunction
// implementations use (e.g. Obj.run, package doc's top-level Document.Call):
// pid identifies a live Process when the call originates from within running
// instructions (its scopes/self stack are reused); when no such Process is
// registered (a host-initiated top-level call), an ephemeral one rooted at
// node is used instead and discarded once the call returns.
func (s *Scheduler) CallFunction(pid uint64, node value.NodeID, name string, args []value.Value) (value.Value, *serr.Error) {
	did, fn, ok := s.Graph.FindFunction(node, name)
	if !ok {
		return value.Void(), serr.New(pid, serr.KindCallStackError, "function %q not found", name)
	}
	p, ok := s.Process(pid)
	if !ok {
		p = newProcess(pid, instr.Stream{}, node)
	}
	if err := s.invokeFunction(p, did, fn, args); err != nil {
		return value.Void(), err
	}
	v, _ := p.Env.Pop()
	return v.Value, nil
}
