// Package instr defines the Stof instruction stream (spec §4.6): the base
// instruction set the parser compiles declarations and statements into, plus
// the macro instructions (Block/If/While/Switch/For/TryCatch/NewObj/FuncCall/
// Return), which the interpreter executes directly rather than lowering
// them into the base set.
//
// Grounded structurally in other_examples' sentra vmregister bytecode file
// (an explicit, documented opcode enumeration) and in the teacher's plain
// data-struct style; Stof is tree-walking rather than register-based, so
// instructions here carry their operands as typed fields rather than packed
// bit-fields, the way a `core.TransformOp`-style struct does.
package instr

import "stof/value"

// Op tags the kind of a base Instruction.
type Op uint8

const (
	OpSuspend Op = iota
	OpAwait
	OpAwaitCast
	OpNoOp
	OpTag
	OpBackTo
	OpForwardTo
	OpForwardToIfTruthy
	OpForwardToIfNotTruthy
	OpJumpTable
	OpTry
	OpTryEnd
	OpSleepFor
	OpSleepRef
	OpExit
	OpFnReturn

	OpPushSelf
	OpPopSelf
	OpPushCall
	OpPopCall
	OpPushNew
	OpPopNew
	OpPushLoop
	OpPopLoop
	OpBreak
	OpContinue
	OpPushReturn
	OpPopReturn
	OpDup
	OpPopStack
	OpPopUntilAndIncluding
	OpFuncVoidRet

	OpPushSymbolScope
	OpPopSymbolScope
	OpPopSymbolScopeToDepth
	OpDeclareVar
	OpDeclareConstVar
	OpDropVariable
	OpLoadVariable
	OpSetVariable

	OpLiteral
	OpVariableOperand
	OpCast
	OpTypeOf
	OpTypeName
	OpInstanceOf
	OpTruthy
	OpNotTruthy
	OpIsNull

	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr

	OpSpawn

	// Macro instructions (spec §4.6 "macro instructions"), executed
	// directly by the interpreter; kept in the same Op space so a Stream
	// can mix base and macro instructions.
	OpBlock
	OpIf
	OpWhile
	OpSwitch
	OpForIn
	OpTryCatch
	OpNewObj
	OpFuncCall
	OpReturn
	OpEmptyReturn

	// Declaration instructions compiled by the parser for document-level
	// and type-body declarations (spec §4.6 "Parser ... declarations"):
	// these attach Data to the current self rather than binding a process-
	// local symbol, the distinction between a Field/Function/Prototype
	// (graph Data, spec §3) and a `let`/`const` local variable (spec §4.5).
	OpDeclareField
	OpDeclareFunc
	OpDeclareType
	OpImport
)

// Instruction is one element of a Stream. Only the fields relevant to Op
// are populated; this mirrors Value's own tagged-union shape (package value).
type Instruction struct {
	Op Op

	// Control operands
	Tag          int
	ConsumeCond  bool
	JumpTable    map[string]int
	JumpDefault  int
	Dur          DurationRef

	// Symbol operands
	Name      string
	DeclType  value.Type
	FromStack bool
	ByRef     bool

	// Value operands
	Literal Value_
	CastTo  value.Type

	// Spawn
	SpawnBody    Stream
	SpawnPromise value.Type

	// Macro operands, populated only for the corresponding macro Op.
	Block      *BlockMacro
	If         *IfMacro
	While      *WhileMacro
	Switch     *SwitchMacro
	ForIn      *ForInMacro
	TryCatch   *TryCatchMacro
	NewObj     *NewObjMacro
	FuncCall   *FuncCallMacro
	ReturnExpr Stream

	// Declaration operands.
	FieldDecl *FieldDeclMacro
	FuncDecl  *FuncDeclMacro
	TypeDecl  *TypeDeclMacro
	Import    *ImportMacro
}

// Value_ avoids a name clash with package value while keeping the field
// named the way the spec names it ("Literal(v)").
type Value_ = value.Value

// DurationRef is either a fixed duration (SleepFor) or a named wake
// reference resolved at runtime against the process env (SleepRef).
type DurationRef struct {
	Fixed     int64 // nanoseconds; 0 with Ref set means "wait on Ref"
	Ref       string
}

// Stream is a sequence of instructions, the unit the parser emits and the
// interpreter steps through (spec §4.6 "instruction stream").
type Stream struct {
	Instructions []Instruction
}

func (s *Stream) Append(i Instruction) { s.Instructions = append(s.Instructions, i) }

func (s *Stream) AppendStream(other Stream) {
	s.Instructions = append(s.Instructions, other.Instructions...)
}

func Lit(v value.Value) Instruction { return Instruction{Op: OpLiteral, Literal: v} }
