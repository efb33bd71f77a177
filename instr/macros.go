package instr

import "stof/value"

// BlockMacro groups a scoped or unscoped body (spec §4.6 Block{scoped, body}).
type BlockMacro struct {
	Scoped bool
	Body   Stream
}

// IfMacro is If{cond, then, elifs, else}.
type ElifClause struct {
	Cond Stream
	Body Stream
}

type IfMacro struct {
	Cond  Stream
	Then  Stream
	Elifs []ElifClause
	Else  Stream
}

// WhileMacro is While{cond, body}; the interpreter runs it directly, with
// no loop tag.
type WhileMacro struct {
	Cond Stream
	Body Stream
}

// SwitchMacro is Switch{expr, cases, default}.
type SwitchCase struct {
	Match Value_
	Body  Stream
}

type SwitchMacro struct {
	Expr    Stream
	Cases   []SwitchCase
	Default Stream
}

// ForInMacro is run by the interpreter over the evaluated iterable's items
// directly (no lowering to len/at/index base instructions), with optional
// index/first/last sentinel bindings (spec §4.6).
type ForInMacro struct {
	VarName   string
	IndexName string // "" if not bound
	IsFirst   string // sentinel binding name, "" if unused
	IsLast    string
	Iterable  Stream
	Body      Stream
}

// TryCatchMacro is TryCatch{try, catch, catchType, catchVar}.
type TryCatchMacro struct {
	Try      Stream
	Catch    Stream
	CatchVar string
	// CatchType selects how the caught error is materialized (spec §4.6):
	// "str" -> message, "tuple" -> (kind, message), "map" -> {type,message,stack}.
	CatchType value.Type
}

// NewObjMacro is NewObj{body, parentExpr?} -- `new T{ ... }`.
type NewObjMacro struct {
	TypeName   string
	ParentExpr Stream // empty if no explicit parent
	FieldInit  []FieldInit
}

type FieldInit struct {
	Name string
	Expr Stream
}

// FuncCallMacro is FuncCall{target, argExprs, asRef}.
type FuncCallMacro struct {
	Target   Stream
	Path     string // dotted function path, resolved at call time
	ArgExprs []Stream
	AsRef    bool
}

// FuncParamDecl is one declared function parameter: name, declared type
// (value.UnknownT() if unannotated), and optional default-value
// expression. Mirrors graph.FuncParam's shape but lives here since graph
// already imports instr for Function.Body.
type FuncParamDecl struct {
	Name    string
	Type    value.Type
	Default *Stream // nil if required
}

// FieldDeclMacro is a document/type-body field declaration (`name: Type =
// expr;`), distinct from a `let`/`const` local variable: it attaches a
// graph.Field (with attribute metadata) to the current self (spec §3).
type FieldDeclMacro struct {
	Name       string
	Type       value.Type
	HasValue   bool
	Value      Stream // empty if HasValue is false; the interpreter then stores Void
	Attributes map[string]Value_
}

// FuncDeclMacro is a `fn name(params): RetType { body }` declaration,
// compiled fully at parse time and attached as a graph.Function to self
// when executed (spec §3, §4.4).
type FuncDeclMacro struct {
	Name       string
	Params     []FuncParamDecl
	ReturnType value.Type
	Attributes map[string]Value_
	Body       Stream
}

// TypeDeclMacro is a `type Name [extends Parent] { ... }` declaration: a
// new defining node is created under self, its body runs with self bound
// to that node (so nested field/fn declarations attach to it), then a
// Prototype marks it as a canonical type definition (spec §4.8).
type TypeDeclMacro struct {
	Name   string
	Parent string // "" if no parent type
	Body   Stream
}

// ImportMacro is `import "path" [as alias];` (SPEC_FULL.md §12.4): the
// parser resolves path to source text through an injected Importer at
// parse time and compiles it into Body; Alias == "" inlines Body's
// declarations at the current self, otherwise Body runs with self pushed
// to an alias-named child node first (ensured via EnsurePath), the same
// "push a resolved self, run a sub-stream, pop" shape execDeclareType
// already uses for `type Name {...}`.
type ImportMacro struct {
	Alias string
	Body  Stream
}
