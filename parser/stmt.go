package parser

import (
	serr "stof/errors"
	"stof/instr"
	"stof/value"
)

// parseAttributes consumes zero or more leading `#[name]`/`#[name(value)]`
// attribute blocks and `@decoratorName` shorthand (spec §4.4's function
// attributes: main/test/errors/silent/profile/async/decorator, and field
// attributes: export/private/readonly/optional/default/schema), returning
// the accumulated attribute map for the declaration that follows.
func (p *Parser) parseAttributes() (map[string]value.Value, *serr.Error) {
	attrs := make(map[string]value.Value)
	for {
		switch {
		case p.isSym("#"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.expectSym("["); err != nil {
				return nil, err
			}
			for !p.isSym("]") {
				name, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				v := value.Bool(true)
				if p.isSym("(") {
					if err := p.advance(); err != nil {
						return nil, err
					}
					v, err = p.parseAttrLiteral()
					if err != nil {
						return nil, err
					}
					if err := p.expectSym(")"); err != nil {
						return nil, err
					}
				} else if p.isSym("=") {
					if err := p.advance(); err != nil {
						return nil, err
					}
					v, err = p.parseAttrLiteral()
					if err != nil {
						return nil, err
					}
				}
				attrs[name] = v
				if p.isSym(",") {
					if err := p.advance(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
			if err := p.expectSym("]"); err != nil {
				return nil, err
			}
		case p.isSym("@"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			attrs["decorator"] = value.Str(name)
		default:
			return attrs, nil
		}
	}
}

// parseAttrLiteral parses one attribute value: a string, number, bool, or
// bare identifier (taken as its own name, e.g. `#[errors(panic)]`).
func (p *Parser) parseAttrLiteral() (value.Value, *serr.Error) {
	switch {
	case p.cur.Kind == tokString:
		s := p.cur.Text
		return value.Str(s), p.advance()
	case p.cur.Kind == tokInt, p.cur.Kind == tokFloat:
		lit, err := numberLiteral(p.cur)
		if err != nil {
			return value.Value{}, err
		}
		return lit, p.advance()
	case p.isKw("true"), p.isKw("false"):
		b := p.cur.Text == "true"
		return value.Bool(b), p.advance()
	case p.cur.Kind == tokIdent || p.cur.Kind == tokKeyword:
		s := p.cur.Text
		return value.Str(s), p.advance()
	default:
		return value.Value{}, serr.New(p.pid, serr.KindParse, "expected attribute value at line %d", p.cur.Line)
	}
}

// parseFuncDecl compiles `fn name(param[: Type][= default], ...)[: RetType]
// { body }` into an OpDeclareFunc instruction (spec §3, §4.4).
func (p *Parser) parseFuncDecl() (instr.Stream, *serr.Error) {
	return p.parseFuncDeclWithAttrs(nil)
}

func (p *Parser) parseFuncDeclWithAttrs(attrs map[string]value.Value) (instr.Stream, *serr.Error) {
	if attrs == nil {
		attrs = make(map[string]value.Value)
	}
	if err := p.advance(); err != nil { // consume 'fn'
		return instr.Stream{}, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return instr.Stream{}, err
	}
	if err := p.expectSym("("); err != nil {
		return instr.Stream{}, err
	}
	var params []instr.FuncParamDecl
	for !p.isSym(")") {
		pname, err := p.expectIdent()
		if err != nil {
			return instr.Stream{}, err
		}
		ptype := value.UnknownT()
		if p.isSym(":") {
			if err := p.advance(); err != nil {
				return instr.Stream{}, err
			}
			if t, ok := p.tryParseTypeBare(); ok {
				ptype = t
			}
		}
		var def *instr.Stream
		if p.isSym("=") {
			if err := p.advance(); err != nil {
				return instr.Stream{}, err
			}
			d, err := p.parseExpr(0)
			if err != nil {
				return instr.Stream{}, err
			}
			def = &d
		}
		params = append(params, instr.FuncParamDecl{Name: pname, Type: ptype, Default: def})
		if p.isSym(",") {
			if err := p.advance(); err != nil {
				return instr.Stream{}, err
			}
			continue
		}
		break
	}
	if err := p.expectSym(")"); err != nil {
		return instr.Stream{}, err
	}
	retType := value.VoidT()
	if p.isSym(":") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		if t, ok := p.tryParseTypeBare(); ok {
			retType = t
		}
	}
	body, err := p.parseBlock(false)
	if err != nil {
		return instr.Stream{}, err
	}
	decl := &instr.FuncDeclMacro{Name: name, Params: params, ReturnType: retType, Attributes: attrs, Body: body}
	return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpDeclareFunc, FuncDecl: decl}}}, nil
}

// tryParseTypeBare is tryParseType without requiring a following
// identifier (used for a return-type annotation, which is followed by
// `{`, not another name).
func (p *Parser) tryParseTypeBare() (value.Type, bool) {
	if p.cur.Kind != tokIdent && p.cur.Kind != tokKeyword {
		return value.Type{}, false
	}
	if t, ok := builtinTypeNames[p.cur.Text]; ok {
		p.advance()
		return t, true
	}
	name := p.cur.Text
	p.advance()
	return value.ObjT(name), true
}

// parseTypeDecl compiles `type Name [extends Parent] { ... }` into an
// OpDeclareType instruction (spec §4.8).
func (p *Parser) parseTypeDecl() (instr.Stream, *serr.Error) {
	if err := p.advance(); err != nil { // consume 'type'
		return instr.Stream{}, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return instr.Stream{}, err
	}
	parent := ""
	if p.isKw("extends") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		parent, err = p.expectIdent()
		if err != nil {
			return instr.Stream{}, err
		}
	}
	body, err := p.parseTypeBody()
	if err != nil {
		return instr.Stream{}, err
	}
	decl := &instr.TypeDeclMacro{Name: name, Parent: parent, Body: body}
	return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpDeclareType, TypeDecl: decl}}}, nil
}

// parseTypeBody parses a type's '{' ... '}' block as a flat sequence of
// field and function declarations, run with the defining node as self
// (spec §4.8) rather than as a scoped Block of ordinary statements.
func (p *Parser) parseTypeBody() (instr.Stream, *serr.Error) {
	if err := p.expectSym("{"); err != nil {
		return instr.Stream{}, err
	}
	var body instr.Stream
	for !p.isSym("}") && !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return instr.Stream{}, err
		}
		body.AppendStream(stmt)
	}
	if err := p.expectSym("}"); err != nil {
		return instr.Stream{}, err
	}
	return body, nil
}

// parseFieldDecl compiles a bare document/type-body field declaration
// `name [: Type] = expr ;` into an OpDeclareField instruction (spec §3).
func (p *Parser) parseFieldDecl(attrs map[string]value.Value) (instr.Stream, *serr.Error) {
	if attrs == nil {
		attrs = make(map[string]value.Value)
	}
	name, err := p.expectIdent()
	if err != nil {
		return instr.Stream{}, err
	}
	ftype := value.UnknownT()
	if p.isSym(":") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		if t, ok := p.tryParseTypeBare(); ok {
			ftype = t
		}
	}
	hasValue := false
	var valExpr instr.Stream
	if p.isSym("=") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		valExpr, err = p.parseExpr(0)
		if err != nil {
			return instr.Stream{}, err
		}
		hasValue = true
	}
	p.skipSemi()
	decl := &instr.FieldDeclMacro{Name: name, Type: ftype, HasValue: hasValue, Value: valExpr, Attributes: attrs}
	return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpDeclareField, FieldDecl: decl}}}, nil
}

// looksLikeFieldDecl reports whether the parser is positioned at a bare
// typed field declaration (`name : Type = expr;`). Untyped `name = expr;`
// is left to parseExprStatement/proc.Set's assignment fallback chain
// (spec §4.5), which already creates a field on self when no existing
// symbol or field binds the name -- only the explicit `:` form needs its
// own grammar rule to carry a declared Type and attributes.
func (p *Parser) looksLikeFieldDecl() bool {
	return p.cur.Kind == tokIdent && p.peek.Kind == tokSymbol && p.peek.Text == ":"
}

// parseIf compiles `if cond { then } [else if cond { ... }]* [else { ... }]`.
func (p *Parser) parseIf() (instr.Stream, *serr.Error) {
	if err := p.advance(); err != nil { // consume 'if'
		return instr.Stream{}, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return instr.Stream{}, err
	}
	then, err := p.parseBlock(true)
	if err != nil {
		return instr.Stream{}, err
	}
	ifm := &instr.IfMacro{Cond: cond, Then: then}
	for p.isKw("else") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		if p.isKw("if") {
			if err := p.advance(); err != nil {
				return instr.Stream{}, err
			}
			elifCond, err := p.parseExpr(0)
			if err != nil {
				return instr.Stream{}, err
			}
			elifBody, err := p.parseBlock(true)
			if err != nil {
				return instr.Stream{}, err
			}
			ifm.Elifs = append(ifm.Elifs, instr.ElifClause{Cond: elifCond, Body: elifBody})
			continue
		}
		elseBody, err := p.parseBlock(true)
		if err != nil {
			return instr.Stream{}, err
		}
		ifm.Else = elseBody
		break
	}
	return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpIf, If: ifm}}}, nil
}

// parseWhile compiles `while cond { body }`.
func (p *Parser) parseWhile() (instr.Stream, *serr.Error) {
	if err := p.advance(); err != nil { // consume 'while'
		return instr.Stream{}, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return instr.Stream{}, err
	}
	body, err := p.parseBlock(true)
	if err != nil {
		return instr.Stream{}, err
	}
	return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpWhile, While: &instr.WhileMacro{Cond: cond, Body: body}}}}, nil
}

// parseForIn compiles `for name[, index] in iterable { body }` (spec
// §4.6's ForIn macro; `first`/`last` sentinel bindings are an additional
// `for name, index, first, last in iter` form).
func (p *Parser) parseForIn() (instr.Stream, *serr.Error) {
	if err := p.advance(); err != nil { // consume 'for'
		return instr.Stream{}, err
	}
	varName, err := p.expectIdent()
	if err != nil {
		return instr.Stream{}, err
	}
	indexName, firstName, lastName := "", "", ""
	for p.isSym(",") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		extra, err := p.expectIdent()
		if err != nil {
			return instr.Stream{}, err
		}
		switch {
		case indexName == "":
			indexName = extra
		case firstName == "":
			firstName = extra
		case lastName == "":
			lastName = extra
		}
	}
	if err := p.expectKw("in"); err != nil {
		return instr.Stream{}, err
	}
	iterable, err := p.parseExpr(0)
	if err != nil {
		return instr.Stream{}, err
	}
	body, err := p.parseBlock(true)
	if err != nil {
		return instr.Stream{}, err
	}
	fm := &instr.ForInMacro{
		VarName: varName, IndexName: indexName, IsFirst: firstName, IsLast: lastName,
		Iterable: iterable, Body: body,
	}
	return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpForIn, ForIn: fm}}}, nil
}

// parseTryCatch compiles `try { ... } catch [(name[: Type])] { ... }`
// (spec §4.6's TryCatch macro; CatchType selects how the caught error
// materializes into name -- str/tuple/map per tryParseTypeBare's result).
func (p *Parser) parseTryCatch() (instr.Stream, *serr.Error) {
	if err := p.advance(); err != nil { // consume 'try'
		return instr.Stream{}, err
	}
	tryBody, err := p.parseBlock(true)
	if err != nil {
		return instr.Stream{}, err
	}
	if err := p.expectKw("catch"); err != nil {
		return instr.Stream{}, err
	}
	catchVar := "error"
	catchType := value.StrT()
	if p.isSym("(") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		catchVar, err = p.expectIdent()
		if err != nil {
			return instr.Stream{}, err
		}
		if p.isSym(":") {
			if err := p.advance(); err != nil {
				return instr.Stream{}, err
			}
			if t, ok := p.tryParseTypeBare(); ok {
				catchType = t
			}
		}
		if err := p.expectSym(")"); err != nil {
			return instr.Stream{}, err
		}
	}
	catchBody, err := p.parseBlock(true)
	if err != nil {
		return instr.Stream{}, err
	}
	tc := &instr.TryCatchMacro{Try: tryBody, Catch: catchBody, CatchVar: catchVar, CatchType: catchType}
	return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpTryCatch, TryCatch: tc}}}, nil
}

// parseSwitch compiles `switch expr { case lit { body } ... [default { body }] }`.
func (p *Parser) parseSwitch() (instr.Stream, *serr.Error) {
	if err := p.advance(); err != nil { // consume 'switch'
		return instr.Stream{}, err
	}
	subject, err := p.parseExpr(0)
	if err != nil {
		return instr.Stream{}, err
	}
	if err := p.expectSym("{"); err != nil {
		return instr.Stream{}, err
	}
	sw := &instr.SwitchMacro{Expr: subject}
	for !p.isSym("}") && !p.atEOF() {
		if p.isKw("default") {
			if err := p.advance(); err != nil {
				return instr.Stream{}, err
			}
			body, err := p.parseBlock(true)
			if err != nil {
				return instr.Stream{}, err
			}
			sw.Default = body
			continue
		}
		if err := p.expectKw("case"); err != nil {
			return instr.Stream{}, err
		}
		lit, err := numberOrStringOrBoolLiteral(p)
		if err != nil {
			return instr.Stream{}, err
		}
		body, err := p.parseBlock(true)
		if err != nil {
			return instr.Stream{}, err
		}
		sw.Cases = append(sw.Cases, instr.SwitchCase{Match: lit, Body: body})
	}
	if err := p.expectSym("}"); err != nil {
		return instr.Stream{}, err
	}
	return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpSwitch, Switch: sw}}}, nil
}

// numberOrStringOrBoolLiteral parses one case-label literal; switch
// matching (spec §4.6) is against constant values, not arbitrary
// expressions.
func numberOrStringOrBoolLiteral(p *Parser) (value.Value, *serr.Error) {
	switch {
	case p.cur.Kind == tokInt, p.cur.Kind == tokFloat, p.cur.Kind == tokUnitsNum:
		lit, err := numberLiteral(p.cur)
		if err != nil {
			return value.Value{}, err
		}
		return lit, p.advance()
	case p.cur.Kind == tokString:
		s := p.cur.Text
		return value.Str(s), p.advance()
	case p.isKw("true"), p.isKw("false"):
		b := p.cur.Text == "true"
		return value.Bool(b), p.advance()
	default:
		return value.Value{}, serr.New(p.pid, serr.KindParse, "expected case literal at line %d", p.cur.Line)
	}
}
