package parser

import (
	serr "stof/errors"
	"stof/instr"
	"stof/value"
)

// binding powers implement the same precedence climb as original_source's
// parse_expr_pair/parse_math_pairs operator table, from loosest to
// tightest: or, and, equality, relational, additive, multiplicative.
var binPower = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

var binOp = map[string]instr.Op{
	"+": instr.OpAdd, "-": instr.OpSub, "*": instr.OpMul, "/": instr.OpDiv, "%": instr.OpMod,
	"==": instr.OpEq, "!=": instr.OpNeq, "<": instr.OpLt, "<=": instr.OpLte, ">": instr.OpGt, ">=": instr.OpGte,
	"&&": instr.OpAnd, "||": instr.OpOr,
}

// parseExpr implements precedence climbing: parse a unary/primary operand,
// then repeatedly fold in binary operators whose power exceeds minPower.
func (p *Parser) parseExpr(minPower int) (instr.Stream, *serr.Error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return instr.Stream{}, err
	}
	return p.foldBinary(lhs, minPower)
}

// foldBinary runs the precedence-climbing loop against an already-parsed
// left-hand operand; split out so statement-level assignment parsing can
// reuse an operand it already parsed while checking for an assign token.
func (p *Parser) foldBinary(lhs instr.Stream, minPower int) (instr.Stream, *serr.Error) {
	for {
		if p.cur.Kind != tokSymbol {
			break
		}
		power, ok := binPower[p.cur.Text]
		if !ok || power < minPower {
			break
		}
		opText := p.cur.Text
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		rhs, err := p.parseExpr(power + 1)
		if err != nil {
			return instr.Stream{}, err
		}
		lhs.AppendStream(rhs)
		lhs.Append(instr.Instruction{Op: binOp[opText]})
	}
	return lhs, nil
}

var compoundAssignOps = map[string]instr.Op{
	"+=": instr.OpAdd, "-=": instr.OpSub, "*=": instr.OpMul, "/=": instr.OpDiv, "%=": instr.OpMod,
}

// parseUnary handles prefix `!`/`-` and then defers to parsePostfix.
func (p *Parser) parseUnary() (instr.Stream, *serr.Error) {
	if p.isSym("!") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return instr.Stream{}, err
		}
		operand.Append(instr.Instruction{Op: instr.OpNotTruthy})
		return operand, nil
	}
	if p.isSym("-") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return instr.Stream{}, err
		}
		var out instr.Stream
		out.Append(instr.Lit(value.Int(0)))
		out.AppendStream(operand)
		out.Append(instr.Instruction{Op: instr.OpSub})
		return out, nil
	}
	expr, _, err := p.parsePostfix()
	return expr, err
}

// parsePostfix parses a primary expression, then any trailing `.name`
// field/path access, `.name(args)` calls, or bare `(args)` calls. It
// returns the accumulated dotted path alongside the compiled stream so
// statement-level assignment parsing can recognize an lvalue.
func (p *Parser) parsePostfix() (instr.Stream, string, *serr.Error) {
	expr, path, err := p.parsePrimary()
	if err != nil {
		return instr.Stream{}, "", err
	}
	for {
		if p.isSym(".") {
			if err := p.advance(); err != nil {
				return instr.Stream{}, "", err
			}
			name, err := p.expectIdent()
			if err != nil {
				return instr.Stream{}, "", err
			}
			path = joinDotted(path, name)
			if p.isSym("(") {
				args, err := p.parseArgList()
				if err != nil {
					return instr.Stream{}, "", err
				}
				expr.Append(instr.Instruction{
					Op: instr.OpFuncCall,
					FuncCall: &instr.FuncCallMacro{
						Target:   expr,
						Path:     path,
						ArgExprs: args,
					},
				})
				continue
			}
			expr.Append(instr.Instruction{Op: instr.OpLoadVariable, Name: path})
			continue
		}
		if p.isSym("(") && path != "" {
			args, err := p.parseArgList()
			if err != nil {
				return instr.Stream{}, "", err
			}
			expr = instr.Stream{Instructions: []instr.Instruction{{
				Op: instr.OpFuncCall,
				FuncCall: &instr.FuncCallMacro{
					Path:     path,
					ArgExprs: args,
				},
			}}}
			path = ""
			continue
		}
		break
	}
	return expr, path, nil
}

func joinDotted(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func (p *Parser) parseArgList() ([]instr.Stream, *serr.Error) {
	if err := p.expectSym("("); err != nil {
		return nil, err
	}
	var args []instr.Stream
	for !p.isSym(")") {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isSym(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectSym(")"); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePrimary parses a literal, parenthesized expression, identifier
// (bare variable load or start of a dotted path), or `new T{...}`
// construction. Returns both the compiled Stream and, for bare
// identifiers, the accumulated dotted-path text so parsePostfix can keep
// extending it before deciding between a field load and a function call.
func (p *Parser) parsePrimary() (instr.Stream, string, *serr.Error) {
	switch {
	case p.cur.Kind == tokInt, p.cur.Kind == tokFloat, p.cur.Kind == tokUnitsNum:
		lit, err := numberLiteral(p.cur)
		if err != nil {
			return instr.Stream{}, "", err
		}
		if err := p.advance(); err != nil {
			return instr.Stream{}, "", err
		}
		return instr.Stream{Instructions: []instr.Instruction{instr.Lit(lit)}}, "", nil

	case p.cur.Kind == tokString:
		s := p.cur.Text
		if err := p.advance(); err != nil {
			return instr.Stream{}, "", err
		}
		return instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Str(s))}}, "", nil

	case p.isKw("true"), p.isKw("false"):
		b := p.cur.Text == "true"
		if err := p.advance(); err != nil {
			return instr.Stream{}, "", err
		}
		return instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Bool(b))}}, "", nil

	case p.isKw("null"):
		if err := p.advance(); err != nil {
			return instr.Stream{}, "", err
		}
		return instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Null())}}, "", nil

	case p.isKw("self"):
		if err := p.advance(); err != nil {
			return instr.Stream{}, "", err
		}
		return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpLoadVariable, Name: "self"}}}, "self", nil

	case p.isKw("new"):
		return p.parseNewObj()

	case p.isKw("spawn"):
		return p.parseSpawn()

	case p.isKw("await"):
		if err := p.advance(); err != nil {
			return instr.Stream{}, "", err
		}
		target, err := p.parseUnary()
		if err != nil {
			return instr.Stream{}, "", err
		}
		target.Append(instr.Instruction{Op: instr.OpAwait})
		return target, "", nil

	case p.isSym("("):
		if err := p.advance(); err != nil {
			return instr.Stream{}, "", err
		}
		inner, err := p.parseExpr(0)
		if err != nil {
			return instr.Stream{}, "", err
		}
		if err := p.expectSym(")"); err != nil {
			return instr.Stream{}, "", err
		}
		return inner, "", nil

	case p.cur.Kind == tokIdent:
		name := p.cur.Text
		if err := p.advance(); err != nil {
			return instr.Stream{}, "", err
		}
		return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpLoadVariable, Name: name}}}, name, nil

	default:
		return instr.Stream{}, "", serr.New(p.pid, serr.KindParse, "unexpected token %q at line %d", p.cur.Text, p.cur.Line)
	}
}

// parseSpawn compiles `spawn { ... }` into an OpSpawn carrying the body
// as a sub-stream (spec §4.7 cooperative process spawn).
func (p *Parser) parseSpawn() (instr.Stream, string, *serr.Error) {
	if err := p.advance(); err != nil {
		return instr.Stream{}, "", err
	}
	body, err := p.parseBlock(true)
	if err != nil {
		return instr.Stream{}, "", err
	}
	return instr.Stream{Instructions: []instr.Instruction{{
		Op:           instr.OpSpawn,
		SpawnBody:    body,
		SpawnPromise: value.UnknownT(),
	}}}, "", nil
}

// parseNewObj compiles `new TypeName { field: expr, ... }`.
func (p *Parser) parseNewObj() (instr.Stream, string, *serr.Error) {
	if err := p.advance(); err != nil {
		return instr.Stream{}, "", err
	}
	typeName, err := p.expectIdent()
	if err != nil {
		return instr.Stream{}, "", err
	}
	if err := p.expectSym("{"); err != nil {
		return instr.Stream{}, "", err
	}
	var fields []instr.FieldInit
	for !p.isSym("}") {
		fname, err := p.expectIdent()
		if err != nil {
			return instr.Stream{}, "", err
		}
		if err := p.expectSym(":"); err != nil {
			return instr.Stream{}, "", err
		}
		fexpr, err := p.parseExpr(0)
		if err != nil {
			return instr.Stream{}, "", err
		}
		fields = append(fields, instr.FieldInit{Name: fname, Expr: fexpr})
		if p.isSym(",") {
			if err := p.advance(); err != nil {
				return instr.Stream{}, "", err
			}
			continue
		}
		break
	}
	if err := p.expectSym("}"); err != nil {
		return instr.Stream{}, "", err
	}
	return instr.Stream{Instructions: []instr.Instruction{{
		Op: instr.OpNewObj,
		NewObj: &instr.NewObjMacro{
			TypeName:  typeName,
			FieldInit: fields,
		},
	}}}, "", nil
}
