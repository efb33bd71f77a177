package parser

import (
	serr "stof/errors"
	"stof/instr"
	"stof/units"
	"stof/value"
)

// Importer resolves an `import "path";` directive's path to source text
// (SPEC_FULL.md §12.4), letting the parser compose multiple source files
// into one document at parse time without the parser package itself
// touching the filesystem -- package doc supplies the real implementation
// (reading through its RuntimeConfig-gated file access), tests supply a
// map-backed fake.
type Importer interface {
	Import(path string) (string, error)
}

// Parser consumes tokens from a Lexer and compiles statements directly
// into an instr.Stream, the way original_source's parser.rs threads parse
// tree nodes straight into pushed instructions rather than building a
// separate AST.
type Parser struct {
	lex      *Lexer
	cur      token
	peek     token
	pid      uint64
	importer Importer
}

// Option configures optional Parser behavior, currently just WithImporter.
type Option func(*Parser)

// WithImporter installs the Importer `import "path" [as name];`
// directives resolve through; without one, import directives parse but
// compile to a no-op (no filesystem access available).
func WithImporter(imp Importer) Option {
	return func(p *Parser) { p.importer = imp }
}

// New returns a Parser positioned at the first token of src.
func New(src string, opts ...Option) (*Parser, *serr.Error) {
	p := &Parser{lex: NewLexer(src)}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() *serr.Error {
	p.cur = p.peek
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.peek = t
	return nil
}

func (p *Parser) atEOF() bool { return p.cur.Kind == tokEOF }

func (p *Parser) isSym(s string) bool { return p.cur.Kind == tokSymbol && p.cur.Text == s }
func (p *Parser) isKw(s string) bool  { return p.cur.Kind == tokKeyword && p.cur.Text == s }

func (p *Parser) expectSym(s string) *serr.Error {
	if !p.isSym(s) {
		return serr.New(p.pid, serr.KindParse, "expected %q at line %d, found %q", s, p.cur.Line, p.cur.Text)
	}
	return p.advance()
}

func (p *Parser) expectKw(s string) *serr.Error {
	if !p.isKw(s) {
		return serr.New(p.pid, serr.KindParse, "expected keyword %q at line %d, found %q", s, p.cur.Line, p.cur.Text)
	}
	return p.advance()
}

func (p *Parser) expectIdent() (string, *serr.Error) {
	if p.cur.Kind != tokIdent {
		return "", serr.New(p.pid, serr.KindParse, "expected identifier at line %d, found %q", p.cur.Line, p.cur.Text)
	}
	name := p.cur.Text
	return name, p.advance()
}

// ParseDocument compiles an entire source file (a flat sequence of field
// declarations, function declarations, type declarations, and import
// directives at the document root) into a single Stream, per spec §4.6.
func (p *Parser) ParseDocument() (instr.Stream, *serr.Error) {
	var out instr.Stream
	for !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return out, err
		}
		out.AppendStream(stmt)
	}
	return out, nil
}

// ParseExpression compiles a single standalone expression, for callers
// that need one value rather than a full document.
func (p *Parser) ParseExpression() (instr.Stream, *serr.Error) {
	return p.parseExpr(0)
}

func (p *Parser) parseStatement() (instr.Stream, *serr.Error) {
	if p.isSym("#") || p.isSym("@") {
		attrs, err := p.parseAttributes()
		if err != nil {
			return instr.Stream{}, err
		}
		switch {
		case p.isKw("fn"):
			return p.parseFuncDeclWithAttrs(attrs)
		case p.isKw("type"):
			return p.parseTypeDecl()
		case p.looksLikeFieldDecl():
			return p.parseFieldDecl(attrs)
		default:
			return p.parseStatement()
		}
	}
	switch {
	case p.isKw("let") || p.isKw("const"):
		return p.parseDeclare()
	case p.isKw("fn"):
		return p.parseFuncDecl()
	case p.isKw("type"):
		return p.parseTypeDecl()
	case p.isKw("if"):
		return p.parseIf()
	case p.isKw("while"):
		return p.parseWhile()
	case p.isKw("for"):
		return p.parseForIn()
	case p.isKw("try"):
		return p.parseTryCatch()
	case p.isKw("switch"):
		return p.parseSwitch()
	case p.isKw("return"):
		return p.parseReturn()
	case p.isKw("break"):
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		p.skipSemi()
		return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpBreak}}}, nil
	case p.isKw("continue"):
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		p.skipSemi()
		return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpContinue}}}, nil
	case p.isSym("{"):
		return p.parseBlock(true)
	case p.isKw("import"):
		return p.parseImport()
	case p.looksLikeFieldDecl():
		return p.parseFieldDecl(nil)
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) skipSemi() {
	if p.isSym(";") {
		p.advance()
	}
}

func (p *Parser) parseBlock(scoped bool) (instr.Stream, *serr.Error) {
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
	return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpBlock, Block: &instr.BlockMacro{Scoped: scoped, Body: body}}}}, nil
}

// parseDeclare compiles `let`/`const` [type] name [= expr] ';' into a
// DeclareVar/DeclareConstVar instruction, per spec §4.5.
func (p *Parser) parseDeclare() (instr.Stream, *serr.Error) {
	constant := p.isKw("const")
	if err := p.advance(); err != nil {
		return instr.Stream{}, err
	}
	declType := value.UnknownT()
	if t, ok := p.tryParseType(); ok {
		declType = t
	}
	name, err := p.expectIdent()
	if err != nil {
		return instr.Stream{}, err
	}
	var valueStream instr.Stream
	if p.isSym("=") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		valueStream, err = p.parseExpr(0)
		if err != nil {
			return instr.Stream{}, err
		}
	} else {
		valueStream = instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Void())}}
	}
	p.skipSemi()

	op := instr.OpDeclareVar
	if constant {
		op = instr.OpDeclareConstVar
	}
	valueStream.Append(instr.Instruction{Op: op, Name: name, DeclType: declType})
	return valueStream, nil
}

// tryParseType recognizes a leading built-in type annotation before a
// declared name: one of builtinTypeNames (`int`, `float`, `units`, `str`,
// `bool`, `blob`, `obj`, `fn`, `Array`, `Set`, `Map`, `void`) immediately
// followed by another identifier (the variable name) per spec §3/§4.5.
// User-defined type names are not recognized here. Returns ok=false (no
// advance) when the next token is not a recognized type name.
func (p *Parser) tryParseType() (value.Type, bool) {
	if p.cur.Kind != tokIdent && p.cur.Kind != tokKeyword {
		return value.Type{}, false
	}
	if p.peek.Kind != tokIdent {
		return value.Type{}, false
	}
	name := p.cur.Text
	t, isBuiltin := builtinTypeNames[name]
	if !isBuiltin {
		// an identifier that is not a built-in type name is never taken
		// as a type annotation, even when another identifier follows it.
		return value.Type{}, false
	}
	p.advance()
	return t, true
}

var builtinTypeNames = map[string]value.Type{
	"int": value.IntType(), "float": value.FloatType(), "units": value.UnitsType(),
	"str": value.StrT(), "bool": value.BoolT(), "blob": value.BlobT(),
	"obj": value.ObjT(""), "fn": value.FnT(), "Array": value.ListT(),
	"Set": value.SetT(), "Map": value.MapT(), "void": value.VoidT(),
}

// parseImport compiles `import "path" [as name];` (SPEC_FULL.md §12.4).
// With an Importer installed, the referenced source is read and compiled
// recursively at parse time (so transitive imports resolve too) and
// emitted as a single OpImport instruction; interp.execImport inlines its
// Body at the current self, or under an alias-named child node when `as`
// is given. Without an Importer, the directive still parses (so source
// using it is never a syntax error) but compiles to a no-op.
func (p *Parser) parseImport() (instr.Stream, *serr.Error) {
	if err := p.advance(); err != nil {
		return instr.Stream{}, err
	}
	if p.cur.Kind != tokString {
		return instr.Stream{}, serr.New(p.pid, serr.KindParse, "expected string path after import at line %d", p.cur.Line)
	}
	path := p.cur.Text
	if err := p.advance(); err != nil {
		return instr.Stream{}, err
	}
	alias := ""
	if p.isKw("as") {
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		var err *serr.Error
		alias, err = p.expectIdent()
		if err != nil {
			return instr.Stream{}, err
		}
	}
	p.skipSemi()

	if p.importer == nil {
		return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpNoOp, Name: path}}}, nil
	}
	src, ioErr := p.importer.Import(path)
	if ioErr != nil {
		return instr.Stream{}, serr.New(p.pid, serr.KindFilesystem, "import %q: %s", path, ioErr.Error())
	}
	nested, err := New(src, WithImporter(p.importer))
	if err != nil {
		return instr.Stream{}, err
	}
	body, err := nested.ParseDocument()
	if err != nil {
		return instr.Stream{}, err
	}
	return instr.Stream{Instructions: []instr.Instruction{{
		Op:     instr.OpImport,
		Import: &instr.ImportMacro{Alias: alias, Body: body},
	}}}, nil
}

var assignOps = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true}

// parseExprStatement compiles one top-level expression statement, folding
// in assignment: `path = expr` and `path += expr` (spec §4.5 Set), since
// assignment targets an lvalue path rather than a generic expression and
// so must be recognized before the precedence-climbing binary-op loop
// consumes the `=`/`+=` token as anything else.
func (p *Parser) parseExprStatement() (instr.Stream, *serr.Error) {
	lhs, path, err := p.parsePostfix()
	if err != nil {
		return instr.Stream{}, err
	}
	if path != "" && p.cur.Kind == tokSymbol && assignOps[p.cur.Text] {
		opText := p.cur.Text
		if err := p.advance(); err != nil {
			return instr.Stream{}, err
		}
		rhs, err := p.parseExpr(0)
		if err != nil {
			return instr.Stream{}, err
		}
		var out instr.Stream
		if opText == "=" {
			out = rhs
		} else {
			out.Append(instr.Instruction{Op: instr.OpLoadVariable, Name: path})
			out.AppendStream(rhs)
			out.Append(instr.Instruction{Op: compoundAssignOps[opText]})
		}
		out.Append(instr.Instruction{Op: instr.OpSetVariable, Name: path})
		p.skipSemi()
		return out, nil
	}
	full, err := p.foldBinary(lhs, 0)
	if err != nil {
		return instr.Stream{}, err
	}
	p.skipSemi()
	return full, nil
}

// parseReturn compiles `return [expr] ';'`.
func (p *Parser) parseReturn() (instr.Stream, *serr.Error) {
	if err := p.advance(); err != nil {
		return instr.Stream{}, err
	}
	if p.isSym(";") || p.isSym("}") {
		p.skipSemi()
		return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpEmptyReturn}}}, nil
	}
	expr, err := p.parseExpr(0)
	if err != nil {
		return instr.Stream{}, err
	}
	p.skipSemi()
	return instr.Stream{Instructions: []instr.Instruction{{Op: instr.OpReturn, ReturnExpr: expr}}}, nil
}

// numberToken converts a tokInt/tokFloat/tokUnitsNum into a Value literal.
func numberLiteral(t token) (value.Value, *serr.Error) {
	switch t.Kind {
	case tokInt:
		n := int64(0)
		for i := 0; i < len(t.Text); i++ {
			n = n*10 + int64(t.Text[i]-'0')
		}
		return value.Int(n), nil
	case tokFloat:
		f, err := parseFloatText(t.Text)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(f), nil
	case tokUnitsNum:
		f, err := parseFloatText(t.Text)
		if err != nil {
			return value.Value{}, err
		}
		u, ok := units.Parse(t.Unit)
		if !ok {
			return value.Value{}, serr.New(0, serr.KindParse, "unknown unit suffix %q at line %d", t.Unit, t.Line)
		}
		return value.Units(f, u), nil
	default:
		return value.Value{}, serr.New(0, serr.KindParse, "not a number token at line %d", t.Line)
	}
}

func parseFloatText(s string) (float64, *serr.Error) {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	whole := 0.0
	i := 0
	for ; i < len(s) && s[i] != '.'; i++ {
		whole = whole*10 + float64(s[i]-'0')
	}
	if i < len(s) && s[i] == '.' {
		i++
		frac := 0.0
		div := 1.0
		for ; i < len(s); i++ {
			frac = frac*10 + float64(s[i]-'0')
			div *= 10
		}
		whole += frac / div
	}
	if neg {
		whole = -whole
	}
	return whole, nil
}
