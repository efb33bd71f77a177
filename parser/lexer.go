// Package parser implements Stof's hand-written lexer and recursive-
// descent parser (spec §4.6), compiling source text directly into an
// instr.Stream -- no separate AST pass, matching original_source's own
// single-pass Pest-grammar-driven parser.rs (parse as you walk parse
// tree nodes straight into instruction pushes) translated from a
// grammar-driven walk into a hand-rolled recursive-descent walk, since Go
// has no idiomatic equivalent of the pest crate in this example pack.
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	serr "stof/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokUnitsNum // number immediately followed by a unit suffix, e.g. 5km
	tokString
	tokSymbol // punctuation/operator, exact text in Text
	tokKeyword
)

type token struct {
	Kind tokenKind
	Text string
	Unit string // set only for tokUnitsNum
	Line int
}

var keywords = map[string]bool{
	"let": true, "const": true, "fn": true, "if": true, "else": true,
	"while": true, "for": true, "in": true, "try": true, "catch": true,
	"return": true, "break": true, "continue": true, "new": true,
	"true": true, "false": true, "null": true, "void": true, "self": true,
	"super": true, "type": true, "import": true, "as": true, "async": true,
	"spawn": true, "await": true, "switch": true, "case": true,
	"default": true, "extends": true,
}

// Lexer tokenizes Stof source text one token at a time.
type Lexer struct {
	src  string
	pos  int
	line int
}

func NewLexer(src string) *Lexer { return &Lexer{src: src, line: 1} }

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
	}
	return b
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.peekByte()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			l.advance()
			continue
		}
		if c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
			continue
		}
		if c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*' {
			l.advance()
			l.advance()
			for l.pos < len(l.src) && !(l.peekByte() == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/') {
				l.advance()
			}
			if l.pos < len(l.src) {
				l.advance()
				l.advance()
			}
			continue
		}
		break
	}
}

// Next returns the next token, consuming it.
func (l *Lexer) Next() (token, *serr.Error) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return token{Kind: tokEOF, Line: l.line}, nil
	}
	line := l.line
	c := l.peekByte()

	if c == '"' || c == '\'' {
		return l.lexString(c, line)
	}
	if isDigit(c) {
		return l.lexNumber(line)
	}
	if isIdentStart(c) {
		return l.lexIdent(line)
	}
	return l.lexSymbol(line)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isIdentStart(b byte) bool {
	r, _ := utf8.DecodeRune([]byte{b})
	return unicode.IsLetter(r) || b == '_'
}
func isIdentCont(b byte) bool {
	r, _ := utf8.DecodeRune([]byte{b})
	return unicode.IsLetter(r) || unicode.IsDigit(r) || b == '_'
}

func (l *Lexer) lexString(quote byte, line int) (token, *serr.Error) {
	l.advance()
	var b strings.Builder
	for l.pos < len(l.src) && l.peekByte() != quote {
		c := l.advance()
		if c == '\\' && l.pos < len(l.src) {
			esc := l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '"', '\'':
				b.WriteByte(esc)
			default:
				b.WriteByte(esc)
			}
			continue
		}
		b.WriteByte(c)
	}
	if l.pos >= len(l.src) {
		return token{}, serr.New(0, serr.KindParse, "unterminated string literal at line %d", line)
	}
	l.advance() // closing quote
	return token{Kind: tokString, Text: b.String(), Line: line}, nil
}

func (l *Lexer) lexNumber(line int) (token, *serr.Error) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peekByte()) {
		l.advance()
	}
	isFloat := false
	if l.peekByte() == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		isFloat = true
		l.advance()
		for l.pos < len(l.src) && isDigit(l.peekByte()) {
			l.advance()
		}
	}
	numText := l.src[start:l.pos]

	unitStart := l.pos
	for l.pos < len(l.src) && isIdentCont(l.peekByte()) {
		l.advance()
	}
	unit := l.src[unitStart:l.pos]

	if unit != "" {
		return token{Kind: tokUnitsNum, Text: numText, Unit: unit, Line: line}, nil
	}
	if isFloat {
		return token{Kind: tokFloat, Text: numText, Line: line}, nil
	}
	return token{Kind: tokInt, Text: numText, Line: line}, nil
}

func (l *Lexer) lexIdent(line int) (token, *serr.Error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.peekByte()) {
		l.advance()
	}
	text := l.src[start:l.pos]
	if keywords[text] {
		return token{Kind: tokKeyword, Text: text, Line: line}, nil
	}
	return token{Kind: tokIdent, Text: text, Line: line}, nil
}

var multiCharSymbols = []string{
	"==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=", "%=",
	"->", "=>", "..", "::",
}

func (l *Lexer) lexSymbol(line int) (token, *serr.Error) {
	for _, sym := range multiCharSymbols {
		if strings.HasPrefix(l.src[l.pos:], sym) {
			l.pos += len(sym)
			return token{Kind: tokSymbol, Text: sym, Line: line}, nil
		}
	}
	c := l.advance()
	return token{Kind: tokSymbol, Text: string(c), Line: line}, nil
}
