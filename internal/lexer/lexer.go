// Package lexer turns assembler source text into a token stream, classifying
// identifiers into mnemonics, registers, labels, and directives.
package lexer

import (
	"strconv"
	"strings"

	"github.com/quietcore/rvm8/internal/machine"
	"github.com/quietcore/rvm8/internal/symtab"
	"github.com/quietcore/rvm8/internal/token"
)

// Lexer scans a source string into a token stream, interning identifiers
// into the shared symbol table as it goes.
type Lexer struct {
	input   string
	pos     int
	line    int
	symbols *symtab.Table
}

// New creates a Lexer over src that interns names into symbols.
func New(src string, symbols *symtab.Table) *Lexer {
	return &Lexer{input: src, pos: 0, line: 1, symbols: symbols}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.input) {
		return 0
	}
	return l.input[l.pos+off]
}

func (l *Lexer) advance() byte {
	ch := l.peek()
	l.pos++
	if ch == '\n' {
		l.line++
	}
	return ch
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isHexOrX(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') || ch == 'x' || ch == 'X'
}

func isSpaceNotNewline(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r'
}

// Tokenize scans the whole source, returning every token up to but not
// including the synthetic Eof token.
func (l *Lexer) Tokenize() []token.Token {
	var out []token.Token
	for {
		tok := l.next()
		if tok.Kind == token.EofTok {
			break
		}
		out = append(out, tok)
	}
	return out
}

func (l *Lexer) next() token.Token {
	for isSpaceNotNewline(l.peek()) {
		l.advance()
	}

	line := l.line
	ch := l.peek()

	switch {
	case ch == 0:
		return token.Token{Kind: token.EofTok, Line: line}

	case ch == '\n':
		l.advance()
		return token.Token{Kind: token.NewlineTok, Line: line}

	case ch == ',':
		l.advance()
		return token.Token{Kind: token.CommaTok, Line: line}

	case ch == ':':
		l.advance()
		return token.Token{Kind: token.SemiTok, Line: line}

	case ch == ';':
		for l.peek() != '\n' && l.peek() != 0 {
			l.advance()
		}
		return token.Token{Kind: token.CommentTok, Line: line}

	case ch == '#':
		return l.lexImmediate(line)

	case ch == '.':
		return l.lexDirective(line)

	case ch == '%':
		return l.lexParam(line)

	case isIdentStart(ch):
		return l.lexIdent(line)

	default:
		return l.lexError(line)
	}
}

func (l *Lexer) lexImmediate(line int) token.Token {
	l.advance() // '#'
	start := l.pos
	for isHexOrX(l.peek()) {
		l.advance()
	}
	lexeme := l.input[start:l.pos]

	body := lexeme
	base := 10
	if len(body) >= 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		body = body[2:]
		base = 16
	}

	if v, err := strconv.ParseInt(body, base, 8); err == nil {
		return token.Token{Kind: token.ImmTok, Line: line, Imm: int32(v)}
	}
	if v, err := strconv.ParseInt(body, base, 16); err == nil {
		return token.Token{Kind: token.ImmTok, Line: line, Imm: int32(v)}
	}
	if v, err := strconv.ParseInt(body, base, 32); err == nil {
		return token.Token{Kind: token.ImmTok, Line: line, Imm: int32(v)}
	}

	id := l.symbols.Insert("#"+lexeme, symtab.None, nil, line)
	return token.Token{Kind: token.ErrorTok, Line: line, SymbolID: id}
}

func (l *Lexer) lexIdent(line int) token.Token {
	start := l.pos
	for isIdentCont(l.peek()) {
		l.advance()
	}
	lexeme := l.input[start:l.pos]
	lower := strings.ToLower(lexeme)

	if reg, ok := machine.LookupRegister(lower); ok {
		return token.Token{Kind: token.RegisterTok, Line: line, Reg: reg}
	}
	if op, ok := token.LookupMnemonic(lower); ok {
		return token.Token{Kind: token.Mnemonic, Line: line, Op: op}
	}

	id := l.symbols.Insert(lower, symtab.Label, nil, line)
	return token.Token{Kind: token.LabelTok, Line: line, SymbolID: id}
}

func (l *Lexer) lexDirective(line int) token.Token {
	l.advance() // '.'
	start := l.pos
	for isIdentCont(l.peek()) {
		l.advance()
	}
	lexeme := "." + strings.ToLower(l.input[start:l.pos])
	id := l.symbols.Insert(lexeme, symtab.Directive, nil, line)
	return token.Token{Kind: token.DirectiveTok, Line: line, SymbolID: id}
}

func (l *Lexer) lexParam(line int) token.Token {
	l.advance() // '%'
	start := l.pos
	for l.peek() >= '0' && l.peek() <= '9' {
		l.advance()
	}
	digits := l.input[start:l.pos]
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		id := l.symbols.Insert("%"+digits, symtab.None, nil, line)
		return token.Token{Kind: token.ErrorTok, Line: line, SymbolID: id}
	}
	return token.Token{Kind: token.ParamTok, Line: line, ParamIndex: n - 1}
}

func (l *Lexer) lexError(line int) token.Token {
	start := l.pos
	for {
		ch := l.peek()
		if ch == 0 || isSpaceNotNewline(ch) || ch == '\n' {
			break
		}
		l.advance()
	}
	if l.pos == start {
		l.advance() // guarantee forward progress
	}
	lexeme := l.input[start:l.pos]
	id := l.symbols.Insert(lexeme, symtab.None, nil, line)
	return token.Token{Kind: token.ErrorTok, Line: line, SymbolID: id}
}
