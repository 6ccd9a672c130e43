package assembler

import (
	"fmt"

	"github.com/quietcore/rvm8/internal/symtab"
	"github.com/quietcore/rvm8/internal/token"
)

// FirstPassError collects every Error token encountered during the first
// pass. The pass never short-circuits on the first error.
type FirstPassError struct {
	Errors []token.Token
}

func (e *FirstPassError) Error() string {
	return fmt.Sprintf("%d lexical error(s), first at line %d", len(e.Errors), e.Errors[0].Line)
}

// StructuralError reports a directive-shape problem the first pass cannot
// recover from (an unterminated .macro, a stray .endmacro, an unknown
// directive name).
type StructuralError struct {
	Line    int
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// FirstPass resolves label addresses into symbols and extracts directive
// bodies from tokens, returning the cleaned instruction-bearing token stream
// with all directive tokens removed.
func FirstPass(tokens []token.Token, symbols *symtab.Table) ([]token.Token, *Table, error) {
	var out []token.Token
	var errs []token.Token
	directives := NewTable()
	index := uint32(0)
	i := 0

	for i < len(tokens) {
		tok := tokens[i]
		switch tok.Kind {
		case token.Mnemonic:
			out = append(out, tok)
			index += 4
			i++

		case token.LabelTok:
			symbols.SetValue(tok.SymbolID, index)
			out = append(out, tok)
			i++

		case token.DirectiveTok:
			next, err := consumeDirective(tokens, i, symbols, directives)
			if err != nil {
				return nil, nil, err
			}
			i = next

		case token.ErrorTok:
			errs = append(errs, tok)
			index += 4
			i++

		default:
			out = append(out, tok)
			i++
		}
	}

	if len(errs) > 0 {
		return nil, nil, &FirstPassError{Errors: errs}
	}
	return out, directives, nil
}

// consumeDirective processes the directive token at tokens[i] and returns
// the index of the next unconsumed token.
func consumeDirective(tokens []token.Token, i int, symbols *symtab.Table, directives *Table) (int, error) {
	dirTok := tokens[i]
	sym, _ := symbols.GetSymbol(dirTok.SymbolID)

	switch sym.Name {
	case ".entry", ".section":
		i++
		var body []token.Token
		for i < len(tokens) {
			body = append(body, tokens[i])
			isNewline := tokens[i].Kind == token.NewlineTok
			i++
			if isNewline {
				break
			}
		}
		directives.Add(dirTok.SymbolID, Directive{Kind: GenericDirective, Body: body})
		return i, nil

	case ".macro":
		i++
		if i >= len(tokens) {
			return 0, &StructuralError{Line: dirTok.Line, Message: ".macro missing a name"}
		}
		name := tokens[i]
		i++

		var params []token.Token
		for i < len(tokens) && tokens[i].Kind != token.NewlineTok {
			params = append(params, tokens[i])
			i++
		}
		if i < len(tokens) {
			i++ // consume the header-line newline
		}

		var body []token.Token
		closed := false
		for i < len(tokens) {
			if tokens[i].Kind == token.DirectiveTok {
				s, _ := symbols.GetSymbol(tokens[i].SymbolID)
				if s.Name == ".endmacro" {
					i++
					closed = true
					break
				}
			}
			body = append(body, tokens[i])
			i++
		}
		if !closed {
			return 0, &StructuralError{Line: dirTok.Line, Message: fmt.Sprintf("unterminated .macro %q", name)}
		}
		for i < len(tokens) && tokens[i].Kind == token.NewlineTok {
			i++
		}

		directives.Add(dirTok.SymbolID, Directive{Kind: MacroDirective, Name: name, Parameters: params, Body: body})
		return i, nil

	case ".endmacro":
		return 0, &StructuralError{Line: dirTok.Line, Message: ".endmacro outside of a .macro block"}

	default:
		return 0, &StructuralError{Line: dirTok.Line, Message: fmt.Sprintf("unknown directive %q", sym.Name)}
	}
}
