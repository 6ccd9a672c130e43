package assembler

import (
	"fmt"

	"github.com/quietcore/rvm8/internal/machine"
	"github.com/quietcore/rvm8/internal/symtab"
	"github.com/quietcore/rvm8/internal/token"
)

// Result is the second pass's output: the entry byte offset and the emitted
// instruction sequence in order.
type Result struct {
	Entry        int32
	Instructions []machine.Instruction
}

// SecondPass reads the cleaned token stream, the directive table, and the
// (still-mutable) symbol table, and emits the instruction sequence,
// expanding macro invocations and substituting positional parameters along
// the way.
func SecondPass(tokens []token.Token, directives *Table, symbols *symtab.Table) (*Result, error) {
	entry, err := resolveEntry(directives, symbols)
	if err != nil {
		return nil, err
	}

	cursor := -entry
	insts, err := expandTokens(tokens, directives, symbols, &cursor, nil)
	if err != nil {
		return nil, err
	}
	return &Result{Entry: entry, Instructions: insts}, nil
}

func resolveEntry(directives *Table, symbols *symtab.Table) (int32, error) {
	entryDirID, ok := symbols.GetID(".entry")
	if !ok {
		return 0, nil
	}
	entries := directives.Entries(entryDirID)
	if len(entries) == 0 {
		return 0, nil
	}
	body := entries[0].Body
	if len(body) == 0 || body[0].Kind != token.LabelTok {
		return 0, fmt.Errorf(".entry must name a label")
	}
	sym, _ := symbols.GetSymbol(body[0].SymbolID)
	if sym.Value == nil {
		return 0, nil
	}
	return int32(*sym.Value), nil
}

// expandTokens runs the second pass over a token slice, recursing into
// macro bodies. cursor tracks the entry-relative instruction address and is
// shared across recursive calls so label declarations inside expanded macro
// bodies resolve correctly. visited guards against a macro that expands
// into itself, directly or transitively.
func expandTokens(tokens []token.Token, directives *Table, symbols *symtab.Table, cursor *int32, visited map[symtab.ID]bool) ([]machine.Instruction, error) {
	var out []machine.Instruction
	i := 0

	for i < len(tokens) {
		tok := tokens[i]
		switch tok.Kind {
		case token.Mnemonic:
			inst, next, err := readInstruction(tokens, i)
			if err != nil {
				return nil, err
			}
			out = append(out, inst)
			*cursor += 4
			i = next

		case token.LabelTok:
			if i+1 < len(tokens) && tokens[i+1].Kind == token.SemiTok {
				symbols.SetValue(tok.SymbolID, uint32(*cursor))
				i += 2
				continue
			}
			expanded, next, err := expandMacroInvocation(tokens, i, directives, symbols, cursor, visited)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			i = next

		case token.NewlineTok, token.CommentTok, token.SemiTok:
			i++

		default:
			return nil, fmt.Errorf("line %d: unsupported token %v in instruction position", tok.Line, tok.Kind)
		}
	}

	return out, nil
}

func expandMacroInvocation(tokens []token.Token, i int, directives *Table, symbols *symtab.Table, cursor *int32, visited map[symtab.ID]bool) ([]machine.Instruction, int, error) {
	tok := tokens[i]
	name, _ := symbols.GetSymbol(tok.SymbolID)
	macroDirID, ok := symbols.GetID(".macro")
	if !ok {
		return nil, i, machine.UnknownSymbolTrap(name.Name, tok.Line)
	}
	def, ok := directives.FindMacro(macroDirID, tok.SymbolID)
	if !ok {
		return nil, i, machine.UnknownSymbolTrap(name.Name, tok.Line)
	}

	if visited[tok.SymbolID] {
		return nil, i, machine.MacroCycleTrap(name.Name)
	}

	nargs := len(def.Parameters)
	if i+1+nargs > len(tokens) {
		return nil, i, fmt.Errorf("line %d: macro %q expects %d argument(s)", tok.Line, name.Name, nargs)
	}
	args := tokens[i+1 : i+1+nargs]

	body := substituteParams(def.Body, args)

	nextVisited := make(map[symtab.ID]bool, len(visited)+1)
	for k := range visited {
		nextVisited[k] = true
	}
	nextVisited[tok.SymbolID] = true

	expanded, err := expandTokens(body, directives, symbols, cursor, nextVisited)
	if err != nil {
		return nil, i, err
	}
	return expanded, i + 1 + nargs, nil
}

// substituteParams replaces every Param(k) token in body with args[k],
// leaving body itself untouched.
func substituteParams(body []token.Token, args []token.Token) []token.Token {
	out := make([]token.Token, len(body))
	for i, tok := range body {
		if tok.Kind == token.ParamTok && tok.ParamIndex >= 0 && tok.ParamIndex < len(args) {
			out[i] = args[tok.ParamIndex]
		} else {
			out[i] = tok
		}
	}
	return out
}

var arithKinds = map[token.Op]machine.InstructionKind{
	token.OpAdd: machine.InstAdd,
	token.OpSub: machine.InstSub,
	token.OpMul: machine.InstMul,
	token.OpDiv: machine.InstDiv,
}

// readInstruction reads one mnemonic's operands starting at tokens[i],
// returning the emitted Instruction and the index of the next unconsumed
// token.
func readInstruction(tokens []token.Token, i int) (machine.Instruction, int, error) {
	mnem := tokens[i]
	i++

	switch mnem.Op {
	case token.OpNop:
		return machine.NewNop(), i, nil

	case token.OpAdd, token.OpSub, token.OpMul, token.OpDiv:
		rd, i, err := expectRegister(tokens, i)
		if err != nil {
			return machine.Instruction{}, i, err
		}
		i, err = expectComma(tokens, i)
		if err != nil {
			return machine.Instruction{}, i, err
		}
		rs, i, err := expectRegister(tokens, i)
		if err != nil {
			return machine.Instruction{}, i, err
		}
		i, err = expectComma(tokens, i)
		if err != nil {
			return machine.Instruction{}, i, err
		}
		op, i, err := readOperand(tokens, i)
		if err != nil {
			return machine.Instruction{}, i, err
		}
		return machine.NewArith(arithKinds[mnem.Op], rd, rs, op), i, nil

	case token.OpLdr:
		rd, i, err := expectRegister(tokens, i)
		if err != nil {
			return machine.Instruction{}, i, err
		}
		i, err = expectComma(tokens, i)
		if err != nil {
			return machine.Instruction{}, i, err
		}
		op, i, err := readOperand(tokens, i)
		if err != nil {
			return machine.Instruction{}, i, err
		}
		return machine.NewLdr(rd, op), i, nil

	case token.OpPush:
		op, i, err := readOperand(tokens, i)
		if err != nil {
			return machine.Instruction{}, i, err
		}
		return machine.NewPush(op), i, nil

	case token.OpPop:
		reg, i, err := expectRegister(tokens, i)
		if err != nil {
			return machine.Instruction{}, i, err
		}
		return machine.NewPop(machine.RegOperand(reg)), i, nil
	}

	return machine.Instruction{}, i, fmt.Errorf("line %d: unknown mnemonic", mnem.Line)
}

func readOperand(tokens []token.Token, i int) (machine.Operand, int, error) {
	if i >= len(tokens) {
		return machine.Operand{}, i, fmt.Errorf("unexpected end of input while reading an operand")
	}
	tok := tokens[i]
	switch tok.Kind {
	case token.RegisterTok:
		return machine.RegOperand(tok.Reg), i + 1, nil
	case token.ImmTok:
		return machine.ImmOperand(uint32(tok.Imm)), i + 1, nil
	default:
		return machine.Operand{}, i, fmt.Errorf("line %d: expected a register or immediate operand", tok.Line)
	}
}

func expectRegister(tokens []token.Token, i int) (machine.Register, int, error) {
	if i >= len(tokens) || tokens[i].Kind != token.RegisterTok {
		return 0, i, fmt.Errorf("line %d: expected a register operand", lineAt(tokens, i))
	}
	return tokens[i].Reg, i + 1, nil
}

func expectComma(tokens []token.Token, i int) (int, error) {
	if i >= len(tokens) || tokens[i].Kind != token.CommaTok {
		return i, fmt.Errorf("line %d: expected ','", lineAt(tokens, i))
	}
	return i + 1, nil
}

func lineAt(tokens []token.Token, i int) int {
	if i < len(tokens) {
		return tokens[i].Line
	}
	if len(tokens) > 0 {
		return tokens[len(tokens)-1].Line
	}
	return 0
}
