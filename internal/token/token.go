// Package token defines the lexical tokens produced by the lexer and
// consumed by the assembler's two passes.
package token

import (
	"fmt"

	"github.com/quietcore/rvm8/internal/machine"
	"github.com/quietcore/rvm8/internal/symtab"
)

// Kind tags the variant of a Token.
type Kind int

const (
	Mnemonic Kind = iota
	RegisterTok
	ImmTok
	LabelTok
	DirectiveTok
	ErrorTok
	ParamTok
	CommentTok
	CommaTok
	SemiTok
	NewlineTok
	EofTok
)

func (k Kind) String() string {
	switch k {
	case Mnemonic:
		return "Mnemonic"
	case RegisterTok:
		return "Register"
	case ImmTok:
		return "Imm"
	case LabelTok:
		return "Label"
	case DirectiveTok:
		return "Directive"
	case ErrorTok:
		return "Error"
	case ParamTok:
		return "Param"
	case CommentTok:
		return "Comment"
	case CommaTok:
		return "Comma"
	case SemiTok:
		return "Semi"
	case NewlineTok:
		return "Newline"
	case EofTok:
		return "Eof"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is one lexical unit. Only the fields relevant to Kind are
// meaningful:
//
//	Mnemonic    -> Op
//	RegisterTok -> Reg
//	ImmTok      -> Imm
//	LabelTok    -> SymbolID
//	DirectiveTok -> SymbolID
//	ErrorTok    -> SymbolID (interned error lexeme)
//	ParamTok    -> ParamIndex
type Token struct {
	Kind       Kind
	Line       int
	Op         Op
	Reg        machine.Register
	Imm        int32
	SymbolID   symtab.ID
	ParamIndex int
}

// Op names an instruction mnemonic.
type Op int

const (
	OpNop Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpLdr
	OpPush
	OpPop
)

var mnemonics = map[string]Op{
	"nop":  OpNop,
	"add":  OpAdd,
	"sub":  OpSub,
	"mul":  OpMul,
	"div":  OpDiv,
	"ldr":  OpLdr,
	"push": OpPush,
	"pop":  OpPop,
}

// LookupMnemonic returns the Op named by the case-normalized lexeme.
func LookupMnemonic(lexeme string) (Op, bool) {
	op, ok := mnemonics[lexeme]
	return op, ok
}

func (o Op) String() string {
	for name, op := range mnemonics {
		if op == o {
			return name
		}
	}
	return "nop"
}

// Opcode returns the machine opcode for the mnemonic.
func (o Op) Opcode() machine.Opcode {
	switch o {
	case OpNop:
		return machine.OpNop
	case OpAdd:
		return machine.OpAdd
	case OpSub:
		return machine.OpSub
	case OpMul:
		return machine.OpMul
	case OpDiv:
		return machine.OpDiv
	case OpLdr:
		return machine.OpLdr
	case OpPush:
		return machine.OpPush
	case OpPop:
		return machine.OpPop
	}
	return machine.OpNop
}
