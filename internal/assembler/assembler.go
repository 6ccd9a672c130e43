// Package assembler implements the two-pass symbolic assembler: label and
// macro resolution in the first pass, instruction emission and macro
// expansion in the second.
package assembler

import (
	"github.com/quietcore/rvm8/internal/lexer"
	"github.com/quietcore/rvm8/internal/machine"
	"github.com/quietcore/rvm8/internal/symtab"
)

// Program is a fully assembled image: the entry byte offset and the raw
// little-endian instruction bytes, ready to be loaded into VM memory.
type Program struct {
	Entry int32
	Image []byte
}

// Assemble runs the full pipeline — lex, first pass, second pass, encode —
// over src and returns the emitted byte stream.
func Assemble(src string) (*Program, error) {
	symbols := symtab.New()
	toks := lexer.New(src, symbols).Tokenize()

	cleaned, directives, err := FirstPass(toks, symbols)
	if err != nil {
		return nil, err
	}

	result, err := SecondPass(cleaned, directives, symbols)
	if err != nil {
		return nil, err
	}

	return &Program{Entry: result.Entry, Image: EncodeImage(result.Instructions)}, nil
}

// EncodeImage serializes a sequence of instructions into a little-endian
// byte stream, 4 bytes per instruction, in emission order.
func EncodeImage(insts []machine.Instruction) []byte {
	image := make([]byte, 0, len(insts)*4)
	for _, inst := range insts {
		word := machine.Encode(inst)
		image = append(image, byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
	}
	return image
}
