// Package machine implements the register machine: its register file,
// byte-addressable memory, instruction encoding, and the fetch/decode/execute
// loop that consumes the bytes the assembler emits.
package machine

import "fmt"

// Register names the eight general-purpose slots of the machine. FLAGS must
// stay the last variant: RegisterCount is derived from it.
type Register byte

const (
	R0 Register = iota
	R1
	R2
	R3
	SP
	PC
	BP
	FLAGS
)

// RegisterCount is the number of addressable registers (0..7).
const RegisterCount = int(FLAGS) + 1

var registerNames = [RegisterCount]string{"r0", "r1", "r2", "r3", "sp", "pc", "bp", "flags"}

func (r Register) String() string {
	if int(r) < RegisterCount {
		return registerNames[r]
	}
	return fmt.Sprintf("reg(%d)", byte(r))
}

// LookupRegister returns the register named by the lower-case lexeme, or
// false if it does not name one. The match is exact, so callers lower-case
// the lexeme first.
func LookupRegister(lexeme string) (Register, bool) {
	for i, name := range registerNames {
		if name == lexeme {
			return Register(i), true
		}
	}
	return 0, false
}

// Valid reports whether r is one of the eight defined registers.
func (r Register) Valid() bool {
	return int(r) < RegisterCount
}
