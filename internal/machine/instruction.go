package machine

// Opcode is the seven-bit operation selector carried in bits 30..24 of an
// encoded instruction word.
type Opcode byte

const (
	OpNop Opcode = 0x6f
	OpAdd Opcode = 0x10
	OpSub Opcode = 0x11
	OpMul Opcode = 0x12
	OpDiv Opcode = 0x13
	OpLdr Opcode = 0x30
	OpPush Opcode = 0x33
	OpPop  Opcode = 0x34
)

// OperandKind tags an Operand as carrying a register or an immediate. The
// tag is what occupies bit 31 of an encoded word (the "immediate flag").
type OperandKind byte

const (
	OperandRegister OperandKind = iota
	OperandImm
)

// Operand is either a Register reference or a 32-bit immediate.
type Operand struct {
	Kind OperandKind
	Reg  Register
	Imm  uint32
}

// RegOperand builds a register operand.
func RegOperand(r Register) Operand { return Operand{Kind: OperandRegister, Reg: r} }

// ImmOperand builds an immediate operand. The value is stored as the
// unsigned bit pattern the codec will pack into the word.
func ImmOperand(v uint32) Operand { return Operand{Kind: OperandImm, Imm: v} }

// IsImm reports whether the operand carries an immediate rather than a
// register reference.
func (o Operand) IsImm() bool { return o.Kind == OperandImm }

// InstructionKind tags the variant of the Instruction tagged union.
type InstructionKind int

const (
	InstNop InstructionKind = iota
	InstAdd
	InstSub
	InstMul
	InstDiv
	InstLdr
	InstPush
	InstPop
)

// Instruction is the tagged union the assembler emits and the VM executes.
// Only the fields relevant to Kind are meaningful.
type Instruction struct {
	Kind Kind
	Rd   Register
	Rs   Register
	Op   Operand
}

// Kind is an alias kept for readability at call sites (Instruction.Kind).
type Kind = InstructionKind

// NewArith builds an Add/Sub/Mul/Div instruction.
func NewArith(kind InstructionKind, rd, rs Register, op Operand) Instruction {
	return Instruction{Kind: kind, Rd: rd, Rs: rs, Op: op}
}

// NewLdr builds a Ldr instruction.
func NewLdr(rd Register, op Operand) Instruction {
	return Instruction{Kind: InstLdr, Rd: rd, Op: op}
}

// NewPush builds a Push instruction.
func NewPush(op Operand) Instruction {
	return Instruction{Kind: InstPush, Op: op}
}

// NewPop builds a Pop instruction. op must carry a register; a Pop with an
// immediate operand is not a legal Instruction value and is unreachable from
// the assembler.
func NewPop(op Operand) Instruction {
	return Instruction{Kind: InstPop, Op: op}
}

// NewNop builds the no-op instruction.
func NewNop() Instruction { return Instruction{Kind: InstNop} }

func (k InstructionKind) opcode() Opcode {
	switch k {
	case InstNop:
		return OpNop
	case InstAdd:
		return OpAdd
	case InstSub:
		return OpSub
	case InstMul:
		return OpMul
	case InstDiv:
		return OpDiv
	case InstLdr:
		return OpLdr
	case InstPush:
		return OpPush
	case InstPop:
		return OpPop
	}
	return OpNop
}
