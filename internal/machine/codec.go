package machine

// Word layout, MSB first:
//
//	 31    30..24     23..19  18..14  13..9   8..0
//	[imm]  [opcode7]  [rd5]   [rs5]   [rm5]   [pad]
//
// Arithmetic ops carry rd, rs, and either rm (imm=0) or a 14-bit immediate in
// bits 13..0 (imm=1). Ldr carries rd and either rm in 18..14 (imm=0) or a
// 19-bit immediate in bits 18..0 (imm=1). Push/Pop carry either rd in 23..19
// (imm=0) or a 24-bit immediate in bits 23..0 (imm=1). Nop is opcode-only.
const (
	immFlag    = uint32(1) << 31
	opcodeMask = uint32(0x7f)
	reg5Mask   = uint32(0x1f)
	imm14Mask  = uint32(0x3fff)
	imm19Mask  = uint32(0x7ffff)
	imm24Mask  = uint32(0xffffff)
)

func opcodeToKind(op Opcode) InstructionKind {
	switch op {
	case OpAdd:
		return InstAdd
	case OpSub:
		return InstSub
	case OpMul:
		return InstMul
	case OpDiv:
		return InstDiv
	}
	return InstNop
}

// Encode packs an Instruction into its 32-bit word representation.
func Encode(i Instruction) uint32 {
	word := uint32(i.Kind.opcode()&Opcode(opcodeMask)) << 24

	switch i.Kind {
	case InstNop:
		return word

	case InstAdd, InstSub, InstMul, InstDiv:
		word |= (uint32(i.Rd) & reg5Mask) << 19
		word |= (uint32(i.Rs) & reg5Mask) << 14
		if i.Op.IsImm() {
			word |= immFlag
			word |= i.Op.Imm & imm14Mask
		} else {
			word |= (uint32(i.Op.Reg) & reg5Mask) << 9
		}
		return word

	case InstLdr:
		word |= (uint32(i.Rd) & reg5Mask) << 19
		if i.Op.IsImm() {
			word |= immFlag
			word |= i.Op.Imm & imm19Mask
		} else {
			word |= (uint32(i.Op.Reg) & reg5Mask) << 14
		}
		return word

	case InstPush, InstPop:
		if i.Op.IsImm() {
			word |= immFlag
			word |= i.Op.Imm & imm24Mask
		} else {
			word |= (uint32(i.Op.Reg) & reg5Mask) << 19
		}
		return word
	}

	return word
}

// Decode unpacks a 32-bit word into an Instruction, or traps on an unknown
// opcode byte or an out-of-range register index.
func Decode(word uint32) (Instruction, *Trap) {
	imm := word&immFlag != 0
	opByte := byte((word >> 24) & opcodeMask)

	switch Opcode(opByte) {
	case OpNop:
		return NewNop(), nil

	case OpAdd, OpSub, OpMul, OpDiv:
		rdByte := byte((word >> 19) & reg5Mask)
		rsByte := byte((word >> 14) & reg5Mask)
		rd, rs := Register(rdByte), Register(rsByte)
		if !rd.Valid() {
			return Instruction{}, invalidReg(rdByte)
		}
		if !rs.Valid() {
			return Instruction{}, invalidReg(rsByte)
		}
		var op Operand
		if imm {
			op = ImmOperand(word & imm14Mask)
		} else {
			rmByte := byte((word >> 9) & reg5Mask)
			rm := Register(rmByte)
			if !rm.Valid() {
				return Instruction{}, invalidReg(rmByte)
			}
			op = RegOperand(rm)
		}
		return NewArith(opcodeToKind(Opcode(opByte)), rd, rs, op), nil

	case OpLdr:
		rdByte := byte((word >> 19) & reg5Mask)
		rd := Register(rdByte)
		if !rd.Valid() {
			return Instruction{}, invalidReg(rdByte)
		}
		var op Operand
		if imm {
			op = ImmOperand(word & imm19Mask)
		} else {
			rmByte := byte((word >> 14) & reg5Mask)
			rm := Register(rmByte)
			if !rm.Valid() {
				return Instruction{}, invalidReg(rmByte)
			}
			op = RegOperand(rm)
		}
		return NewLdr(rd, op), nil

	case OpPush, OpPop:
		var op Operand
		if imm {
			op = ImmOperand(word & imm24Mask)
		} else {
			rdByte := byte((word >> 19) & reg5Mask)
			rd := Register(rdByte)
			if !rd.Valid() {
				return Instruction{}, invalidReg(rdByte)
			}
			op = RegOperand(rd)
		}
		if Opcode(opByte) == OpPush {
			return NewPush(op), nil
		}
		return NewPop(op), nil

	default:
		return Instruction{}, invalidOp(opByte)
	}
}
