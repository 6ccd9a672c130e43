package machine

// TraceEntry records one executed step: the PC it was fetched from, the
// decoded instruction, and the register file immediately after execution.
// Tracing never affects execution semantics; it exists for the ambient CLI
// and debugger layers.
type TraceEntry struct {
	PC          uint32
	Instruction Instruction
	Registers   [RegisterCount]uint32
}

// Tracer accumulates TraceEntry values produced by VM.Run. A nil Tracer is a
// zero-cost no-op.
type Tracer struct {
	Entries []TraceEntry
}

func (t *Tracer) record(pc uint32, inst Instruction, regs [RegisterCount]uint32) {
	if t == nil {
		return
	}
	t.Entries = append(t.Entries, TraceEntry{PC: pc, Instruction: inst, Registers: regs})
}

// VM is the register machine: its register file and memory, stepped one
// fetch/decode/execute cycle at a time.
type VM struct {
	Regs [RegisterCount]uint32
	Mem  *Memory
}

// NewVM creates a VM with the given memory capacity. PC starts at 0, SP at
// StackInit, per the data model.
func NewVM(memSize int) *VM {
	vm := &VM{Mem: NewMemory(memSize)}
	vm.Regs[SP] = StackInit
	return vm
}

// Load writes a program image into memory starting at address 0 and resets
// PC to the given entry offset.
func (vm *VM) Load(image []byte, entry uint32) *Trap {
	if trap := vm.Mem.LoadImage(image); trap != nil {
		return trap
	}
	vm.Regs[PC] = entry
	return nil
}

func (vm *VM) value(op Operand) (uint32, *Trap) {
	if op.IsImm() {
		return op.Imm, nil
	}
	if !op.Reg.Valid() {
		return 0, invalidReg(byte(op.Reg))
	}
	return vm.Regs[op.Reg], nil
}

// Step fetches, decodes, and executes a single instruction, returning the
// decoded instruction and any trap raised during decode or execution.
func (vm *VM) Step() (Instruction, *Trap) {
	word, trap := vm.Mem.Read32(vm.Regs[PC])
	if trap != nil {
		return Instruction{}, trap
	}
	vm.Regs[PC] += 4

	inst, trap := Decode(word)
	if trap != nil {
		return inst, trap
	}

	if trap := vm.execute(inst); trap != nil {
		return inst, trap
	}
	return inst, nil
}

func (vm *VM) execute(inst Instruction) *Trap {
	switch inst.Kind {
	case InstNop:
		return nil

	case InstAdd, InstSub, InstMul, InstDiv:
		v, trap := vm.value(inst.Op)
		if trap != nil {
			return trap
		}
		if !inst.Rd.Valid() {
			return invalidReg(byte(inst.Rd))
		}
		if !inst.Rs.Valid() {
			return invalidReg(byte(inst.Rs))
		}
		rs := vm.Regs[inst.Rs]
		var result uint32
		switch inst.Kind {
		case InstAdd:
			result = rs + v
		case InstSub:
			result = rs - v
		case InstMul:
			result = rs * v
		case InstDiv:
			if v == 0 {
				return divisionByZero()
			}
			result = rs / v
		}
		vm.Regs[inst.Rd] = result
		return nil

	case InstLdr:
		if !inst.Rd.Valid() {
			return invalidReg(byte(inst.Rd))
		}
		if inst.Op.IsImm() {
			vm.Regs[inst.Rd] = inst.Op.Imm
			return nil
		}
		if !inst.Op.Reg.Valid() {
			return invalidReg(byte(inst.Op.Reg))
		}
		v, trap := vm.Mem.Read32(vm.Regs[inst.Op.Reg])
		if trap != nil {
			return trap
		}
		vm.Regs[inst.Rd] = v
		return nil

	case InstPush:
		v, trap := vm.value(inst.Op)
		if trap != nil {
			return trap
		}
		vm.Regs[SP] -= 4
		return vm.Mem.Write32(vm.Regs[SP], v)

	case InstPop:
		if inst.Op.IsImm() || !inst.Op.Reg.Valid() {
			return invalidReg(byte(inst.Op.Reg))
		}
		v, trap := vm.Mem.Read32(vm.Regs[SP])
		if trap != nil {
			return trap
		}
		vm.Regs[SP] += 4
		vm.Regs[inst.Op.Reg] = v
		return nil
	}
	return nil
}

// Run repeatedly steps the VM, recording into tracer (if non-nil), until a
// trap is returned. maxSteps bounds runaway programs; 0 means unbounded.
func (vm *VM) Run(tracer *Tracer, maxSteps uint64) *Trap {
	for steps := uint64(0); maxSteps == 0 || steps < maxSteps; steps++ {
		pc := vm.Regs[PC]
		inst, trap := vm.Step()
		if trap != nil {
			return trap
		}
		tracer.record(pc, inst, vm.Regs)
	}
	return nil
}
