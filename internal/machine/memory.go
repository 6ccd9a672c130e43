package machine

// MinMemorySize is the smallest capacity a Memory may be constructed with.
const MinMemorySize = 10 * 1024

// StackInit is the initial value of SP: the stack grows down from here.
const StackInit uint32 = 0x400

// Memory is the machine's linear, byte-addressable store. Any read or write
// outside the backing capacity traps with InvalidMemoryAccess.
type Memory struct {
	bytes []byte
}

// NewMemory allocates a zeroed memory of the given size, rounded up to
// MinMemorySize.
func NewMemory(size int) *Memory {
	if size < MinMemorySize {
		size = MinMemorySize
	}
	return &Memory{bytes: make([]byte, size)}
}

// Len returns the memory's capacity in bytes.
func (m *Memory) Len() int { return len(m.bytes) }

// ReadByte reads a single byte at addr.
func (m *Memory) ReadByte(addr uint32) (byte, *Trap) {
	if int(addr) >= len(m.bytes) {
		return 0, invalidMemoryAccess(addr)
	}
	return m.bytes[addr], nil
}

// WriteByte writes a single byte at addr.
func (m *Memory) WriteByte(addr uint32, v byte) *Trap {
	if int(addr) >= len(m.bytes) {
		return invalidMemoryAccess(addr)
	}
	m.bytes[addr] = v
	return nil
}

// Read16 reads a little-endian 16-bit word starting at addr.
func (m *Memory) Read16(addr uint32) (uint16, *Trap) {
	lo, trap := m.ReadByte(addr)
	if trap != nil {
		return 0, trap
	}
	hi, trap := m.ReadByte(addr + 1)
	if trap != nil {
		return 0, trap
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// Write16 writes a little-endian 16-bit word starting at addr.
func (m *Memory) Write16(addr uint32, v uint16) *Trap {
	if trap := m.WriteByte(addr, byte(v)); trap != nil {
		return trap
	}
	return m.WriteByte(addr+1, byte(v>>8))
}

// Read32 reads a little-endian 32-bit word starting at addr.
func (m *Memory) Read32(addr uint32) (uint32, *Trap) {
	lo, trap := m.Read16(addr)
	if trap != nil {
		return 0, trap
	}
	hi, trap := m.Read16(addr + 2)
	if trap != nil {
		return 0, trap
	}
	return uint32(lo) | uint32(hi)<<16, nil
}

// Write32 writes a little-endian 32-bit word starting at addr.
func (m *Memory) Write32(addr uint32, v uint32) *Trap {
	if trap := m.Write16(addr, uint16(v)); trap != nil {
		return trap
	}
	return m.Write16(addr+2, uint16(v>>16))
}

// LoadImage copies program bytes into memory starting at address 0.
func (m *Memory) LoadImage(image []byte) *Trap {
	for i, b := range image {
		if trap := m.WriteByte(uint32(i), b); trap != nil {
			return trap
		}
	}
	return nil
}

// Copy copies n bytes from `from` to `to`, byte-by-byte in ascending order.
// Overlap with to > from is not supported, matching the naive semantics the
// rest of the core relies on.
func (m *Memory) Copy(from, to uint32, n uint32) *Trap {
	for i := uint32(0); i < n; i++ {
		b, trap := m.ReadByte(from + i)
		if trap != nil {
			return trap
		}
		if trap := m.WriteByte(to+i, b); trap != nil {
			return trap
		}
	}
	return nil
}
