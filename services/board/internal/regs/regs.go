// Package regs is the narrow register access capability every bring-up step
// goes through. The MCU build backs it with volatile MMIO; host builds and
// tests use fakereg.
package regs

// Bus loads and stores registers by absolute address. Most registers are
// word-wide; the 8-bit forms are for data registers whose access width is
// part of the protocol, such as a FIFO SPI data register.
type Bus interface {
	Load(addr uintptr) uint32
	Store(addr uintptr, v uint32)
	Load8(addr uintptr) uint8
	Store8(addr uintptr, v uint8)
}

// Block is a peripheral register block at a fixed base address.
type Block struct {
	bus  Bus
	base uintptr
}

func NewBlock(bus Bus, base uintptr) Block { return Block{bus: bus, base: base} }

func (b Block) Base() uintptr { return b.base }
func (b Block) Bus() Bus      { return b.bus }

// Reg returns the register at base+off.
func (b Block) Reg(off uintptr) Reg { return Reg{bus: b.bus, addr: b.base + off} }

// Reg8 returns a byte-wide view of the register at base+off.
func (b Block) Reg8(off uintptr) Reg8 { return Reg8{bus: b.bus, addr: b.base + off} }

// Reg mirrors the method set of TinyGo's volatile.Register32 on top of Bus.
type Reg struct {
	bus  Bus
	addr uintptr
}

func (r Reg) Addr() uintptr         { return r.addr }
func (r Reg) Get() uint32           { return r.bus.Load(r.addr) }
func (r Reg) Set(v uint32)          { r.bus.Store(r.addr, v) }
func (r Reg) SetBits(m uint32)      { r.Set(r.Get() | m) }
func (r Reg) ClearBits(m uint32)    { r.Set(r.Get() &^ m) }
func (r Reg) HasBits(m uint32) bool { return r.Get()&m == m }

// ReplaceBits writes value into the field mask<<pos, leaving other bits.
func (r Reg) ReplaceBits(value, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | (value&mask)<<pos)
}

// Field reads the field mask<<pos.
func (r Reg) Field(mask uint32, pos uint8) uint32 {
	return (r.Get() >> pos) & mask
}

// Wait spins until the bits in mask read as want or spins runs out.
func (r Reg) Wait(mask, want uint32, spins int) bool {
	for i := 0; i < spins; i++ {
		if r.Get()&mask == want {
			return true
		}
	}
	return false
}

// Reg8 mirrors TinyGo's volatile.Register8: every access is a single byte.
type Reg8 struct {
	bus  Bus
	addr uintptr
}

func (r Reg8) Addr() uintptr { return r.addr }
func (r Reg8) Get() uint8    { return r.bus.Load8(r.addr) }
func (r Reg8) Set(v uint8)   { r.bus.Store8(r.addr, v) }
