// Package fakereg is a recording register file for host tests and tools.
package fakereg

import (
	"sort"
	"strconv"
)

// Write is one recorded store. Width is the access size in bits, 8 or 32.
type Write struct {
	Addr  uintptr
	Value uint32
	Width uint8
}

type access struct {
	addr  uintptr
	width uint8
}

// Fake implements regs.Bus over a sparse map. Every Store is appended to
// Writes; Poke changes state without recording (the "hardware" side).
type Fake struct {
	vals    map[uintptr]uint32
	forced  map[uintptr]uint32
	onStore map[uintptr]func(f *Fake, v uint32)
	onLoad  map[uintptr]func(f *Fake)
	names   map[uintptr]string
	loads   map[access]int

	Writes []Write
}

func New() *Fake {
	return &Fake{
		vals:    make(map[uintptr]uint32),
		forced:  make(map[uintptr]uint32),
		onStore: make(map[uintptr]func(*Fake, uint32)),
		onLoad:  make(map[uintptr]func(*Fake)),
		names:   make(map[uintptr]string),
		loads:   make(map[access]int),
	}
}

func (f *Fake) Load(addr uintptr) uint32 { return f.load(addr, 32) }

func (f *Fake) Store(addr uintptr, v uint32) {
	f.vals[addr] = v
	f.store(addr, v, 32)
}

// Load8 reads the low byte of addr.
func (f *Fake) Load8(addr uintptr) uint8 { return uint8(f.load(addr, 8)) }

// Store8 replaces the low byte of addr, leaving the rest of the stored value.
func (f *Fake) Store8(addr uintptr, v uint8) {
	f.vals[addr] = f.vals[addr]&^0xFF | uint32(v)
	f.store(addr, uint32(v), 8)
}

func (f *Fake) load(addr uintptr, width uint8) uint32 {
	v := f.vals[addr] | f.forced[addr]
	f.loads[access{addr, width}]++
	if h := f.onLoad[addr]; h != nil {
		h(f)
	}
	return v
}

func (f *Fake) store(addr uintptr, v uint32, width uint8) {
	f.Writes = append(f.Writes, Write{Addr: addr, Value: v, Width: width})
	if h := f.onStore[addr]; h != nil {
		h(f, v)
	}
}

// Loads returns how many reads of the given width (8 or 32) addr has seen.
func (f *Fake) Loads(addr uintptr, width uint8) int { return f.loads[access{addr, width}] }

// Widths returns the access width of each store to addr, in order.
func (f *Fake) Widths(addr uintptr) []uint8 {
	var out []uint8
	for _, w := range f.Writes {
		if w.Addr == addr {
			out = append(out, w.Width)
		}
	}
	return out
}

// Peek returns the stored value without forced bits or hooks.
func (f *Fake) Peek(addr uintptr) uint32 { return f.vals[addr] }

// Poke sets a register as the hardware would, without recording a write.
func (f *Fake) Poke(addr uintptr, v uint32) { f.vals[addr] = v }

// Force makes mask read as set at addr regardless of stored value.
func (f *Fake) Force(addr uintptr, mask uint32) { f.forced[addr] |= mask }

// Unforce drops forced bits.
func (f *Fake) Unforce(addr uintptr, mask uint32) { f.forced[addr] &^= mask }

// OnStore runs h after every store to addr.
func (f *Fake) OnStore(addr uintptr, h func(f *Fake, v uint32)) { f.onStore[addr] = h }

// OnLoad runs h after every load from addr (the returned value is taken first).
func (f *Fake) OnLoad(addr uintptr, h func(f *Fake)) { f.onLoad[addr] = h }

// Name labels addr in traces.
func (f *Fake) Name(addr uintptr, name string) { f.names[addr] = name }

// NameOf returns the label for addr, or its hex address.
func (f *Fake) NameOf(addr uintptr) string {
	if n, ok := f.names[addr]; ok {
		return n
	}
	return "0x" + strconv.FormatUint(uint64(addr), 16)
}

// Reset clears the write log and load counts, keeping register state.
func (f *Fake) Reset() {
	f.Writes = f.Writes[:0]
	clear(f.loads)
}

// WritesTo returns the values stored to addr, in order.
func (f *Fake) WritesTo(addr uintptr) []uint32 {
	var out []uint32
	for _, w := range f.Writes {
		if w.Addr == addr {
			out = append(out, w.Value)
		}
	}
	return out
}

// Index returns the position of the first write to addr for which match
// holds, or -1.
func (f *Fake) Index(addr uintptr, match func(v uint32) bool) int {
	for i, w := range f.Writes {
		if w.Addr == addr && (match == nil || match(w.Value)) {
			return i
		}
	}
	return -1
}

// Touched returns the distinct addresses written, sorted.
func (f *Fake) Touched() []uintptr {
	seen := make(map[uintptr]bool)
	var out []uintptr
	for _, w := range f.Writes {
		if !seen[w.Addr] {
			seen[w.Addr] = true
			out = append(out, w.Addr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Trace renders the write log as "NAME <- 0x%08x" lines; byte stores show
// two digits.
func (f *Fake) Trace() []string {
	out := make([]string, 0, len(f.Writes))
	for _, w := range f.Writes {
		digits := 8
		if w.Width == 8 {
			digits = 2
		}
		out = append(out, f.NameOf(w.Addr)+" <- "+hex(w.Value, digits))
	}
	return out
}

func hex(v uint32, digits int) string {
	s := strconv.FormatUint(uint64(v), 16)
	for len(s) < digits {
		s = "0" + s
	}
	return "0x" + s
}
