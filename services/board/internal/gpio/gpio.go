// Package gpio splits a port into pins and commits each pin to one mode.
//
// A pin's mode is its type parameter. Changing mode consumes the pin and
// returns a new value; the consumed value fails every later call with
// errcode.PinConsumed. All register writes touch the changed pin's fields
// only.
package gpio

import (
	"strconv"

	"bringup-go/errcode"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/rcc"
	"bringup-go/services/board/internal/regs"
)

const (
	modeInput  = pac.GPIO_MODE_INPUT
	modeOutput = pac.GPIO_MODE_OUTPUT
	modeAF     = pac.GPIO_MODE_AF
	modeAnalog = pac.GPIO_MODE_ANALOG
)

// Parts is a split GPIO port. Each pin can be taken once.
type Parts struct {
	port  byte
	taken uint16

	moder, otyper, pupdr regs.Reg
	afrl, afrh           regs.Reg
	idr, odr, bsrr       regs.Reg
}

// Split enables the port clock and returns its pin set.
func Split(p pac.GPIOPort, g *rcc.Gates) *Parts {
	g.Enable(p)
	b := p.Regs()
	return &Parts{
		port:   p.Port(),
		moder:  b.Reg(pac.GPIO_MODER),
		otyper: b.Reg(pac.GPIO_OTYPER),
		pupdr:  b.Reg(pac.GPIO_PUPDR),
		afrl:   b.Reg(pac.GPIO_AFRL),
		afrh:   b.Reg(pac.GPIO_AFRH),
		idr:    b.Reg(pac.GPIO_IDR),
		odr:    b.Reg(pac.GPIO_ODR),
		bsrr:   b.Reg(pac.GPIO_BSRR),
	}
}

// Port returns the port letter.
func (ps *Parts) Port() byte { return ps.port }

// Take hands out pin n in its reset state.
func (ps *Parts) Take(n uint8) (*Pin[Reset], error) {
	id := pac.PinID{Port: ps.port, N: n}
	if n > 15 {
		return nil, errcode.New(errcode.InvalidPin, "gpio.take", id.String()+" does not exist")
	}
	if ps.taken&(1<<n) != 0 {
		return nil, errcode.New(errcode.PinInUse, "gpio.take", id.String()+" already taken")
	}
	ps.taken |= 1 << n
	return &Pin[Reset]{parts: ps, n: n}, nil
}

// Pin is one pin committed to mode M.
type Pin[M Mode] struct {
	parts *Parts
	n     uint8
	gone  bool
}

// ID returns the physical pin name.
func (p *Pin[M]) ID() pac.PinID { return pac.PinID{Port: p.parts.port, N: p.n} }

// Mode names the committed mode, e.g. "af4-od".
func (p *Pin[M]) Mode() string {
	var m M
	return m.spec().name
}

// AltFunc returns the alternate-function number, or 0 for non-AF modes.
func (p *Pin[M]) AltFunc() uint8 {
	var m M
	return m.spec().af
}

// Check fails with PinConsumed once p has been moved or reassigned.
func (p *Pin[M]) Check() error {
	if p == nil || p.gone {
		return errcode.New(errcode.PinConsumed, "gpio", "pin value already consumed")
	}
	return nil
}

// Move transfers ownership of the pin to the returned value without
// touching hardware. Binders use it to take the pins they are built from.
func (p *Pin[M]) Move() (*Pin[M], error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	p.gone = true
	return &Pin[M]{parts: p.parts, n: p.n}, nil
}

// Claim moves every pin in one step: either all of them change owner or
// none does. Passing the same pin twice is rejected with PinInUse.
func Claim[M Mode](pins ...*Pin[M]) ([]*Pin[M], error) {
	for i, p := range pins {
		if err := p.Check(); err != nil {
			return nil, err
		}
		for _, q := range pins[:i] {
			if q == p {
				return nil, errcode.New(errcode.PinInUse, "gpio", p.ID().String()+" passed twice")
			}
		}
	}
	out := make([]*Pin[M], len(pins))
	for i, p := range pins {
		p.gone = true
		out[i] = &Pin[M]{parts: p.parts, n: p.n}
	}
	return out, nil
}

func (p *Pin[M]) IntoPushPullOutput() (*Pin[PushPull], error) {
	return into[PushPull](p, PullNone)
}

func (p *Pin[M]) IntoOpenDrainOutput() (*Pin[OpenDrain], error) {
	return into[OpenDrain](p, PullNone)
}

func (p *Pin[M]) IntoInput(pull Pull) (*Pin[Input], error) {
	return into[Input](p, pull)
}

func (p *Pin[M]) IntoAnalog() (*Pin[Analog], error) {
	return into[Analog](p, PullNone)
}

// IntoAlternate routes p to alternate function F with a push-pull stage.
func IntoAlternate[F AltFunc, M Mode](p *Pin[M]) (*Pin[Alternate[F]], error) {
	return into[Alternate[F]](p, PullNone)
}

// IntoAlternateOpenDrain routes p to alternate function F with an
// open-drain stage.
func IntoAlternateOpenDrain[F AltFunc, M Mode](p *Pin[M]) (*Pin[AlternateOD[F]], error) {
	return into[AlternateOD[F]](p, PullNone)
}

// into validates the transition, consumes p and writes the pin's fields.
// MODER goes last: the function select and output stage must be in place
// before the pin starts driving.
func into[N Mode, M Mode](p *Pin[M], pull Pull) (*Pin[N], error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	var next N
	s := next.spec()
	if s.alt && !pac.AltFuncLegal(p.ID(), s.af) {
		return nil, errcode.New(errcode.InvalidAltFunc, "gpio.mux",
			"AF"+strconv.Itoa(int(s.af))+" not available on "+p.ID().String()+
				" (has "+afList(pac.LegalAltFuncs(p.ID()))+")")
	}
	p.gone = true

	ps, n := p.parts, p.n
	if s.alt {
		if n < 8 {
			ps.afrl.ReplaceBits(uint32(s.af), 0xF, n*4)
		} else {
			ps.afrh.ReplaceBits(uint32(s.af), 0xF, (n-8)*4)
		}
	}
	if s.output || s.alt {
		ps.otyper.ReplaceBits(s.otype, 1, n)
	}
	ps.pupdr.ReplaceBits(uint32(pull), 0x3, n*2)
	ps.moder.ReplaceBits(s.moder, 0x3, n*2)
	return &Pin[N]{parts: ps, n: n}, nil
}

func afList(afs []uint8) string {
	var b []byte
	for i, af := range afs {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, "AF"...)
		b = strconv.AppendUint(b, uint64(af), 10)
	}
	return string(b)
}
