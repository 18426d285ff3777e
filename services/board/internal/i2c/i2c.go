// Package i2c binds the I²C controller to a pair of open-drain AF pins and
// a frozen APB1 clock.
package i2c

import (
	"bringup-go/errcode"
	"bringup-go/services/board/internal/gpio"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/rcc"
	"bringup-go/services/board/internal/regs"

	"tinygo.org/x/drivers"
)

// Spins bounds each status-flag wait during a transfer.
var Spins = 100_000

// Config is the requested bus setup.
type Config struct {
	Frequency uint32 // SCL Hz
}

// Bus is a ready I²C controller. P is the controller instance and F the
// alternate function its pins are muxed to.
type Bus[P pac.I2CPeripheral, F gpio.AltFunc] struct {
	dev      P
	scl, sda *gpio.Pin[gpio.AlternateOD[F]]
	timing   Timing
	freq     uint32

	cr1, cr2, isr, icr, rxdr, txdr regs.Reg
}

var _ drivers.I2C = (*Bus[*pac.I2C1, gpio.AF4])(nil)

// New validates the pins and rate, then enables the controller. Nothing is
// written and no pin is consumed when validation fails.
func New[P pac.I2CPeripheral, F gpio.AltFunc](
	dev P, scl, sda *gpio.Pin[gpio.AlternateOD[F]],
	cfg Config, clk rcc.Clocks, gates *rcc.Gates,
) (*Bus[P, F], error) {
	const op = "i2c.new"
	if !clk.Frozen() {
		return nil, errcode.New(errcode.ClockConfig, op, "clocks not frozen")
	}
	if err := scl.Check(); err != nil {
		return nil, errcode.Wrap(op, err)
	}
	if err := sda.Check(); err != nil {
		return nil, errcode.Wrap(op, err)
	}
	if err := pac.CheckSignal(dev.ID(), pac.SCL, scl.ID(), scl.AltFunc()); err != nil {
		return nil, err
	}
	if err := pac.CheckSignal(dev.ID(), pac.SDA, sda.ID(), sda.AltFunc()); err != nil {
		return nil, err
	}
	t, err := Compute(clk.PClk1(), cfg.Frequency)
	if err != nil {
		return nil, err
	}

	own, err := gpio.Claim(scl, sda)
	if err != nil {
		return nil, errcode.Wrap(op, err)
	}

	b := dev.Regs()
	bus := &Bus[P, F]{
		dev:    dev,
		scl:    own[0],
		sda:    own[1],
		timing: t,
		freq:   t.Frequency(clk.PClk1()),
		cr1:    b.Reg(pac.I2C_CR1),
		cr2:    b.Reg(pac.I2C_CR2),
		isr:    b.Reg(pac.I2C_ISR),
		icr:    b.Reg(pac.I2C_ICR),
		rxdr:   b.Reg(pac.I2C_RXDR),
		txdr:   b.Reg(pac.I2C_TXDR),
	}

	gates.Enable(dev)
	bus.cr1.ClearBits(pac.I2C_CR1_PE)
	b.Reg(pac.I2C_TIMINGR).Set(t.Encode())
	bus.cr1.SetBits(pac.I2C_CR1_PE)
	return bus, nil
}

// Frequency returns the effective SCL rate.
func (b *Bus[P, F]) Frequency() uint32 { return b.freq }

// Timing returns the programmed TIMINGR fields.
func (b *Bus[P, F]) Timing() Timing { return b.timing }

// Pins returns the SCL and SDA pin names.
func (b *Bus[P, F]) Pins() (scl, sda pac.PinID) { return b.scl.ID(), b.sda.ID() }

// Tx writes w to the 7-bit address addr, then reads len(r) bytes with a
// repeated start. Either slice may be empty; both empty probes the address.
func (b *Bus[P, F]) Tx(addr uint16, w, r []byte) error {
	if len(w) > 255 || len(r) > 255 || addr > 0x7F {
		return errcode.New(errcode.InvalidParams, "i2c.tx", "transfer exceeds 255 bytes or address exceeds 7 bits")
	}
	sadd := uint32(addr<<1) & pac.I2C_CR2_SADD_Msk

	if len(w) > 0 || len(r) == 0 {
		cr2 := sadd | uint32(len(w))<<pac.I2C_CR2_NBYTES_Pos | pac.I2C_CR2_START
		if len(r) == 0 {
			cr2 |= pac.I2C_CR2_AUTOEND
		}
		b.cr2.Set(cr2)
		for _, c := range w {
			if err := b.wait(pac.I2C_ISR_TXIS); err != nil {
				return err
			}
			b.txdr.Set(uint32(c))
		}
		if len(r) > 0 {
			if err := b.wait(pac.I2C_ISR_TC); err != nil {
				return err
			}
		}
	}

	if len(r) > 0 {
		b.cr2.Set(sadd | pac.I2C_CR2_RD_WRN | uint32(len(r))<<pac.I2C_CR2_NBYTES_Pos |
			pac.I2C_CR2_START | pac.I2C_CR2_AUTOEND)
		for i := range r {
			if err := b.wait(pac.I2C_ISR_RXNE); err != nil {
				return err
			}
			r[i] = byte(b.rxdr.Get())
		}
	}

	if err := b.wait(pac.I2C_ISR_STOPF); err != nil {
		return err
	}
	b.icr.Set(pac.I2C_ICR_STOPCF)
	return nil
}

// wait spins for flag, failing early on a NACK.
func (b *Bus[P, F]) wait(flag uint32) error {
	for i := 0; i < Spins; i++ {
		isr := b.isr.Get()
		if isr&pac.I2C_ISR_NACKF != 0 {
			b.icr.Set(pac.I2C_ICR_NACKCF | pac.I2C_ICR_STOPCF)
			return errcode.New(errcode.Nack, "i2c.tx", "address or data not acknowledged")
		}
		if isr&flag != 0 {
			return nil
		}
	}
	return errcode.New(errcode.Timeout, "i2c.tx", "bus did not respond")
}
