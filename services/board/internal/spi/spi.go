// Package spi binds the SPI controller in master mode to its AF pins and a
// frozen APB2 clock.
package spi

import (
	"strconv"

	"bringup-go/errcode"
	"bringup-go/services/board/internal/gpio"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/rcc"
	"bringup-go/services/board/internal/regs"
	"bringup-go/x/mathx"
	"bringup-go/x/timex"

	"tinygo.org/x/drivers"
)

// MaxFrequency is the fastest SCK the pins are rated for.
const MaxFrequency = 18_000_000

// Spins bounds each status-flag wait during a transfer.
var Spins = 100_000

// Mode is the clock polarity/phase pair, 0..3.
type Mode uint8

const (
	Mode0 Mode = iota // CPOL=0 CPHA=0
	Mode1             // CPOL=0 CPHA=1
	Mode2             // CPOL=1 CPHA=0
	Mode3             // CPOL=1 CPHA=1
)

// Config is the requested bus setup. Frequency is an upper bound: the
// fastest prescaler output not above it is used.
type Config struct {
	Frequency uint32
	Mode      Mode
}

// Bus is a ready SPI master.
type Bus[P pac.SPIPeripheral, F gpio.AltFunc] struct {
	dev             P
	sck, miso, mosi *gpio.Pin[gpio.Alternate[F]]
	br              uint8
	freq            uint32
	mode            Mode

	cr1, sr regs.Reg
	dr      regs.Reg8 // 8-bit frames need byte accesses; a wider one packs two frames
}

var _ drivers.SPI = (*Bus[*pac.SPI1, gpio.AF5])(nil)

// Prescaler picks BR so that pclk / 2^(BR+1) is the fastest rate not above
// min(hz, MaxFrequency).
func Prescaler(pclk, hz uint32) (br uint8, freq uint32, err error) {
	limit := mathx.Min(hz, MaxFrequency)
	if limit > 0 && pclk > 0 {
		k := mathx.Max(mathx.Log2Ceil(mathx.CeilDiv(pclk, limit)), 1)
		if k <= 8 {
			return uint8(k - 1), pclk >> k, nil
		}
	}
	return 0, 0, errcode.New(errcode.RateConfig, "spi",
		timex.MHz(hz)+" below slowest rate "+timex.MHz(pclk>>8)+" from pclk2 "+timex.MHz(pclk))
}

// New validates the pins, mode and rate, then enables the controller.
// Nothing is written and no pin is consumed when validation fails.
func New[P pac.SPIPeripheral, F gpio.AltFunc](
	dev P, sck, miso, mosi *gpio.Pin[gpio.Alternate[F]],
	cfg Config, clk rcc.Clocks, gates *rcc.Gates,
) (*Bus[P, F], error) {
	const op = "spi.new"
	if !clk.Frozen() {
		return nil, errcode.New(errcode.ClockConfig, op, "clocks not frozen")
	}
	if cfg.Mode > Mode3 {
		return nil, errcode.New(errcode.InvalidParams, op, "spi mode "+strconv.Itoa(int(cfg.Mode)))
	}
	pins := []struct {
		p   *gpio.Pin[gpio.Alternate[F]]
		sig pac.Signal
	}{{sck, pac.SCK}, {miso, pac.MISO}, {mosi, pac.MOSI}}
	for _, x := range pins {
		if err := x.p.Check(); err != nil {
			return nil, errcode.Wrap(op, err)
		}
		if err := pac.CheckSignal(dev.ID(), x.sig, x.p.ID(), x.p.AltFunc()); err != nil {
			return nil, err
		}
	}
	br, freq, err := Prescaler(clk.PClk2(), cfg.Frequency)
	if err != nil {
		return nil, err
	}

	own, err := gpio.Claim(sck, miso, mosi)
	if err != nil {
		return nil, errcode.Wrap(op, err)
	}

	b := dev.Regs()
	bus := &Bus[P, F]{
		dev:  dev,
		sck:  own[0],
		miso: own[1],
		mosi: own[2],
		br:   br,
		freq: freq,
		mode: cfg.Mode,
		cr1:  b.Reg(pac.SPI_CR1),
		sr:   b.Reg(pac.SPI_SR),
		dr:   b.Reg8(pac.SPI_DR),
	}

	cr1 := pac.SPI_CR1_MSTR | pac.SPI_CR1_SSM | pac.SPI_CR1_SSI | uint32(br)<<pac.SPI_CR1_BR_Pos
	if cfg.Mode&2 != 0 {
		cr1 |= pac.SPI_CR1_CPOL
	}
	if cfg.Mode&1 != 0 {
		cr1 |= pac.SPI_CR1_CPHA
	}

	gates.Enable(dev)
	bus.cr1.Set(cr1)
	b.Reg(pac.SPI_CR2).Set(pac.SPI_CR2_DS_8BIT | pac.SPI_CR2_FRXTH)
	bus.cr1.Set(cr1 | pac.SPI_CR1_SPE)
	return bus, nil
}

func (b *Bus[P, F]) Frequency() uint32 { return b.freq }
func (b *Bus[P, F]) Prescaler() uint8  { return b.br }
func (b *Bus[P, F]) Mode() Mode        { return b.mode }

// Transfer clocks out w and returns the byte clocked in.
func (b *Bus[P, F]) Transfer(w byte) (byte, error) {
	if !b.sr.Wait(pac.SPI_SR_TXE, pac.SPI_SR_TXE, Spins) {
		return 0, timeout()
	}
	b.dr.Set(w)
	if !b.sr.Wait(pac.SPI_SR_RXNE, pac.SPI_SR_RXNE, Spins) {
		return 0, timeout()
	}
	return b.dr.Get(), nil
}

// Tx performs a full-duplex transfer of max(len(w), len(r)) bytes. Zeros are
// sent once w runs out; received bytes beyond len(r) are dropped.
func (b *Bus[P, F]) Tx(w, r []byte) error {
	n := len(w)
	if len(r) > n {
		n = len(r)
	}
	for i := 0; i < n; i++ {
		var out byte
		if i < len(w) {
			out = w[i]
		}
		in, err := b.Transfer(out)
		if err != nil {
			return err
		}
		if i < len(r) {
			r[i] = in
		}
	}
	if !b.sr.Wait(pac.SPI_SR_BSY, 0, Spins) {
		return timeout()
	}
	return nil
}

func timeout() error {
	return errcode.New(errcode.Timeout, "spi.tx", "controller did not respond")
}
