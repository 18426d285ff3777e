// Package serial binds the USART to its TX/RX pins and a frozen APB2 clock,
// 8N1 with 16x oversampling.
package serial

import (
	"io"

	"bringup-go/errcode"
	"bringup-go/services/board/internal/gpio"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/rcc"
	"bringup-go/services/board/internal/regs"
	"bringup-go/x/mathx"
	"bringup-go/x/ring"
	"bringup-go/x/timex"
)

// Divisor limits and the accepted baud error.
const (
	MinBRR      = 16
	MaxBRR      = 0xFFFF
	MaxErrorPPM = 20_000 // 2 %

	rxBufSize = 64
)

// Spins bounds each transmit wait.
var Spins = 100_000

// Config is the requested line setup.
type Config struct {
	BaudRate uint32
}

// Port is a ready UART.
type Port[P pac.USARTPeripheral, F gpio.AltFunc] struct {
	dev    P
	tx, rx *gpio.Pin[gpio.Alternate[F]]
	brr    uint32
	baud   uint32

	cr1, isr, icr, rdr, tdr regs.Reg
	buf                     *ring.Ring
}

var (
	_ io.Reader     = (*Port[*pac.USART1, gpio.AF7])(nil)
	_ io.Writer     = (*Port[*pac.USART1, gpio.AF7])(nil)
	_ io.ByteWriter = (*Port[*pac.USART1, gpio.AF7])(nil)
)

// Divisor returns BRR = round(pclk / baud) and the baud rate it produces.
func Divisor(pclk, baud uint32) (brr, actual uint32, err error) {
	if baud == 0 || pclk == 0 {
		return 0, 0, errcode.New(errcode.RateConfig, "serial", "baud or clock is zero")
	}
	brr = mathx.RoundDiv(pclk, baud)
	if brr < MinBRR || brr > MaxBRR {
		return 0, 0, errcode.New(errcode.RateConfig, "serial",
			"baud "+timex.MHz(baud)+" out of divisor range from "+timex.MHz(pclk))
	}
	actual = mathx.RoundDiv(pclk, brr)
	if e := mathx.ErrPPM(uint64(actual), uint64(baud)); e > MaxErrorPPM {
		return 0, 0, errcode.New(errcode.RateConfig, "serial",
			"baud "+timex.MHz(baud)+" off by more than 2% (got "+timex.MHz(actual)+")")
	}
	return brr, actual, nil
}

// New validates the pins and baud divisor, then enables the transmitter and
// receiver. Nothing is written and no pin is consumed when validation fails.
func New[P pac.USARTPeripheral, F gpio.AltFunc](
	dev P, tx, rx *gpio.Pin[gpio.Alternate[F]],
	cfg Config, clk rcc.Clocks, gates *rcc.Gates,
) (*Port[P, F], error) {
	const op = "serial.new"
	if !clk.Frozen() {
		return nil, errcode.New(errcode.ClockConfig, op, "clocks not frozen")
	}
	if err := tx.Check(); err != nil {
		return nil, errcode.Wrap(op, err)
	}
	if err := rx.Check(); err != nil {
		return nil, errcode.Wrap(op, err)
	}
	if err := pac.CheckSignal(dev.ID(), pac.TX, tx.ID(), tx.AltFunc()); err != nil {
		return nil, err
	}
	if err := pac.CheckSignal(dev.ID(), pac.RX, rx.ID(), rx.AltFunc()); err != nil {
		return nil, err
	}
	brr, actual, err := Divisor(clk.PClk2(), cfg.BaudRate)
	if err != nil {
		return nil, err
	}

	own, err := gpio.Claim(tx, rx)
	if err != nil {
		return nil, errcode.Wrap(op, err)
	}

	b := dev.Regs()
	p := &Port[P, F]{
		dev:  dev,
		tx:   own[0],
		rx:   own[1],
		brr:  brr,
		baud: actual,
		cr1:  b.Reg(pac.USART_CR1),
		isr:  b.Reg(pac.USART_ISR),
		icr:  b.Reg(pac.USART_ICR),
		rdr:  b.Reg(pac.USART_RDR),
		tdr:  b.Reg(pac.USART_TDR),
		buf:  ring.New(rxBufSize),
	}

	gates.Enable(dev)
	p.cr1.Set(0)
	b.Reg(pac.USART_BRR).Set(brr)
	p.cr1.Set(pac.USART_CR1_TE | pac.USART_CR1_RE | pac.USART_CR1_UE)
	return p, nil
}

// BaudRate returns the effective line rate.
func (p *Port[P, F]) BaudRate() uint32 { return p.baud }

// Divisor returns the programmed BRR.
func (p *Port[P, F]) Divisor() uint32 { return p.brr }

// WriteByte sends c once the transmit register is free.
func (p *Port[P, F]) WriteByte(c byte) error {
	if !p.isr.Wait(pac.USART_ISR_TXE, pac.USART_ISR_TXE, Spins) {
		return errcode.New(errcode.Timeout, "serial.write", "transmitter stalled")
	}
	p.tdr.Set(uint32(c))
	return nil
}

// Write sends b and waits for the last frame to leave the shift register.
func (p *Port[P, F]) Write(b []byte) (int, error) {
	for i, c := range b {
		if err := p.WriteByte(c); err != nil {
			return i, err
		}
	}
	if !p.isr.Wait(pac.USART_ISR_TC, pac.USART_ISR_TC, Spins) {
		return len(b), errcode.New(errcode.Timeout, "serial.write", "transmission not complete")
	}
	return len(b), nil
}

// poll moves pending received bytes into the buffer and clears overruns.
func (p *Port[P, F]) poll() {
	for {
		isr := p.isr.Get()
		if isr&pac.USART_ISR_ORE != 0 {
			p.icr.Set(pac.USART_ICR_ORECF)
		}
		if isr&pac.USART_ISR_RXNE == 0 {
			return
		}
		p.buf.Put(byte(p.rdr.Get()))
	}
}

// Buffered returns the number of bytes ready to Read.
func (p *Port[P, F]) Buffered() int {
	p.poll()
	return p.buf.Available()
}

// Read returns the bytes received so far without waiting; it returns 0, nil
// when nothing is pending.
func (p *Port[P, F]) Read(b []byte) (int, error) {
	p.poll()
	return p.buf.ReadInto(b), nil
}

// ReadByte returns one pending byte.
func (p *Port[P, F]) ReadByte() (byte, error) {
	p.poll()
	c, ok := p.buf.Get()
	if !ok {
		return 0, errcode.New(errcode.Timeout, "serial.read", "no data")
	}
	return c, nil
}

// Dropped counts received bytes lost to a full buffer.
func (p *Port[P, F]) Dropped() uint32 { return p.buf.Dropped() }
