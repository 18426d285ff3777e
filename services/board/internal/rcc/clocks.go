package rcc

import (
	"strconv"

	"bringup-go/x/timex"
)

// PLL holds the factors of VCO = HSE / M * N and its post-dividers.
type PLL struct {
	M, N    uint8
	P, Q, R uint8 // SYSCLK, PCLK1, PCLK2 dividers
}

// Clocks is the frozen clock tree. It is only produced by a successful
// Freeze or Plan; the zero value is rejected by every binder.
type Clocks struct {
	hse, vco     uint32
	sysclk, hclk uint32
	pclk1, pclk2 uint32
	pll          PLL
	latency      uint8
	frozen       bool
}

func (c Clocks) HSE() uint32    { return c.hse }
func (c Clocks) VCO() uint32    { return c.vco }
func (c Clocks) SysClk() uint32 { return c.sysclk }
func (c Clocks) HClk() uint32   { return c.hclk }
func (c Clocks) PClk1() uint32  { return c.pclk1 }
func (c Clocks) PClk2() uint32  { return c.pclk2 }
func (c Clocks) PLL() PLL       { return c.pll }
func (c Clocks) Latency() uint8 { return c.latency }
func (c Clocks) Frozen() bool   { return c.frozen }

// Summary is a one-line description for boot logs.
func (c Clocks) Summary() string {
	return "hse=" + timex.MHz(c.hse) + " vco=" + timex.MHz(c.vco) +
		" sysclk=" + timex.MHz(c.sysclk) + " pclk1=" + timex.MHz(c.pclk1) +
		" pclk2=" + timex.MHz(c.pclk2) + " ws=" + strconv.Itoa(int(c.latency))
}
