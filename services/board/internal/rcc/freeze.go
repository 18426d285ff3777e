package rcc

import (
	"bringup-go/errcode"
	"bringup-go/services/board/internal/flash"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/regs"
)

// ReadySpins bounds every oscillator, PLL and switch wait.
var ReadySpins = 100_000

// CFGR collects clock targets until Freeze commits them.
type CFGR struct {
	cr, cfgr, pllcfgr regs.Reg

	req    Request
	frozen bool
}

// UseHSE selects the external oscillator running at hz.
func (c *CFGR) UseHSE(hz uint32) *CFGR { c.req.HSE = hz; return c }

// SysClk sets the system clock target.
func (c *CFGR) SysClk(hz uint32) *CFGR { c.req.SysClk = hz; return c }

// PClk1 sets the APB1 clock target.
func (c *CFGR) PClk1(hz uint32) *CFGR { c.req.PClk1 = hz; return c }

// PClk2 sets the APB2 clock target.
func (c *CFGR) PClk2(hz uint32) *CFGR { c.req.PClk2 = hz; return c }

// Tolerance accepts derived clocks within ppm of their targets.
func (c *CFGR) Tolerance(ppm uint32) *CFGR { c.req.TolerancePPM = ppm; return c }

// Request returns the targets collected so far.
func (c *CFGR) Request() Request { return c.req }

// Freeze validates the targets, then programs the clock tree:
//
//  1. start HSE and wait for it
//  2. program and lock the PLL
//  3. raise flash wait-states if the new SYSCLK needs more
//  4. switch SYSCLK to the PLL and wait for the switch
//  5. lower flash wait-states if the new SYSCLK needs fewer
//
// Nothing is written when validation fails.
func (c *CFGR) Freeze(acr *flash.ACR) (Clocks, error) {
	if c.frozen {
		return Clocks{}, errcode.New(errcode.InvalidState, "rcc.freeze", "clock tree already frozen")
	}
	clk, err := Plan(c.req)
	if err != nil {
		return Clocks{}, err
	}
	if err := c.apply(clk, acr); err != nil {
		return Clocks{}, err
	}
	c.frozen = true
	clk.frozen = true
	return clk, nil
}

func (c *CFGR) apply(clk Clocks, acr *flash.ACR) error {
	c.cr.SetBits(pac.RCC_CR_HSEON)
	if !c.cr.Wait(pac.RCC_CR_HSERDY, pac.RCC_CR_HSERDY, ReadySpins) {
		return clockErr("hse did not become ready")
	}

	c.pllcfgr.Set(encodePLL(clk.pll))
	c.cr.SetBits(pac.RCC_CR_PLLON)
	if !c.cr.Wait(pac.RCC_CR_PLLRDY, pac.RCC_CR_PLLRDY, ReadySpins) {
		return clockErr("pll did not lock")
	}

	cur := acr.Latency()
	if clk.latency > cur {
		acr.SetLatency(clk.latency)
	}

	c.cfgr.ReplaceBits(pac.RCC_CFGR_SW_PLL, pac.RCC_CFGR_SW_Msk, pac.RCC_CFGR_SW_Pos)
	const swsMask = pac.RCC_CFGR_SWS_Msk << pac.RCC_CFGR_SWS_Pos
	if !c.cfgr.Wait(swsMask, pac.RCC_CFGR_SW_PLL<<pac.RCC_CFGR_SWS_Pos, ReadySpins) {
		return clockErr("sysclk switch to pll not acknowledged")
	}

	if clk.latency < cur {
		acr.SetLatency(clk.latency)
	}
	return nil
}

func encodePLL(p PLL) uint32 {
	return uint32(p.M-1)<<pac.RCC_PLLCFGR_PLLM_Pos |
		uint32(p.N)<<pac.RCC_PLLCFGR_PLLN_Pos |
		uint32(p.P-1)<<pac.RCC_PLLCFGR_PLLP_Pos |
		uint32(p.Q-1)<<pac.RCC_PLLCFGR_PLLQ_Pos |
		uint32(p.R-1)<<pac.RCC_PLLCFGR_PLLR_Pos |
		pac.RCC_PLLCFGR_PLLSRC_HSE
}
