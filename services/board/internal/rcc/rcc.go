// Package rcc builds and commits the clock tree and owns the peripheral
// clock gates.
package rcc

import (
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/regs"
)

// Rcc is the constrained RCC block: the clock configuration builder plus
// the gate registers binders need to switch peripherals on.
type Rcc struct {
	CFGR  *CFGR
	Gates *Gates
}

// Constrain takes ownership of the RCC block.
func Constrain(r *pac.RCC) *Rcc {
	b := r.Regs()
	return &Rcc{
		CFGR: &CFGR{
			cr:      b.Reg(pac.RCC_CR),
			cfgr:    b.Reg(pac.RCC_CFGR),
			pllcfgr: b.Reg(pac.RCC_PLLCFGR),
		},
		Gates: &Gates{
			ahb:  b.Reg(pac.RCC_AHBENR),
			apb1: b.Reg(pac.RCC_APB1ENR),
			apb2: b.Reg(pac.RCC_APB2ENR),
		},
	}
}

// Gates switches peripheral bus clocks on.
type Gates struct {
	ahb, apb1, apb2 regs.Reg
}

func (g *Gates) reg(b pac.BusID) regs.Reg {
	switch b {
	case pac.AHB:
		return g.ahb
	case pac.APB1:
		return g.apb1
	default:
		return g.apb2
	}
}

// Enable sets the gate bit for p.
func (g *Gates) Enable(p pac.Peripheral) {
	gt := p.Gate()
	if gt.Bit == 0 {
		return
	}
	g.reg(gt.Bus).SetBits(gt.Bit)
}

// Enabled reports whether p's gate bit is set.
func (g *Gates) Enabled(p pac.Peripheral) bool {
	gt := p.Gate()
	return gt.Bit == 0 || g.reg(gt.Bus).HasBits(gt.Bit)
}
