// Package flash owns the flash access-control register.
package flash

import (
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/regs"
	"bringup-go/x/mathx"
)

// Parts is the constrained FLASH block.
type Parts struct {
	ACR *ACR
}

// ACR controls wait-states and prefetch.
type ACR struct {
	reg regs.Reg
}

// Constrain takes ownership of the FLASH block.
func Constrain(f *pac.FLASH) *Parts {
	return &Parts{ACR: &ACR{reg: f.Regs().Reg(pac.FLASH_ACR)}}
}

// MaxLatency is the largest wait-state count the chip supports.
const MaxLatency = 2

// LatencyFor returns the wait-states required at hclk.
func LatencyFor(hclk uint32) uint8 {
	switch {
	case hclk <= 24_000_000:
		return 0
	case hclk <= 48_000_000:
		return 1
	default:
		return MaxLatency
	}
}

// Latency returns the programmed wait-states.
func (a *ACR) Latency() uint8 {
	return uint8(a.reg.Field(pac.FLASH_ACR_LATENCY_Msk, pac.FLASH_ACR_LATENCY_Pos))
}

// SetLatency programs ws wait-states, clamped to MaxLatency, in a single
// store; prefetch is enabled whenever wait-states are in use.
func (a *ACR) SetLatency(ws uint8) {
	ws = mathx.Clamp(ws, 0, MaxLatency)
	v := a.reg.Get() &^ (pac.FLASH_ACR_LATENCY_Msk<<pac.FLASH_ACR_LATENCY_Pos | pac.FLASH_ACR_PRFTBE)
	v |= uint32(ws) & pac.FLASH_ACR_LATENCY_Msk
	if ws > 0 {
		v |= pac.FLASH_ACR_PRFTBE
	}
	a.reg.Set(v)
}
