// Package delay provides busy-wait delays on the SysTick down-counter
// clocked from HCLK.
package delay

import (
	"time"

	"bringup-go/errcode"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/rcc"
	"bringup-go/services/board/internal/regs"
	"bringup-go/x/timex"
)

// Delay owns SysTick. Each call programs a fresh countdown and stops the
// counter when it expires.
type Delay struct {
	hclk uint32

	csr, rvr, cvr regs.Reg
}

// New takes SysTick for delays at the frozen HCLK.
func New(syst *pac.SYST, clk rcc.Clocks) (*Delay, error) {
	if !clk.Frozen() {
		return nil, errcode.New(errcode.ClockConfig, "delay.new", "clocks not frozen")
	}
	b := syst.Regs()
	d := &Delay{
		hclk: clk.HClk(),
		csr:  b.Reg(pac.SYST_CSR),
		rvr:  b.Reg(pac.SYST_RVR),
		cvr:  b.Reg(pac.SYST_CVR),
	}
	d.csr.Set(0)
	return d, nil
}

// HClk returns the counter clock.
func (d *Delay) HClk() uint32 { return d.hclk }

// Sleep blocks for at least dur.
func (d *Delay) Sleep(dur time.Duration) {
	if dur <= 0 {
		return
	}
	d.cycles(timex.Cycles(dur, d.hclk))
}

func (d *Delay) DelayUs(us uint32) { d.Sleep(time.Duration(us) * time.Microsecond) }
func (d *Delay) DelayMs(ms uint32) { d.Sleep(time.Duration(ms) * time.Millisecond) }

// minCount is the shortest countdown SysTick completes: a reload value of 0
// never sets COUNTFLAG.
const minCount = 2

// cycles counts at least n HCLK cycles in reloads of at most 2^24, none
// shorter than minCount.
func (d *Delay) cycles(n uint64) {
	const span = uint64(pac.SYST_RVR_Max) + 1
	if n > 0 && n < minCount {
		n = minCount
	}
	for n > 0 {
		c := n
		if c > span {
			c = span
			if n-c < minCount {
				c = n - minCount
			}
		}
		d.rvr.Set(uint32(c - 1))
		d.cvr.Set(0)
		d.csr.Set(pac.SYST_CSR_ENABLE | pac.SYST_CSR_CLKSOURCE)
		for !d.csr.HasBits(pac.SYST_CSR_COUNTFLAG) {
		}
		n -= c
	}
	d.csr.Set(0)
}
