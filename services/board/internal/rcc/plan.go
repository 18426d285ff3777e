package rcc

import (
	"bringup-go/errcode"
	"bringup-go/services/board/internal/flash"
	"bringup-go/x/mathx"
	"bringup-go/x/timex"
)

// Chip clock limits and the legal divider set.
const (
	HSEMin    = 4_000_000
	HSEMax    = 32_000_000
	PLLInMin  = 1_000_000
	PLLInMax  = 16_000_000
	VCOMin    = 64_000_000
	VCOMax    = 432_000_000
	SysClkMax = 72_000_000
	PClk1Max  = 36_000_000
	PClk2Max  = 72_000_000

	MMax   = 16
	NMin   = 2
	NMax   = 64
	DivMax = 16
)

// Request is a set of clock targets. Zero PClk1 selects SysClk, or half of
// it when SysClk exceeds the APB1 limit; zero PClk2 selects SysClk.
type Request struct {
	HSE          uint32
	SysClk       uint32
	PClk1        uint32
	PClk2        uint32
	TolerancePPM uint32 // 0 = exact
}

func clockErr(msg string) error { return errcode.New(errcode.ClockConfig, "rcc", msg) }

func (r Request) withDefaults() Request {
	if r.PClk1 == 0 {
		r.PClk1 = r.SysClk
		if r.PClk1 > PClk1Max {
			r.PClk1 = r.SysClk / 2
		}
	}
	if r.PClk2 == 0 {
		r.PClk2 = r.SysClk
	}
	return r
}

func (r Request) validate() error {
	switch {
	case !mathx.Between(r.HSE, HSEMin, HSEMax):
		return clockErr("hse " + timex.MHz(r.HSE) + " outside 4MHz..32MHz")
	case r.SysClk == 0:
		return clockErr("sysclk not set")
	case r.SysClk > SysClkMax:
		return clockErr("sysclk " + timex.MHz(r.SysClk) + " above 72MHz")
	case r.PClk1 > PClk1Max:
		return clockErr("pclk1 " + timex.MHz(r.PClk1) + " above 36MHz")
	case r.PClk2 > PClk2Max:
		return clockErr("pclk2 " + timex.MHz(r.PClk2) + " above 72MHz")
	case r.PClk1 > r.SysClk || r.PClk2 > r.SysClk:
		return clockErr("bus clock above sysclk")
	}
	return nil
}

// pickDiv chooses the post-divider whose output best approaches target
// without exceeding limit.
func pickDiv(vco uint64, target, limit, tol uint32) (div uint8, hz uint32, ppm uint64, ok bool) {
	d0 := vco / uint64(target)
	for _, d := range [2]uint64{d0, d0 + 1} {
		if d < 1 || d > DivMax {
			continue
		}
		f := vco / d
		if f > uint64(limit) {
			continue
		}
		e := mathx.ErrPPM(f, uint64(target))
		if e > uint64(tol) {
			continue
		}
		if !ok || e < ppm {
			div, hz, ppm, ok = uint8(d), uint32(f), e, true
		}
	}
	return
}

// Plan validates req and finds the divider chain, without touching
// hardware. The result is not frozen.
func Plan(req Request) (Clocks, error) {
	req = req.withDefaults()
	if err := req.validate(); err != nil {
		return Clocks{}, err
	}

	var (
		best  Clocks
		score uint64
		found bool
	)
	for m := uint32(1); m <= MMax; m++ {
		if !mathx.DividesExactly(req.HSE, m) {
			continue
		}
		in := req.HSE / m
		if !mathx.Between(in, PLLInMin, PLLInMax) {
			continue
		}
		for n := uint32(NMin); n <= NMax; n++ {
			vco := uint64(in) * uint64(n)
			if vco < VCOMin {
				continue
			}
			if vco > VCOMax {
				break
			}
			p, sys, es, ok := pickDiv(vco, req.SysClk, SysClkMax, req.TolerancePPM)
			if !ok {
				continue
			}
			q, p1, e1, ok := pickDiv(vco, req.PClk1, mathx.Min(uint32(PClk1Max), sys), req.TolerancePPM)
			if !ok {
				continue
			}
			r, p2, e2, ok := pickDiv(vco, req.PClk2, mathx.Min(uint32(PClk2Max), sys), req.TolerancePPM)
			if !ok {
				continue
			}
			s := es + e1 + e2
			if found && (s > score || (s == score && uint32(vco) >= best.vco)) {
				continue
			}
			found, score = true, s
			best = Clocks{
				hse: req.HSE, vco: uint32(vco),
				sysclk: sys, hclk: sys, pclk1: p1, pclk2: p2,
				pll:     PLL{M: uint8(m), N: uint8(n), P: p, Q: q, R: r},
				latency: flash.LatencyFor(sys),
			}
		}
	}
	if !found {
		return Clocks{}, clockErr("no divider chain reaches sysclk=" + timex.MHz(req.SysClk) +
			" pclk1=" + timex.MHz(req.PClk1) + " pclk2=" + timex.MHz(req.PClk2) +
			" from hse=" + timex.MHz(req.HSE))
	}
	return best, nil
}
