package i2c

import (
	"bringup-go/errcode"
	"bringup-go/services/board/internal/pac"
	"bringup-go/x/mathx"
	"bringup-go/x/timex"
)

// Rate limits and the error bound accepted for the derived SCL rate.
const (
	MinFrequency = 10_000
	MaxFrequency = 1_000_000
	MaxErrorPPM  = 20_000 // 2 %

	// syncCycles is the SCL synchroniser delay, in kernel clock cycles, that
	// the controller adds to every SCL period.
	syncCycles = 4
)

// Timing is a decoded TIMINGR value.
type Timing struct {
	Presc, SCLDel, SDADel uint8
	SCLH, SCLL            uint8
}

// Encode packs t into the TIMINGR layout.
func (t Timing) Encode() uint32 {
	return uint32(t.Presc)<<pac.I2C_TIMINGR_PRESC_Pos |
		uint32(t.SCLDel)<<pac.I2C_TIMINGR_SCLDEL_Pos |
		uint32(t.SDADel)<<pac.I2C_TIMINGR_SDADEL_Pos |
		uint32(t.SCLH)<<pac.I2C_TIMINGR_SCLH_Pos |
		uint32(t.SCLL)<<pac.I2C_TIMINGR_SCLL_Pos
}

// Frequency is the SCL rate t produces from a kernel clock of pclk.
func (t Timing) Frequency(pclk uint32) uint32 {
	period := (uint64(t.Presc)+1)*(uint64(t.SCLH)+uint64(t.SCLL)+2) + syncCycles
	return uint32(mathx.RoundDiv(uint64(pclk), period))
}

func rateErr(msg string) error { return errcode.New(errcode.RateConfig, "i2c", msg) }

// Compute derives TIMINGR for hz from the APB1 clock. Above 100 kHz the SCL
// high:low split is 1:2 (fast mode), otherwise 1:1.
func Compute(pclk, hz uint32) (Timing, error) {
	if !mathx.Between(hz, MinFrequency, MaxFrequency) {
		return Timing{}, rateErr(timex.MHz(hz) + " outside 10kHz..1MHz")
	}
	if pclk == 0 {
		return Timing{}, rateErr("no kernel clock")
	}
	fast := hz > 100_000
	want := mathx.RoundDiv(uint64(pclk), uint64(hz))
	if want <= syncCycles+4 {
		return Timing{}, rateErr("pclk1 " + timex.MHz(pclk) + " too slow for " + timex.MHz(hz))
	}
	want -= syncCycles

	var (
		best  Timing
		bestE uint64
		found bool
	)
	for p := uint64(0); p < 16; p++ {
		units := mathx.RoundDiv(want, p+1)
		if units < 4 || units > 512 {
			continue
		}
		var h uint64
		if fast {
			h = mathx.RoundDiv(units, 3)
		} else {
			h = units / 2
		}
		l := units - h
		if h < 1 || l < 1 || h > 256 || l > 256 {
			continue
		}
		t := Timing{Presc: uint8(p), SCLH: uint8(h - 1), SCLL: uint8(l - 1)}
		e := mathx.ErrPPM(uint64(t.Frequency(pclk)), uint64(hz))
		if !found || e < bestE {
			best, bestE, found = t, e, true
		}
	}
	if !found || bestE > MaxErrorPPM {
		return Timing{}, rateErr("no TIMINGR within 2% of " + timex.MHz(hz) + " from pclk1 " + timex.MHz(pclk))
	}

	// Data setup and hold, in prescaled cycles.
	if fast {
		best.SCLDel, best.SDADel = 3, 1
	} else {
		best.SCLDel, best.SDADel = 4, 2
	}
	return best, nil
}
