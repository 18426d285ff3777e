package timex

import "time"

// Cycles returns the number of ticks of a clock running at hz needed to
// cover d, rounded up. Negative durations yield 0.
func Cycles(d time.Duration, hz uint32) uint64 {
	if d <= 0 {
		return 0
	}
	ns := uint64(d)
	secs, rem := ns/1_000_000_000, ns%1_000_000_000
	return secs*uint64(hz) + (rem*uint64(hz)+999_999_999)/1_000_000_000
}

// MHz formats hz as a short human value for boot logs, e.g. "64MHz", "400kHz".
func MHz(hz uint32) string {
	switch {
	case hz >= 1_000_000 && hz%1_000_000 == 0:
		return utoa(hz/1_000_000) + "MHz"
	case hz >= 1_000 && hz%1_000 == 0:
		return utoa(hz/1_000) + "kHz"
	default:
		return utoa(hz) + "Hz"
	}
}

func utoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var b [10]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	return string(b[i:])
}
