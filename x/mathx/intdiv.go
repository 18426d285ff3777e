package mathx

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(a/b) for positive integers; b == 0 yields 0.
func CeilDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// RoundDiv returns floor((a + b/2)/b), classic rounding for positives.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}

// DividesExactly reports b != 0 && a%b == 0.
func DividesExactly[T constraints.Unsigned](a, b T) bool {
	return b != 0 && a%b == 0
}

// ErrPPM returns the relative error of got against want in parts per
// million, rounded up. want == 0 yields 0 only when got is also 0.
func ErrPPM(got, want uint64) uint64 {
	if want == 0 {
		if got == 0 {
			return 0
		}
		return 1_000_000
	}
	return CeilDiv(AbsDiff(got, want)*1_000_000, want)
}

// Log2Ceil returns the smallest k with 1<<k >= v (v == 0 yields 0).
func Log2Ceil[T constraints.Unsigned](v T) uint {
	var k uint
	for (T(1) << k) < v {
		k++
	}
	return k
}
