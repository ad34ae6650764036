package domain

import "math/bits"

// Checked unsigned arithmetic for accounting paths. Every overflow fails
// closed with ErrMathOverflow rather than wrapping or saturating.

// CheckedAdd returns a+b or ErrMathOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrMathOverflow when b > a.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrMathOverflow
	}
	return diff, nil
}

// MulDivFloor returns floor(a*b/d) using a 128-bit intermediate.
// Returns ErrMathOverflow when d is zero or the quotient exceeds 64 bits.
func MulDivFloor(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrMathOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, ErrMathOverflow
	}
	q, _ := bits.Div64(hi, lo, d)
	return q, nil
}
