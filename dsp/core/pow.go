//go:build !fastmath

package core

import "math"

// Pow2 computes 2^x using standard library math.
func Pow2(x float64) float64 {
	return math.Exp2(x)
}
