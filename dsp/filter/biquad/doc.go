// Package biquad provides second-order IIR runtime primitives and the RBJ
// designs used by the voice filters.
//
// A [Section] owns its coefficients and runs Direct Form II Transposed. A
// [DirectFormI] holds only history and takes coefficients per call, which
// suits table-driven filters whose coefficients change every sample.
package biquad
