// Package onepole provides first-order IIR sections with fixed corner
// frequencies: low-pass, high-pass and all-pass, designed with the bilinear
// transform.
//
// A [Section] holds one sample of input and output history. Coefficients are
// computed once from a corner frequency and sample rate and are not modulated
// at audio rate.
package onepole
