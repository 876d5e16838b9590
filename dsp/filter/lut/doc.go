// Package lut provides precomputed two-dimensional coefficient tables for
// table-driven filters.
//
// A [Table] samples a [Designer] once on a grid of cutoff frequencies
// (logarithmic spacing) and resonance values (linear spacing). Processing
// code then reads coefficients by normalized position with either nearest or
// bilinear lookup, turning per-sample transcendental coefficient math into a
// constant-time read.
//
// Tables are immutable after construction and safe for concurrent readers.
// A [Registry] builds one table per sample rate and hands the same instance
// to every filter that asks for it.
package lut
