// Package tone measures pitch and spectral purity of rendered oscillator and
// voice output.
//
// Spectra are Hann-windowed and computed with algo-fft; the signal is
// zero-padded to the next power of two. All functions are intended for
// offline analysis and allocate.
package tone
