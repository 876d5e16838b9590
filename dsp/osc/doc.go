// Package osc provides a band-limited unison oscillator.
//
// Up to seven sawtooth voices are stacked with fixed cent offsets and fixed
// stereo positions ("supersaw"). Each voice subtracts a PolyBLEP residual at
// its phase wrap to suppress aliasing. A single-voice configuration with the
// sine waveform gives a plain mono test tone.
//
// ProcessSample performs no allocation and runs in time proportional to the
// configured voice count.
package osc
