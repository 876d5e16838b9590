// Package lowpass provides table-driven resonant low-pass filters for a
// synthesizer voice.
//
// Cutoff and resonance are set as normalized positions in [0, 1]. Cutoff
// maps logarithmically onto 20 Hz to 20 kHz; resonance maps linearly onto
// the variant's own scale. Coefficients come from a shared [lut.Table]
// built once per sample rate, so the per-sample cost is one table read plus
// the filter update.
//
// Three variants share the same contract:
//
//   - [VariantLadder] (default): four coupled integrators with a cubic
//     soft-clipped, high-passed feedback path that self-oscillates at full
//     resonance, followed by fixed all-pass and notch stages.
//   - [VariantSVF]: a trapezoidal state-variable filter with a saturated
//     band-pass state.
//   - [VariantBiquad]: an RBJ low-pass biquad in direct form I.
//
// An envelope or LFO drives the cutoff through [Filter.AddFreq]. The sum of
// SetFreq and AddFreq is clamped only at lookup time, so modulation may push
// past either end of the range without affecting the stored knob position.
package lowpass
