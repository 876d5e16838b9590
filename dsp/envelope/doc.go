// Package envelope provides a one-shot attack/decay (AD) envelope generator.
//
// The envelope has no sustain plateau: once the attack ramp reaches full
// level the decay ramp starts immediately and runs to silence unless the
// envelope is retriggered. Both ramps share a curve exponent; curve 1 gives
// linear ramps, higher values give increasingly concave, exponential-like
// shapes.
//
// Retriggering a sounding envelope restarts the attack at the current level
// instead of jumping back to zero, so amplitude envelopes do not click.
// RetriggerRestart disables this for modulation envelopes.
//
// ProcessSample performs no allocation and runs in constant time.
package envelope
