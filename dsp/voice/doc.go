// Package voice wires an amplitude envelope, a unison oscillator, a filter
// envelope and a stereo low-pass filter into one monophonic synth voice.
//
// Per frame the amplitude envelope sets the oscillator level, the filter
// envelope is scaled by the envelope amount and added to the cutoff
// position, and each oscillator channel runs through its own filter.
//
// Control input arrives as note and controller events or as normalized knob
// positions. ProcessBlock drains events once per call and renders
// interleaved float32 frames without allocating.
package voice
