package core

import "math"

const (
	// ReferenceNote is the MIDI note number of ReferenceHz (A4).
	ReferenceNote = 69
	// ReferenceHz is the tuning reference for note conversions.
	ReferenceHz = 440.0
)

// Clamp limits value to the inclusive range [min, max].
// NaN is mapped to min so that setters never store a NaN.
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min || math.IsNaN(value) {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// Clamp01 limits value to [0, 1].
func Clamp01(value float64) float64 {
	return Clamp(value, 0, 1)
}

// IsFinite reports whether x is neither NaN nor Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// WrapPhase folds a normalized phase into [0, 1).
func WrapPhase(phase float64) float64 {
	if phase >= 0 && phase < 1 {
		return phase
	}

	phase -= math.Floor(phase)
	if phase >= 1 {
		// -tiny - floor(-tiny) rounds to exactly 1.
		return 0
	}

	return phase
}

// NoteToHz converts a MIDI note number to Hz in twelve-tone equal temperament.
func NoteToHz(note float64) float64 {
	return ReferenceHz * Pow2((note-ReferenceNote)/12)
}

// CentsToRatio converts a pitch offset in cents to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return Pow2(cents / 1200)
}

// LogScale maps a normalized position to [min, max] on a logarithmic axis.
// Both bounds must be > 0.
func LogScale(pos, min, max float64) float64 {
	return min * math.Pow(max/min, Clamp01(pos))
}

// LogPosition is the inverse of LogScale.
func LogPosition(value, min, max float64) float64 {
	if value <= min {
		return 0
	}

	return Clamp01(math.Log(value/min) / math.Log(max/min))
}

// LinearScale maps a normalized position to [min, max].
func LinearScale(pos, min, max float64) float64 {
	return min + (max-min)*Clamp01(pos)
}
