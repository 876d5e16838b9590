package biquad

import "math"

// defaultQ is the Butterworth Q used when a caller passes an invalid Q.
const defaultQ = 1 / math.Sqrt2

// Lowpass designs an RBJ cookbook low-pass at freq (Hz) with quality q.
// Invalid frequencies return zero coefficients.
func Lowpass(freq, q, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Coefficients{}
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))
	b1 := 1 - cw

	return normalize(b1/2, b1, b1/2, 1+alpha, -2*cw, 1-alpha)
}

// Notch designs an RBJ cookbook notch centered at freq (Hz).
func Notch(freq, q, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Coefficients{}
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	return normalize(1, -2*cw, 1, 1+alpha, -2*cw, 1-alpha)
}

// BandwidthToQ converts a bandwidth in octaves to the equivalent Q.
func BandwidthToQ(octaves float64) float64 {
	return 1 / (2 * math.Sinh(math.Ln2/2*octaves))
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	if freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Coefficients{}
	}

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
