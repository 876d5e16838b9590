package onepole

import (
	"math"
	"math/cmplx"
)

// nyquistGuard keeps the prewarped corner below Nyquist.
const nyquistGuard = 0.49

// Coefficients of y = B0*x + B1*x[n-1] - A1*y[n-1].
type Coefficients struct {
	B0, B1 float64
	A1     float64
}

// Lowpass designs a first-order low-pass with -3 dB at hz.
func Lowpass(hz, sampleRate float64) Coefficients {
	g := prewarp(hz, sampleRate)
	n := 1 / (1 + g)

	return Coefficients{B0: g * n, B1: g * n, A1: (g - 1) * n}
}

// Highpass designs a first-order high-pass with -3 dB at hz.
func Highpass(hz, sampleRate float64) Coefficients {
	g := prewarp(hz, sampleRate)
	n := 1 / (1 + g)

	return Coefficients{B0: n, B1: -n, A1: (g - 1) * n}
}

// Allpass designs a first-order all-pass with -90 degrees phase at hz.
func Allpass(hz, sampleRate float64) Coefficients {
	g := prewarp(hz, sampleRate)
	a := (g - 1) / (g + 1)

	return Coefficients{B0: a, B1: 1, A1: a}
}

// Response returns H(e^jw) at freqHz.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	return c.ResponseAt(2 * math.Pi * freqHz / sampleRate)
}

// ResponseAt returns H(e^jw) at normalized angular frequency w.
func (c Coefficients) ResponseAt(w float64) complex128 {
	z1 := cmplx.Exp(complex(0, -w))
	return (complex(c.B0, 0) + complex(c.B1, 0)*z1) / (1 + complex(c.A1, 0)*z1)
}

func prewarp(hz, sampleRate float64) float64 {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0
	}

	hz = math.Max(0, math.Min(hz, nyquistGuard*sampleRate))

	return math.Tan(math.Pi * hz / sampleRate)
}

// Section is a stateful first-order filter.
type Section struct {
	Coefficients

	x1, y1 float64
}

// NewSection returns a Section with zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one sample.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.B1*s.x1 - s.A1*s.y1
	s.x1 = x
	s.y1 = y

	return y
}

// ProcessBlock filters buf in place.
func (s *Section) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = s.ProcessSample(x)
	}
}

// Reset clears the history.
func (s *Section) Reset() {
	s.x1 = 0
	s.y1 = 0
}

// State returns [x1, y1].
func (s *Section) State() [2]float64 {
	return [2]float64{s.x1, s.y1}
}
