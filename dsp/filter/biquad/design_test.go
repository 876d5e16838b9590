package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestLowpassResponse(t *testing.T) {
	const sr = 48000

	tests := []struct {
		name string
		hz   float64
		q    float64
	}{
		{name: "butterworth_1k", hz: 1000, q: 1 / math.Sqrt2},
		{name: "resonant_200", hz: 200, q: 5},
		{name: "low_q_10k", hz: 10000, q: 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Lowpass(tt.hz, tt.q, sr)
			if !c.Stable() {
				t.Fatalf("unstable design %+v", c)
			}

			if dc := cmplx.Abs(c.ResponseAt(0)); math.Abs(dc-1) > 1e-9 {
				t.Fatalf("DC gain = %v, want 1", dc)
			}

			// RBJ low-pass has gain Q at the corner.
			if g := cmplx.Abs(c.Response(tt.hz, sr)); math.Abs(g-tt.q) > 1e-9 {
				t.Fatalf("corner gain = %v, want %v", g, tt.q)
			}

			if ny := cmplx.Abs(c.ResponseAt(math.Pi)); ny > 1e-9 {
				t.Fatalf("Nyquist gain = %v, want 0", ny)
			}
		})
	}
}

func TestNotchResponse(t *testing.T) {
	const sr = 96000
	c := Notch(7.5, BandwidthToQ(4.7), sr)

	if g := cmplx.Abs(c.Response(7.5, sr)); g > 1e-9 {
		t.Fatalf("gain at centre = %v, want 0", g)
	}

	if g := cmplx.Abs(c.Response(1000, sr)); math.Abs(g-1) > 1e-3 {
		t.Fatalf("passband gain = %v, want ~1", g)
	}
}

func TestBandwidthToQ(t *testing.T) {
	// One octave is Q ~= 1.4142.
	if q := BandwidthToQ(1); math.Abs(q-1.41421) > 1e-4 {
		t.Fatalf("BandwidthToQ(1) = %v", q)
	}

	if q := BandwidthToQ(4.7); math.Abs(q-0.2038) > 1e-3 {
		t.Fatalf("BandwidthToQ(4.7) = %v", q)
	}
}

func TestInvalidDesigns(t *testing.T) {
	for _, c := range []Coefficients{
		Lowpass(0, 1, 48000),
		Lowpass(24000, 1, 48000),
		Lowpass(1000, 1, math.NaN()),
		Notch(-1, 1, 48000),
	} {
		if c != (Coefficients{}) {
			t.Fatalf("expected zero coefficients, got %+v", c)
		}
	}

	if Lowpass(1000, -1, 48000) != Lowpass(1000, defaultQ, 48000) {
		t.Fatal("invalid Q should fall back to the default")
	}
}

func TestMagnitudeMatchesResponse(t *testing.T) {
	c := Lowpass(3000, 2, 48000)

	for _, hz := range []float64{100, 3000, 9000} {
		want := cmplx.Abs(c.Response(hz, 48000))
		got := math.Sqrt(c.MagnitudeSquared(hz, 48000))
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("%v Hz: MagnitudeSquared %v, Response %v", hz, got, want)
		}

		if db := c.MagnitudeDB(hz, 48000); math.Abs(db-20*math.Log10(want)) > 1e-9 {
			t.Fatalf("%v Hz: MagnitudeDB %v", hz, db)
		}
	}
}

func TestImpulseResponsePreservesState(t *testing.T) {
	s := NewSection(traceCoeffs)
	s.ProcessSample(0.7)
	saved := s.State()

	ir := s.ImpulseResponse(4)
	want := []float64{0.25, 0.55, 0.35, 0.048}
	for i := range want {
		if math.Abs(ir[i]-want[i]) > eps {
			t.Fatalf("ir[%d] = %v, want %v", i, ir[i], want[i])
		}
	}

	if s.State() != saved {
		t.Fatal("ImpulseResponse modified section state")
	}

	if s.ImpulseResponse(0) != nil {
		t.Fatal("expected nil for n <= 0")
	}
}
