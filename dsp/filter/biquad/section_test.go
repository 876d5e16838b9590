package biquad

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-swarm/internal/testutil"
)

const eps = 1e-12

var traceCoeffs = Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}

func TestProcessSampleImpulse(t *testing.T) {
	// Hand-traced DF-II-T impulse response of traceCoeffs.
	s := NewSection(traceCoeffs)

	want := []float64{0.25, 0.55, 0.35, 0.048, -0.0044, -0.00280}
	for i, w := range want {
		var x float64
		if i == 0 {
			x = 1
		}

		if y := s.ProcessSample(x); math.Abs(y-w) > eps {
			t.Fatalf("sample %d: got %.15f, want %.15f", i, y, w)
		}
	}
}

func TestProcessBlockMatchesSample(t *testing.T) {
	input := testutil.DeterministicNoise(3, 1, 257)

	ref := NewSection(traceCoeffs)
	want := make([]float64, len(input))
	for i, x := range input {
		want[i] = ref.ProcessSample(x)
	}

	block := NewSection(traceCoeffs)
	got := append([]float64(nil), input...)
	block.ProcessBlock(got[:100])
	block.ProcessBlock(got[100:])
	testutil.RequireSliceNearlyEqual(t, got, want, eps)

	to := NewSection(traceCoeffs)
	dst := make([]float64, len(input))
	to.ProcessBlockTo(dst, input)
	testutil.RequireSliceNearlyEqual(t, dst, want, eps)
}

func TestDirectFormIMatchesSection(t *testing.T) {
	c := Lowpass(1200, 2, 48000)
	input := testutil.DeterministicNoise(5, 1, 512)

	s := NewSection(c)
	var f DirectFormI
	for i, x := range input {
		a := s.ProcessSample(x)
		b := f.ProcessSample(c, x)
		if math.Abs(a-b) > 1e-9 {
			t.Fatalf("sample %d: DF-II-T %v, DF-I %v", i, a, b)
		}
	}

	f.Reset()
	if f.State() != [4]float64{} {
		t.Fatalf("state = %v after reset", f.State())
	}
}

func TestStateRoundTrip(t *testing.T) {
	s := NewSection(traceCoeffs)
	s.ProcessSample(1)
	saved := s.State()

	a := s.ProcessSample(0.3)
	s.SetState(saved)
	b := s.ProcessSample(0.3)
	if a != b {
		t.Fatalf("restored state produced %v, want %v", b, a)
	}

	s.Reset()
	if s.State() != [2]float64{} {
		t.Fatalf("state = %v after reset", s.State())
	}
}

func TestDirectFormISetOutputHistory(t *testing.T) {
	var f DirectFormI
	f.ProcessSample(traceCoeffs, 1)
	f.ProcessSample(traceCoeffs, 0.5)

	f.SetOutputHistory(0.25, -0.125)
	st := f.State()
	if st[2] != 0.25 || st[3] != -0.125 {
		t.Fatalf("output history = %v/%v, want 0.25/-0.125", st[2], st[3])
	}
	if st[0] != 0.5 || st[1] != 1 {
		t.Fatalf("input history changed: %v/%v", st[0], st[1])
	}

	c := traceCoeffs
	want := c.B0*0 + c.B1*0.5 + c.B2*1 - c.A1*0.25 - c.A2*-0.125
	if got := f.ProcessSample(c, 0); math.Abs(got-want) > 1e-15 {
		t.Fatalf("next sample = %v, want %v", got, want)
	}
}

func TestLerp(t *testing.T) {
	a := Lowpass(1000, 0.7, 48000)
	b := Lowpass(2000, 4, 48000)

	if a.Lerp(b, 0) != a {
		t.Fatal("Lerp(0) must return the receiver")
	}

	end := a.Lerp(b, 1)
	for _, d := range []float64{end.B0 - b.B0, end.B1 - b.B1, end.B2 - b.B2, end.A1 - b.A1, end.A2 - b.A2} {
		if math.Abs(d) > eps {
			t.Fatalf("Lerp(1) = %+v, want %+v", end, b)
		}
	}

	for _, f := range []float64{0.1, 0.5, 0.9} {
		if !a.Lerp(b, f).Stable() {
			t.Fatalf("interpolated section at %v is unstable", f)
		}
	}
}

func TestStable(t *testing.T) {
	tests := []struct {
		name string
		c    Coefficients
		want bool
	}{
		{name: "fir", c: Coefficients{B0: 1}, want: true},
		{name: "trace", c: traceCoeffs, want: true},
		{name: "pole_on_circle", c: Coefficients{A2: 1}, want: false},
		{name: "real_pole_outside", c: Coefficients{A1: -2.1, A2: 1.0}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Stable(); got != tt.want {
				t.Fatalf("Stable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func BenchmarkProcessSample(b *testing.B) {
	s := NewSection(traceCoeffs)
	x := 1.0

	b.ReportAllocs()
	for b.Loop() {
		x = s.ProcessSample(x)
	}
	_ = x
}

func BenchmarkDirectFormI(b *testing.B) {
	c := Lowpass(1000, 1, 96000)
	var f DirectFormI
	x := 1.0

	b.ReportAllocs()
	for b.Loop() {
		x = f.ProcessSample(c, x) + 1e-3
	}
	_ = x
}
