package tone

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-swarm/internal/testutil"
)

func TestFundamentalHzSine(t *testing.T) {
	tests := []struct {
		name string
		hz   float64
		sr   float64
	}{
		{name: "1k_48k", hz: 1000, sr: 48000},
		{name: "440_96k", hz: 440, sr: 96000},
		{name: "off_bin", hz: 1234.5, sr: 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := testutil.DeterministicSine(tt.hz, tt.sr, 0.8, 16384)

			got, err := FundamentalHz(sig, tt.sr)
			if err != nil {
				t.Fatalf("FundamentalHz() error = %v", err)
			}

			binHz := tt.sr / 16384
			if math.Abs(got-tt.hz) > 0.1*binHz {
				t.Fatalf("FundamentalHz() = %v, want %v (bin %.2f Hz)", got, tt.hz, binHz)
			}
		})
	}
}

func TestZeroCrossingPeriod(t *testing.T) {
	sig := testutil.DeterministicSine(1000, 48000, 1, 4800)

	got, err := ZeroCrossingPeriod(sig)
	if err != nil {
		t.Fatalf("ZeroCrossingPeriod() error = %v", err)
	}

	if math.Abs(got-48) > 1e-3 {
		t.Fatalf("period = %v, want 48", got)
	}
}

func TestZeroCrossingPeriodErrors(t *testing.T) {
	if _, err := ZeroCrossingPeriod(nil); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("err = %v, want ErrEmptySignal", err)
	}

	if _, err := ZeroCrossingPeriod(testutil.DC(0.5, 64)); !errors.Is(err, ErrNoCrossings) {
		t.Fatalf("err = %v, want ErrNoCrossings", err)
	}
}

func TestInharmonicRatioPureTone(t *testing.T) {
	sig := testutil.DeterministicSine(1500, 48000, 1, 16384)

	r, err := InharmonicRatio(sig, 48000, 1500)
	if err != nil {
		t.Fatalf("InharmonicRatio() error = %v", err)
	}

	if r > 1e-3 {
		t.Fatalf("pure tone inharmonic ratio = %v, want < 1e-3", r)
	}
}

func TestInharmonicRatioDetectsForeignTone(t *testing.T) {
	a := testutil.DeterministicSine(1000, 48000, 1, 16384)
	b := testutil.DeterministicSine(1730, 48000, 1, 16384)

	mix := make([]float64, len(a))
	for i := range mix {
		mix[i] = a[i] + b[i]
	}

	r, err := InharmonicRatio(mix, 48000, 1000)
	if err != nil {
		t.Fatalf("InharmonicRatio() error = %v", err)
	}

	if math.Abs(r-0.5) > 0.02 {
		t.Fatalf("inharmonic ratio = %v, want ~0.5", r)
	}
}

func TestSpectrumEmpty(t *testing.T) {
	if _, err := Spectrum(nil); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("err = %v, want ErrEmptySignal", err)
	}
}

func TestPeakAndRMS(t *testing.T) {
	sig := testutil.DeterministicSine(1000, 48000, 1, 4800)

	if p := Peak(sig); math.Abs(p-1) > 1e-9 {
		t.Fatalf("Peak() = %v, want 1", p)
	}

	if r := RMS(sig); math.Abs(r-1/math.Sqrt2) > 1e-9 {
		t.Fatalf("RMS() = %v, want %v", r, 1/math.Sqrt2)
	}

	if Peak(nil) != 0 || RMS(nil) != 0 {
		t.Fatal("expected zero level for empty signal")
	}
}
