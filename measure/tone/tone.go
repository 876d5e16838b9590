package tone

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

var (
	// ErrEmptySignal is returned for zero-length input.
	ErrEmptySignal = errors.New("tone: signal must not be empty")
	// ErrNoCrossings is returned when a signal has fewer than two rising
	// zero crossings.
	ErrNoCrossings = errors.New("tone: fewer than two rising zero crossings")
)

// harmonicGuardBins is the half-width, in bins, of the region attributed to
// each harmonic by InharmonicRatio. Hann side lobes are below -40 dB past it.
const harmonicGuardBins = 4

// Spectrum returns the magnitude of bins [0, N/2] of the Hann-windowed,
// zero-padded signal, where N is the FFT size.
func Spectrum(signal []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}

	fftSize := nextPowerOf2(len(signal))
	if fftSize < 2 {
		fftSize = 2
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("tone: failed to create FFT plan: %w", err)
	}

	in := make([]complex128, fftSize)
	n := len(signal)
	for i, x := range signal {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
		in[i] = complex(x*w, 0)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("tone: forward FFT: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	return mag, nil
}

// FundamentalHz estimates the frequency of the strongest spectral peak above
// DC, refined by parabolic interpolation on log magnitudes.
func FundamentalHz(signal []float64, sampleRate float64) (float64, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("tone: sample rate must be > 0 and finite: %f", sampleRate)
	}

	mag, err := Spectrum(signal)
	if err != nil {
		return 0, err
	}

	fftSize := 2 * (len(mag) - 1)
	binHz := sampleRate / float64(fftSize)

	peak := 1
	for i := 2; i < len(mag)-1; i++ {
		if mag[i] > mag[peak] {
			peak = i
		}
	}

	if mag[peak] == 0 {
		return 0, fmt.Errorf("tone: no spectral peak: %w", ErrEmptySignal)
	}

	offset := 0.0
	if peak > 1 && peak < len(mag)-1 {
		a := logMag(mag[peak-1])
		b := logMag(mag[peak])
		c := logMag(mag[peak+1])

		if den := a - 2*b + c; den != 0 {
			offset = 0.5 * (a - c) / den
		}
	}

	return (float64(peak) + offset) * binHz, nil
}

// ZeroCrossingPeriod returns the mean distance in samples between rising zero
// crossings, with sub-sample linear interpolation.
func ZeroCrossingPeriod(signal []float64) (float64, error) {
	if len(signal) == 0 {
		return 0, ErrEmptySignal
	}

	first, last := -1.0, -1.0
	count := 0

	for i := 1; i < len(signal); i++ {
		prev, cur := signal[i-1], signal[i]
		if prev < 0 && cur >= 0 {
			pos := float64(i-1) + prev/(prev-cur)
			if count == 0 {
				first = pos
			}

			last = pos
			count++
		}
	}

	if count < 2 {
		return 0, ErrNoCrossings
	}

	return (last - first) / float64(count-1), nil
}

// InharmonicRatio returns the fraction of spectral energy in [20 Hz, Nyquist]
// that lies outside the harmonic series of f0. For a band-limited periodic
// tone it is close to zero; aliasing raises it.
func InharmonicRatio(signal []float64, sampleRate, f0 float64) (float64, error) {
	if f0 <= 0 || sampleRate <= 0 {
		return 0, fmt.Errorf("tone: f0 and sample rate must be > 0: %f, %f", f0, sampleRate)
	}

	mag, err := Spectrum(signal)
	if err != nil {
		return 0, err
	}

	fftSize := 2 * (len(mag) - 1)
	binHz := sampleRate / float64(fftSize)
	lowBin := int(math.Ceil(20 / binHz))
	// Zero padding widens the main lobe in bins; the guard follows the
	// unpadded resolution.
	guardHz := harmonicGuardBins * sampleRate / float64(len(signal))

	total, outside := 0.0, 0.0
	for i := lowBin; i < len(mag); i++ {
		e := mag[i] * mag[i]
		total += e

		hz := float64(i) * binHz
		k := math.Round(hz / f0)
		if k < 1 || math.Abs(hz-k*f0) > guardHz {
			outside += e
		}
	}

	if total == 0 {
		return 0, nil
	}

	return outside / total, nil
}

// Peak returns the largest absolute sample value.
func Peak(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return vecmath.MaxAbs(signal)
}

// RMS returns the root-mean-square level.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(vecmath.DotProduct(signal, signal) / float64(len(signal)))
}

func logMag(x float64) float64 {
	if x <= 0 {
		return -300
	}

	return math.Log(x)
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
