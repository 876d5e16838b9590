package lowpass

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-swarm/dsp/core"
	"github.com/cwbudde/algo-swarm/dsp/filter/biquad"
	"github.com/cwbudde/algo-swarm/dsp/filter/onepole"
)

const (
	ladderStages = 4

	feedbackHighpassHz = 150.0
	phaseAllpassHz     = 14.0
	notchHz            = 7.5
	notchOctaves       = 4.7

	// maxLadderG bounds the tuning search. Tuned gains stay well below it
	// for the whole grid at 44.1 kHz and above.
	maxLadderG = 0.5
	// maxLadderK caps the feedback gain where the high-pass starves the loop
	// at low cutoffs.
	maxLadderK = 100.0
	// passbandDivisor places the level-compensation reference point at fc/4.
	passbandDivisor = 4
	tuneIterations  = 60

	// shapeLimit is where the cubic x - x^3/6 reaches its maximum.
	shapeLimit = math.Sqrt2
	stateLimit = 32.0
)

// LadderCoefficients are the per-cell ladder gains.
type LadderCoefficients struct {
	G float64 // integrator gain
	K float64 // feedback gain
	C float64 // output level compensation
}

// Lerp blends towards to.
func (c LadderCoefficients) Lerp(to LadderCoefficients, t float64) LadderCoefficients {
	return LadderCoefficients{
		G: c.G + (to.G-c.G)*t,
		K: c.K + (to.K-c.K)*t,
		C: c.C + (to.C-c.C)*t,
	}
}

// DesignLadder returns ladder gains for resonant frequency hz and resonance
// res in [0, 1].
//
// G places the -180 degree crossing of the feedback loop at hz, so the
// resonant peak and self-oscillation track the cutoff. K is res times the
// loop gain that reaches unity there. C restores the passband level that
// feedback removes below the cutoff.
func DesignLadder(hz, res, sampleRate float64) LadderCoefficients {
	g, kCrit := tuneLadder(hz, sampleRate)
	return ladderCell(g, kCrit, res, hz, sampleRate)
}

// newLadderDesigner returns a designer that reuses the tuning of the previous
// call when only the resonance changes. lut.New visits every resonance step
// of one frequency in a row. The closure is not safe for concurrent use; the
// registry serializes builds.
func newLadderDesigner() func(hz, res, sampleRate float64) LadderCoefficients {
	var lastHz, lastRate, lastG, lastK float64

	return func(hz, res, sampleRate float64) LadderCoefficients {
		if hz != lastHz || sampleRate != lastRate {
			lastG, lastK = tuneLadder(hz, sampleRate)
			lastHz, lastRate = hz, sampleRate
		}

		return ladderCell(lastG, lastK, res, hz, sampleRate)
	}
}

func ladderCell(g, kCrit, res, hz, sampleRate float64) LadderCoefficients {
	k := core.Clamp01(res) * kCrit
	hp := onepole.Highpass(feedbackHighpassHz, sampleRate)

	w := 2 * math.Pi * limitHz(hz, sampleRate) / sampleRate / passbandDivisor
	l, _ := ladderLoop(w, g, hp)

	// The chain has DC gain 1/5 and the output tap doubles y4.
	return LadderCoefficients{
		G: g,
		K: k,
		C: 2.5 * cmplx.Abs(1+complex(k, 0)*l),
	}
}

// tuneLadder finds the integrator gain whose loop phase is -180 degrees at hz
// and the feedback gain that makes the loop unity there.
func tuneLadder(hz, sampleRate float64) (g, kCrit float64) {
	hp := onepole.Highpass(feedbackHighpassHz, sampleRate)
	w := 2 * math.Pi * limitHz(hz, sampleRate) / sampleRate

	// Loop phase at a fixed frequency rises monotonically with g.
	g = maxLadderG
	if _, p := ladderLoop(w, g, hp); p >= -math.Pi {
		lo, hi := 0.0, maxLadderG
		for range tuneIterations {
			mid := 0.5 * (lo + hi)
			if _, p := ladderLoop(w, mid, hp); p < -math.Pi {
				lo = mid
			} else {
				hi = mid
			}
		}

		g = hi
	}

	l, _ := ladderLoop(w, g, hp)
	kCrit = maxLadderK
	if m := cmplx.Abs(l); m > 1/maxLadderK {
		kCrit = 1 / m
	}

	return g, kCrit
}

// ladderLoop returns the small-signal loop response z^-1 * H * HP at w and
// its unwrapped phase. H is the chain transfer y4/y0.
func ladderLoop(w, g float64, hp onepole.Coefficients) (complex128, float64) {
	h, phase := ladderChain(w, g)
	fb := hp.ResponseAt(w)
	z1 := cmplx.Exp(complex(0, -w))

	return z1 * h * fb, phase - w + cmplx.Phase(fb)
}

// ladderChain solves the coupled integrator update
//
//	y_i[n] = y_i[n-1] + g*(y_{i-1}[n] - 2*y_i[n-1] + y_{i+1}[n-1])
//
// for Y_1..Y_4 with Y_0 = 1 and Y_5 = 0. Each row is
// -g*Y_{i-1} + (1 - (1-2g)z^-1)*Y_i - g*z^-1*Y_{i+1} = 0, a tridiagonal
// system. The phase is summed over the stage ratios Y_i/Y_{i-1}, each of
// which stays within (-pi, pi), so the total is unwrapped.
func ladderChain(w, g float64) (complex128, float64) {
	if g <= 0 {
		return 0, math.Inf(-1)
	}

	z1 := cmplx.Exp(complex(0, -w))
	gc := complex(g, 0)
	diag := 1 - (1-2*gc)*z1
	upper := -gc * z1

	var cp, dp, y [ladderStages]complex128

	cp[0] = upper / diag
	dp[0] = gc / diag
	for i := 1; i < ladderStages; i++ {
		m := diag + gc*cp[i-1]
		cp[i] = upper / m
		dp[i] = gc * dp[i-1] / m
	}

	y[ladderStages-1] = dp[ladderStages-1]
	for i := ladderStages - 2; i >= 0; i-- {
		y[i] = dp[i] - cp[i]*y[i+1]
	}

	phase := cmplx.Phase(y[0])
	for i := 1; i < ladderStages; i++ {
		phase += cmplx.Phase(y[i] / y[i-1])
	}

	return y[ladderStages-1], phase
}

// ladderState is the integrator chain plus its fixed auxiliary sections.
type ladderState struct {
	y [ladderStages + 1]float64

	feedback onepole.Section
	allpass  onepole.Section
	notch    biquad.Section
}

func (s *ladderState) setup(sampleRate float64) {
	s.feedback = onepole.Section{Coefficients: onepole.Highpass(feedbackHighpassHz, sampleRate)}
	s.allpass = onepole.Section{Coefficients: onepole.Allpass(phaseAllpassHz, sampleRate)}
	s.notch = biquad.Section{Coefficients: biquad.Notch(notchHz, biquad.BandwidthToQ(notchOctaves), sampleRate)}
}

func (s *ladderState) reset() {
	s.y = [ladderStages + 1]float64{}
	s.feedback.Reset()
	s.allpass.Reset()
	s.notch.Reset()
}

func (s *ladderState) process(x float64, c LadderCoefficients) float64 {
	y := &s.y

	y[0] = -x - s.feedback.ProcessSample(c.K*shape(y[ladderStages]))
	for i := 1; i < ladderStages; i++ {
		y[i] = updateStage(y[i], c.G*(y[i-1]-2*y[i]+y[i+1]))
	}
	y[ladderStages] = updateStage(y[ladderStages], c.G*(y[ladderStages-1]-2*y[ladderStages]))

	// The tap scales by C rather than G: C restores the chain's 1/5 DC gain.
	out := s.allpass.ProcessSample(2 * c.C * y[ladderStages])

	return s.notch.ProcessSample(out)
}

func updateStage(y, dy float64) float64 {
	return clipState(core.FlushDenormals(y + dy))
}

// shape is a cubic soft clipper, flat beyond ±sqrt(2).
func shape(x float64) float64 {
	x = core.Clamp(x, -shapeLimit, shapeLimit)
	return x - x*x*x/6
}

func clipState(value float64) float64 {
	if value > stateLimit {
		return stateLimit
	}

	if value < -stateLimit {
		return -stateLimit
	}

	return value
}
