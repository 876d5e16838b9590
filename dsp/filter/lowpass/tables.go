package lowpass

import (
	"math"

	"github.com/cwbudde/algo-swarm/dsp/filter/biquad"
	"github.com/cwbudde/algo-swarm/dsp/filter/lut"
)

const (
	minHz = 20.0
	maxHz = 20000.0

	// maxCutoffRatio keeps designs below Nyquist at low sample rates.
	maxCutoffRatio = 0.45
)

var (
	// BiquadGrid is the sampling lattice for VariantBiquad.
	BiquadGrid = lut.Grid{FreqSteps: 512, QSteps: 32, MinHz: minHz, MaxHz: maxHz, MinQ: 0.2, MaxQ: 5}
	// SVFGrid is the sampling lattice for VariantSVF.
	SVFGrid = lut.Grid{FreqSteps: 512, QSteps: 32, MinHz: minHz, MaxHz: maxHz, MinQ: 0.5, MaxQ: 10}
	// LadderGrid is the sampling lattice for VariantLadder. Its Q axis is
	// resonance as a fraction of the self-oscillation feedback.
	LadderGrid = lut.Grid{FreqSteps: 384, QSteps: 64, MinHz: minHz, MaxHz: maxHz, MinQ: 0, MaxQ: 1}
)

var (
	biquadTables = lut.NewRegistry[biquad.Coefficients](BiquadGrid, DesignBiquad)
	svfTables    = lut.NewRegistry[SVFCoefficients](SVFGrid, DesignSVF)
	ladderTables = lut.NewRegistry[LadderCoefficients](LadderGrid, newLadderDesigner())
)

// BiquadTable returns the shared VariantBiquad table for sampleRate.
func BiquadTable(sampleRate float64) (*lut.Table[biquad.Coefficients], error) {
	return biquadTables.Get(sampleRate)
}

// SVFTable returns the shared VariantSVF table for sampleRate.
func SVFTable(sampleRate float64) (*lut.Table[SVFCoefficients], error) {
	return svfTables.Get(sampleRate)
}

// LadderTable returns the shared VariantLadder table for sampleRate.
func LadderTable(sampleRate float64) (*lut.Table[LadderCoefficients], error) {
	return ladderTables.Get(sampleRate)
}

// DesignBiquad returns RBJ low-pass coefficients.
func DesignBiquad(hz, q, sampleRate float64) biquad.Coefficients {
	return biquad.Lowpass(limitHz(hz, sampleRate), q, sampleRate)
}

// SVFCoefficients are the trapezoidal state-variable filter gains.
type SVFCoefficients struct {
	G float64 // tan(pi*fc/fs)
	R float64 // damping, 1/(2Q)
}

// Lerp blends towards to.
func (c SVFCoefficients) Lerp(to SVFCoefficients, t float64) SVFCoefficients {
	return SVFCoefficients{
		G: c.G + (to.G-c.G)*t,
		R: c.R + (to.R-c.R)*t,
	}
}

// DesignSVF returns state-variable coefficients for cutoff hz and quality q.
func DesignSVF(hz, q, sampleRate float64) SVFCoefficients {
	return SVFCoefficients{
		G: math.Tan(math.Pi * limitHz(hz, sampleRate) / sampleRate),
		R: 1 / (2 * q),
	}
}

func limitHz(hz, sampleRate float64) float64 {
	return math.Min(hz, maxCutoffRatio*sampleRate)
}
