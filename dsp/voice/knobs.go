package voice

import (
	"math"

	"github.com/cwbudde/algo-swarm/dsp/core"
	"github.com/cwbudde/algo-swarm/dsp/envelope"
)

// Knob identifies a normalized front-panel control.
type Knob int

const (
	KnobAttack Knob = iota
	KnobDecay
	KnobCurve
	KnobCutoff
	KnobResonance
	KnobEnvAmount
	KnobDetune
	KnobFilterAttack
	KnobFilterDecay

	knobCount
)

var knobNames = [knobCount]string{
	"attack", "decay", "curve", "cutoff", "resonance",
	"env-amount", "detune", "filter-attack", "filter-decay",
}

func (k Knob) String() string {
	if k < 0 || k >= knobCount {
		return "unknown"
	}

	return knobNames[k]
}

// SetKnob sets knob k from a position in [0, 1]. Out-of-range positions are
// clamped and unknown knobs ignored.
//
// Times use a square-root log taper over [0.001, 5] seconds, the curve is
// linear over [1, 4] and the remaining knobs pass through.
func (v *Voice) SetKnob(k Knob, pos float64) {
	if k < 0 || k >= knobCount {
		return
	}

	pos = core.Clamp01(pos)
	v.knobs[k] = pos

	switch k {
	case KnobAttack:
		v.ampEnv.SetAttack(timeTaper(pos))
	case KnobDecay:
		v.ampEnv.SetDecay(timeTaper(pos))
	case KnobCurve:
		c := core.LinearScale(pos, envelope.MinCurve, envelope.MaxCurve)
		v.ampEnv.SetCurve(c)
		v.filterEnv.SetCurve(c)
	case KnobCutoff:
		v.filter.SetFreq(pos)
	case KnobResonance:
		v.filter.SetQ(pos)
	case KnobEnvAmount:
		v.SetEnvAmount(pos)
	case KnobDetune:
		v.osc.SetDetune(pos)
	case KnobFilterAttack:
		v.filterEnv.SetAttack(timeTaper(pos))
	case KnobFilterDecay:
		v.filterEnv.SetDecay(timeTaper(pos))
	}
}

// Knob returns the last position set for k.
func (v *Voice) Knob(k Knob) float64 {
	if k < 0 || k >= knobCount {
		return 0
	}

	return v.knobs[k]
}

// syncKnobs derives knob positions from the current parameters.
func (v *Voice) syncKnobs() {
	v.knobs[KnobAttack] = timePosition(v.ampEnv.Attack())
	v.knobs[KnobDecay] = timePosition(v.ampEnv.Decay())
	v.knobs[KnobCurve] = (v.ampEnv.Curve() - envelope.MinCurve) / (envelope.MaxCurve - envelope.MinCurve)
	v.knobs[KnobCutoff] = v.filter.Left().FreqPosition()
	v.knobs[KnobResonance] = v.filter.Left().QPosition()
	v.knobs[KnobEnvAmount] = v.envAmount
	v.knobs[KnobDetune] = v.osc.Detune()
	v.knobs[KnobFilterAttack] = timePosition(v.filterEnv.Attack())
	v.knobs[KnobFilterDecay] = timePosition(v.filterEnv.Decay())
}

// timeTaper maps pos to exp(log(min) + sqrt(pos)*(log(max)-log(min))).
func timeTaper(pos float64) float64 {
	lo := math.Log(envelope.MinTime)
	hi := math.Log(envelope.MaxTime)

	return math.Exp(lo + math.Sqrt(core.Clamp01(pos))*(hi-lo))
}

func timePosition(seconds float64) float64 {
	p := core.LogPosition(seconds, envelope.MinTime, envelope.MaxTime)
	return p * p
}
