package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-swarm/dsp/core"
)

const (
	defaultAttack = 0.1
	defaultDecay  = 1.0
	defaultCurve  = 2.0
	defaultScale  = 1.0

	// MinTime is the shortest attack or decay time in seconds.
	MinTime = 0.001
	// MaxTime is the longest attack or decay time in seconds, and the upper
	// bound of the externally summed additions.
	MaxTime = 5.0
	// MinCurve and MaxCurve bound the ramp exponent.
	MinCurve = 1.0
	MaxCurve = 4.0

	// floor is the decay level below which the envelope snaps to Off.
	floor = 0.0001
)

// Stage is the envelope state.
type Stage int

const (
	// StageOff is the idle state; output is exactly zero.
	StageOff Stage = iota
	// StageAttack ramps from the current level to full scale.
	StageAttack
	// StageDecay ramps from full scale to silence.
	StageDecay
)

func (s Stage) String() string {
	switch s {
	case StageOff:
		return "off"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	default:
		return "unknown"
	}
}

// Retrigger selects how Trigger behaves while the envelope is still sounding.
type Retrigger int

const (
	// RetriggerContinuous restarts the attack ramp at the current output
	// level.
	RetriggerContinuous Retrigger = iota
	// RetriggerRestart always restarts the attack ramp from zero.
	RetriggerRestart
)

func (r Retrigger) String() string {
	switch r {
	case RetriggerContinuous:
		return "continuous"
	case RetriggerRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	attack    float64
	decay     float64
	curve     float64
	scale     float64
	retrigger Retrigger
}

func defaultConfig() config {
	return config{
		attack:    defaultAttack,
		decay:     defaultDecay,
		curve:     defaultCurve,
		scale:     defaultScale,
		retrigger: RetriggerContinuous,
	}
}

// WithAttack sets the attack time in seconds, in [0.001, 5].
func WithAttack(seconds float64) Option {
	return func(cfg *config) error {
		if err := validateRange(seconds, MinTime, MaxTime, "attack"); err != nil {
			return err
		}

		cfg.attack = seconds

		return nil
	}
}

// WithDecay sets the decay time in seconds, in [0.001, 5].
func WithDecay(seconds float64) Option {
	return func(cfg *config) error {
		if err := validateRange(seconds, MinTime, MaxTime, "decay"); err != nil {
			return err
		}

		cfg.decay = seconds

		return nil
	}
}

// WithCurve sets the ramp exponent, in [1, 4].
func WithCurve(curve float64) Option {
	return func(cfg *config) error {
		if err := validateRange(curve, MinCurve, MaxCurve, "curve"); err != nil {
			return err
		}

		cfg.curve = curve

		return nil
	}
}

// WithScale sets the output gain, in [0, 1].
func WithScale(scale float64) Option {
	return func(cfg *config) error {
		if err := validateRange(scale, 0, 1, "scale"); err != nil {
			return err
		}

		cfg.scale = scale

		return nil
	}
}

// WithRetrigger selects the retrigger policy.
func WithRetrigger(r Retrigger) Option {
	return func(cfg *config) error {
		if r != RetriggerContinuous && r != RetriggerRestart {
			return fmt.Errorf("envelope: invalid retrigger policy: %d", r)
		}

		cfg.retrigger = r

		return nil
	}
}

// Envelope is an attack/decay envelope generator.
//
// Trigger and Release are the only operations that change the stage from
// outside; ProcessSample advances time by one sample.
type Envelope struct {
	sampleRate float64
	increment  float64

	stage     Stage
	stageTime float64

	attack    float64
	attackAdd float64
	decay     float64
	decayAdd  float64
	curve     float64
	scale     float64
	retrigger Retrigger

	out float64
}

// New constructs an envelope in the Off stage.
func New(sampleRate float64, opts ...Option) (*Envelope, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("envelope: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Envelope{
		sampleRate: sampleRate,
		increment:  1 / sampleRate,
		attack:     cfg.attack,
		decay:      cfg.decay,
		curve:      cfg.curve,
		scale:      cfg.scale,
		retrigger:  cfg.retrigger,
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (e *Envelope) SampleRate() float64 { return e.sampleRate }

// Stage returns the current stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Output returns the most recent unscaled output level in [0, 1].
func (e *Envelope) Output() float64 { return e.out }

// Attack returns the attack time in seconds.
func (e *Envelope) Attack() float64 { return e.attack }

// AttackAdd returns the externally summed attack time in seconds.
func (e *Envelope) AttackAdd() float64 { return e.attackAdd }

// Decay returns the decay time in seconds.
func (e *Envelope) Decay() float64 { return e.decay }

// DecayAdd returns the externally summed decay time in seconds.
func (e *Envelope) DecayAdd() float64 { return e.decayAdd }

// Curve returns the ramp exponent.
func (e *Envelope) Curve() float64 { return e.curve }

// Scale returns the output gain.
func (e *Envelope) Scale() float64 { return e.scale }

// RetriggerPolicy returns the retrigger policy.
func (e *Envelope) RetriggerPolicy() Retrigger { return e.retrigger }

// SetSampleRate updates the sample rate. Stage progress in seconds is kept.
func (e *Envelope) SetSampleRate(sampleRate float64) error {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return fmt.Errorf("envelope: sample rate must be > 0 and finite: %f", sampleRate)
	}

	e.sampleRate = sampleRate
	e.increment = 1 / sampleRate

	return nil
}

// SetAttack sets the attack time, clamped to [0.001, 5] seconds.
func (e *Envelope) SetAttack(seconds float64) {
	e.attack = core.Clamp(seconds, MinTime, MaxTime)
}

// AddAttack sets the modulation added to the attack time, clamped to [0, 5].
func (e *Envelope) AddAttack(seconds float64) {
	e.attackAdd = core.Clamp(seconds, 0, MaxTime)
}

// SetDecay sets the decay time, clamped to [0.001, 5] seconds.
func (e *Envelope) SetDecay(seconds float64) {
	e.decay = core.Clamp(seconds, MinTime, MaxTime)
}

// AddDecay sets the modulation added to the decay time, clamped to [0, 5].
func (e *Envelope) AddDecay(seconds float64) {
	e.decayAdd = core.Clamp(seconds, 0, MaxTime)
}

// SetScale sets the output gain, clamped to [0, 1].
func (e *Envelope) SetScale(scale float64) {
	e.scale = core.Clamp01(scale)
}

// SetCurve sets the ramp exponent, clamped to [1, 4].
func (e *Envelope) SetCurve(curve float64) {
	e.curve = core.Clamp(curve, MinCurve, MaxCurve)
}

// SetRetrigger selects the retrigger policy. Unknown values are ignored.
func (e *Envelope) SetRetrigger(r Retrigger) {
	if r == RetriggerContinuous || r == RetriggerRestart {
		e.retrigger = r
	}
}

// Reset returns the envelope to Off with zero output. Parameters are kept.
func (e *Envelope) Reset() {
	e.stage = StageOff
	e.stageTime = 0
	e.out = 0
}

// Trigger starts the attack stage.
//
// With RetriggerContinuous and a non-zero output, the attack clock is seeded
// so that the ramp resumes from the current level.
func (e *Envelope) Trigger() {
	if e.out == 0 || e.retrigger == RetriggerRestart {
		e.stageTime = 0
	} else {
		e.stageTime = math.Pow(e.out, 1/e.curve) * (e.attack + e.attackAdd)
	}

	if e.retrigger == RetriggerRestart {
		e.out = 0
	}

	e.stage = StageAttack
}

// Release cuts the attack short and starts the decay stage. It has no effect
// when the envelope is Off or already decaying.
func (e *Envelope) Release() {
	if e.stage == StageOff || e.stage == StageDecay {
		return
	}

	e.stageTime = 0
	e.stage = StageDecay
}

// ProcessSample advances the envelope by one sample and returns the scaled
// output.
func (e *Envelope) ProcessSample() float64 {
	if e.stage == StageAttack {
		e.stageTime += e.increment

		out := math.Pow(e.stageTime/(e.attack+e.attackAdd), e.curve)
		if out >= 1 {
			out = 1
			e.stageTime = 0
			e.stage = StageDecay
		}

		e.out = out
	}

	if e.stage == StageDecay {
		e.stageTime += e.increment

		t := e.stageTime / (e.decay + e.decayAdd)
		if t > 1 {
			t = 1
		}

		out := math.Pow(1-t, e.curve)
		if out <= floor {
			out = 0
			e.stageTime = 0
			e.stage = StageOff
		}

		e.out = out
	}

	return e.out * e.scale
}

// ProcessBlock fills dst with consecutive envelope samples.
func (e *Envelope) ProcessBlock(dst []float64) {
	for i := range dst {
		dst[i] = e.ProcessSample()
	}
}

func validateRange(value, min, max float64, name string) error {
	if !core.IsFinite(value) {
		return fmt.Errorf("envelope: %s must be finite: %v", name, value)
	}

	if value < min || value > max {
		return fmt.Errorf("envelope: %s must be in [%g, %g]: %f", name, min, max, value)
	}

	return nil
}
