package voice

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-swarm/dsp/core"
	"github.com/cwbudde/algo-swarm/dsp/envelope"
	"github.com/cwbudde/algo-swarm/dsp/filter/lowpass"
	"github.com/cwbudde/algo-swarm/dsp/osc"
)

const (
	defaultEnvAmount  = 0.5
	defaultInputGain  = 0.5
	defaultOutputGain = 1.0

	// Filter envelope defaults: a short sweep.
	defaultFilterAttack = 0.005
	defaultFilterDecay  = 0.3

	// velocityRamp is the time a full-scale velocity change takes to reach
	// the amplitude path.
	velocityRamp = 0.005
)

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	processor  core.ProcessorConfig
	variant    lowpass.Variant
	envAmount  float64
	inputGain  float64
	outputGain float64
	voices     int
}

func defaultConfig() config {
	return config{
		processor:  core.DefaultProcessorConfig(),
		variant:    lowpass.VariantLadder,
		envAmount:  defaultEnvAmount,
		inputGain:  defaultInputGain,
		outputGain: defaultOutputGain,
		voices:     osc.MaxVoices,
	}
}

// WithProcessor applies shared processor options (sample rate, block size).
func WithProcessor(opts ...core.ProcessorOption) Option {
	return func(cfg *config) error {
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.processor)
			}
		}

		return nil
	}
}

// WithVariant selects the filter topology.
func WithVariant(variant lowpass.Variant) Option {
	return func(cfg *config) error {
		if _, err := lowpass.ParseVariant(variant.String()); err != nil {
			return fmt.Errorf("voice: invalid filter variant: %d", variant)
		}

		cfg.variant = variant

		return nil
	}
}

// WithEnvAmount sets how far the filter envelope moves the cutoff position,
// in [0, 1].
func WithEnvAmount(amount float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(amount) || amount < 0 || amount > 1 {
			return fmt.Errorf("voice: envelope amount must be in [0, 1]: %f", amount)
		}

		cfg.envAmount = amount

		return nil
	}
}

// WithInputGain sets the gain applied before the filters.
func WithInputGain(gain float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(gain) || gain < 0 {
			return fmt.Errorf("voice: input gain must be >= 0 and finite: %f", gain)
		}

		cfg.inputGain = gain

		return nil
	}
}

// WithOutputGain sets the gain applied to rendered blocks.
func WithOutputGain(gain float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(gain) || gain < 0 {
			return fmt.Errorf("voice: output gain must be >= 0 and finite: %f", gain)
		}

		cfg.outputGain = gain

		return nil
	}
}

// WithVoices sets the oscillator unison voice count (1, 3, 5 or 7).
func WithVoices(n int) Option {
	return func(cfg *config) error {
		if !osc.ValidVoiceCount(n) {
			return fmt.Errorf("voice: unison voices must be odd in [1, %d]: %d", osc.MaxVoices, n)
		}

		cfg.voices = n

		return nil
	}
}

// Voice is a monophonic oscillator, envelope and filter pipeline.
type Voice struct {
	sampleRate float64
	blockSize  int

	ampEnv    *envelope.Envelope
	filterEnv *envelope.Envelope
	osc       *osc.Oscillator
	filter    *lowpass.Stereo

	envAmount  float64
	inputGain  float64
	outputGain float64

	note  int
	gate  bool
	peak  float64

	velocity float64 // target gain, velocity/127
	velGain  float64 // ramped gain applied to the amplitude envelope
	velStep  float64
	knobs [knobCount]float64

	left  []float64
	right []float64
}

// New constructs a silent voice.
func New(opts ...Option) (*Voice, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	sr := cfg.processor.SampleRate

	ampEnv, err := envelope.New(sr)
	if err != nil {
		return nil, fmt.Errorf("voice: amplitude envelope: %w", err)
	}

	filterEnv, err := envelope.New(sr,
		envelope.WithAttack(defaultFilterAttack),
		envelope.WithDecay(defaultFilterDecay),
		envelope.WithRetrigger(envelope.RetriggerRestart),
	)
	if err != nil {
		return nil, fmt.Errorf("voice: filter envelope: %w", err)
	}

	o, err := osc.New(sr, osc.WithVoices(cfg.voices), osc.WithAmp(0))
	if err != nil {
		return nil, fmt.Errorf("voice: oscillator: %w", err)
	}

	filter, err := lowpass.NewStereo(sr, lowpass.WithVariant(cfg.variant))
	if err != nil {
		return nil, fmt.Errorf("voice: filter: %w", err)
	}

	v := &Voice{
		sampleRate: sr,
		blockSize:  cfg.processor.BlockSize,
		ampEnv:     ampEnv,
		filterEnv:  filterEnv,
		osc:        o,
		filter:     filter,
		envAmount:  cfg.envAmount,
		inputGain:  cfg.inputGain,
		outputGain: cfg.outputGain,
		note:       core.ReferenceNote,
		velStep:    1 / (velocityRamp * sr),
		left:       make([]float64, cfg.processor.BlockSize),
		right:      make([]float64, cfg.processor.BlockSize),
	}
	v.syncKnobs()

	return v, nil
}

// SampleRate returns the sample rate in Hz.
func (v *Voice) SampleRate() float64 { return v.sampleRate }

// BlockSize returns the number of frames rendered per inner block.
func (v *Voice) BlockSize() int { return v.blockSize }

// Note returns the most recently triggered note.
func (v *Voice) Note() int { return v.note }

// Gate reports whether the current note is held.
func (v *Voice) Gate() bool { return v.gate }

// Velocity returns the gain of the last note-on, velocity/127.
func (v *Voice) Velocity() float64 { return v.velocity }

// VelocityGain returns the ramped velocity gain currently applied.
func (v *Voice) VelocityGain() float64 { return v.velGain }

// EnvAmount returns the filter envelope amount.
func (v *Voice) EnvAmount() float64 { return v.envAmount }

// AmpEnvelope exposes the amplitude envelope.
func (v *Voice) AmpEnvelope() *envelope.Envelope { return v.ampEnv }

// FilterEnvelope exposes the filter envelope.
func (v *Voice) FilterEnvelope() *envelope.Envelope { return v.filterEnv }

// Oscillator exposes the oscillator.
func (v *Voice) Oscillator() *osc.Oscillator { return v.osc }

// Filter exposes the stereo filter.
func (v *Voice) Filter() *lowpass.Stereo { return v.filter }

// Peak returns the largest absolute sample rendered by ProcessBlock since
// the last ResetPeak.
func (v *Voice) Peak() float64 { return v.peak }

// ResetPeak clears the peak meter.
func (v *Voice) ResetPeak() { v.peak = 0 }

// SetEnvAmount sets the filter envelope amount, clamped to [0, 1].
func (v *Voice) SetEnvAmount(amount float64) {
	v.envAmount = core.Clamp01(amount)
}

// Reset silences the voice and clears all DSP state. Parameters are kept.
func (v *Voice) Reset() {
	v.ampEnv.Reset()
	v.filterEnv.Reset()
	v.osc.Reset()
	v.filter.AddFreq(0)
	v.filter.Reset()
	v.gate = false
	v.peak = 0
	v.velGain = v.velocity
}

// ProcessSample renders one stereo frame, output gain included.
func (v *Voice) ProcessSample() (left, right float64) {
	left, right = v.frame()
	return left * v.outputGain, right * v.outputGain
}

// ProcessBlock applies events, then renders len(dst)/2 interleaved frames in
// chunks of the block size.
func (v *Voice) ProcessBlock(dst []float32, events []Event) {
	for _, ev := range events {
		v.Apply(ev)
	}

	frames := len(dst) / 2
	for start := 0; start < frames; start += v.blockSize {
		n := min(v.blockSize, frames-start)

		left := v.left[:n]
		right := v.right[:n]
		for i := range n {
			left[i], right[i] = v.frame()
		}

		vecmath.ScaleBlockInPlace(left, v.outputGain)
		vecmath.ScaleBlockInPlace(right, v.outputGain)
		v.peak = max(v.peak, vecmath.MaxAbs(left), vecmath.MaxAbs(right))

		core.Interleave(dst[2*start:], left, right)
	}
}

// Render fills planar buffers frame by frame. It renders min(len(left),
// len(right)) frames.
func (v *Voice) Render(left, right []float64) {
	n := min(len(left), len(right))
	for i := range n {
		left[i], right[i] = v.ProcessSample()
	}
}

func (v *Voice) frame() (left, right float64) {
	v.velGain += core.Clamp(v.velocity-v.velGain, -v.velStep, v.velStep)
	v.osc.SetAmp(v.ampEnv.ProcessSample() * v.velGain)
	v.filter.AddFreq(v.envAmount * v.filterEnv.ProcessSample())

	left, right = v.osc.ProcessSample()

	return v.filter.ProcessSample(left*v.inputGain, right*v.inputGain)
}
