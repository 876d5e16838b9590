package osc

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-swarm/dsp/core"
)

const (
	// MaxVoices is the number of unison voices in the detune/pan tables.
	MaxVoices = 7

	defaultHz     = core.ReferenceHz
	defaultAmp    = 0.5
	defaultDetune = 0.0

	// maxRatio bounds the base frequency relative to the sample rate.
	maxRatio = 0.49
)

// Voice detune offsets in cents at full detune, and matching pan positions.
// Index 0 is the centre voice; pairs spread symmetrically.
var (
	detuneCents = [MaxVoices]float64{0, -3, 3, -7, 7, -12, 12}
	voicePans   = [MaxVoices]float64{0, -0.33, 0.33, -0.66, 0.66, -1, 1}
)

// Waveform selects the per-voice wave shape.
type Waveform int

const (
	// WaveformSaw is a PolyBLEP band-limited sawtooth.
	WaveformSaw Waveform = iota
	// WaveformSine is a sine evaluated directly from the phase.
	WaveformSine
)

func (w Waveform) String() string {
	switch w {
	case WaveformSaw:
		return "saw"
	case WaveformSine:
		return "sine"
	default:
		return "unknown"
	}
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	voices   int
	waveform Waveform
	amp      float64
	detune   float64
}

func defaultConfig() config {
	return config{
		voices:   MaxVoices,
		waveform: WaveformSaw,
		amp:      defaultAmp,
		detune:   defaultDetune,
	}
}

// WithVoices sets the unison voice count to 1, 3, 5 or 7. Only odd counts
// keep the centre voice plus complete ±cent/±pan pairs.
func WithVoices(n int) Option {
	return func(cfg *config) error {
		if !ValidVoiceCount(n) {
			return fmt.Errorf("osc: voice count must be odd in [1, %d]: %d", MaxVoices, n)
		}

		cfg.voices = n

		return nil
	}
}

// WithWaveform selects the wave shape.
func WithWaveform(w Waveform) Option {
	return func(cfg *config) error {
		if !validWaveform(w) {
			return fmt.Errorf("osc: invalid waveform: %d", w)
		}

		cfg.waveform = w

		return nil
	}
}

// WithAmp sets the initial output amplitude.
func WithAmp(amp float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(amp) {
			return fmt.Errorf("osc: amplitude must be finite: %v", amp)
		}

		cfg.amp = amp

		return nil
	}
}

// WithDetune sets the initial detune amount in [0, 1].
func WithDetune(detune float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(detune) || detune < 0 || detune > 1 {
			return fmt.Errorf("osc: detune must be in [0, 1]: %v", detune)
		}

		cfg.detune = detune

		return nil
	}
}

type voice struct {
	hz    float64
	phase float64
	inc   float64
	ratio float64
	left  float64 // (1-pan)*0.5*norm
	right float64 // (1+pan)*0.5*norm
}

// Oscillator is a stereo unison oscillator.
type Oscillator struct {
	sampleRate float64
	baseHz     float64
	note       int
	amp        float64
	detune     float64
	waveform   Waveform

	n      int
	voices [MaxVoices]voice
}

// New constructs an oscillator at 440 Hz with all phases at zero.
func New(sampleRate float64, opts ...Option) (*Oscillator, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("osc: sample rate must be > 0 and finite: %f", sampleRate)
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

	o := &Oscillator{
		sampleRate: sampleRate,
		baseHz:     defaultHz,
		note:       core.ReferenceNote,
		amp:        cfg.amp,
		detune:     cfg.detune,
		waveform:   cfg.waveform,
		n:          cfg.voices,
	}

	norm := 1 / math.Sqrt(float64(o.n))
	for i := range o.n {
		o.voices[i].left = (1 - voicePans[i]) * 0.5 * norm
		o.voices[i].right = (1 + voicePans[i]) * 0.5 * norm
	}

	o.updateRatios()
	o.updateIncrements()

	return o, nil
}

// SampleRate returns the sample rate in Hz.
func (o *Oscillator) SampleRate() float64 { return o.sampleRate }

// Freq returns the base frequency in Hz.
func (o *Oscillator) Freq() float64 { return o.baseHz }

// Note returns the last note set with SetNote.
func (o *Oscillator) Note() int { return o.note }

// Amp returns the output amplitude.
func (o *Oscillator) Amp() float64 { return o.amp }

// Detune returns the detune amount in [0, 1].
func (o *Oscillator) Detune() float64 { return o.detune }

// Waveform returns the wave shape.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// Voices returns the unison voice count.
func (o *Oscillator) Voices() int { return o.n }

// Phase returns the phase of voice i in [0, 1).
func (o *Oscillator) Phase(i int) float64 { return o.voices[i].phase }

// PhaseIncrement returns the per-sample phase increment of voice i.
func (o *Oscillator) PhaseIncrement(i int) float64 { return o.voices[i].inc }

// VoiceFreq returns the detuned frequency of voice i in Hz.
func (o *Oscillator) VoiceFreq(i int) float64 { return o.voices[i].hz }

// SetNote tunes the oscillator to a MIDI note number.
func (o *Oscillator) SetNote(note int) {
	o.note = note
	o.setBase(core.NoteToHz(float64(note)))
}

// SetFreq tunes the oscillator to hz, clamped to [0, 0.49*sampleRate].
func (o *Oscillator) SetFreq(hz float64) {
	o.setBase(hz)
}

// SetAmp sets the output amplitude, typically an envelope value.
func (o *Oscillator) SetAmp(amp float64) {
	if !core.IsFinite(amp) {
		amp = 0
	}

	o.amp = amp
}

// SetDetune sets the detune amount, clamped to [0, 1].
func (o *Oscillator) SetDetune(detune float64) {
	o.detune = core.Clamp01(detune)
	o.updateRatios()
	o.updateIncrements()
}

// SetWaveform selects the wave shape. Unknown values are ignored.
func (o *Oscillator) SetWaveform(w Waveform) {
	if validWaveform(w) {
		o.waveform = w
	}
}

// Reset sets all voice phases to zero.
func (o *Oscillator) Reset() {
	for i := range o.n {
		o.voices[i].phase = 0
	}
}

// ProcessSample renders one stereo frame and advances all voices.
func (o *Oscillator) ProcessSample() (left, right float64) {
	for i := range o.n {
		v := &o.voices[i]

		var s float64
		if o.waveform == WaveformSine {
			s = math.Sin(2 * math.Pi * v.phase)
		} else {
			s = 2*v.phase - 1 - polyBLEP(v.phase, v.inc)
		}

		left += s * v.left
		right += s * v.right

		v.phase = core.WrapPhase(v.phase + v.inc)
	}

	return left * o.amp, right * o.amp
}

// ProcessBlock renders len(left) frames into planar buffers. Both slices must
// have the same length.
func (o *Oscillator) ProcessBlock(left, right []float64) {
	n := len(left)
	if n == 0 {
		return
	}

	_ = right[n-1]
	for i := range n {
		left[i], right[i] = o.ProcessSample()
	}
}

func (o *Oscillator) setBase(hz float64) {
	o.baseHz = core.Clamp(hz, 0, maxRatio*o.sampleRate)
	o.updateIncrements()
}

func (o *Oscillator) updateRatios() {
	for i := range o.n {
		o.voices[i].ratio = core.CentsToRatio(detuneCents[i] * o.detune)
	}
}

func (o *Oscillator) updateIncrements() {
	for i := range o.n {
		v := &o.voices[i]
		v.hz = o.baseHz * v.ratio
		// Detuned voices above the base may exceed the clamp slightly; keep the
		// increment below 1 so the single-subtraction wrap stays exact.
		v.inc = math.Min(v.hz/o.sampleRate, 0.5)
	}
}

// polyBLEP returns the band-limited step residual for a rising-phase
// sawtooth at normalized phase t with per-sample increment dt.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}

	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}

	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}

	return 0
}

// ValidVoiceCount reports whether n is an accepted unison voice count.
func ValidVoiceCount(n int) bool {
	return n >= 1 && n <= MaxVoices && n%2 == 1
}

func validWaveform(w Waveform) bool {
	return w == WaveformSaw || w == WaveformSine
}
