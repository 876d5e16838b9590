package lowpass

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-swarm/dsp/core"
	"github.com/cwbudde/algo-swarm/dsp/filter/biquad"
	"github.com/cwbudde/algo-swarm/dsp/filter/lut"
)

const (
	defaultFreqPos = 0.5
	defaultQPos    = 0.2

	// svfLimit scales the tanh that bounds the band-pass state.
	svfLimit = 4.0
)

// Variant selects the filter topology.
type Variant int

const (
	// VariantLadder is the four-stage nonlinear ladder.
	VariantLadder Variant = iota
	// VariantSVF is the trapezoidal state-variable filter.
	VariantSVF
	// VariantBiquad is the RBJ direct form I biquad.
	VariantBiquad
)

func (v Variant) String() string {
	switch v {
	case VariantLadder:
		return "ladder"
	case VariantSVF:
		return "svf"
	case VariantBiquad:
		return "biquad"
	default:
		return "unknown"
	}
}

// ParseVariant returns the variant named by s.
func ParseVariant(s string) (Variant, error) {
	for v := VariantLadder; v <= VariantBiquad; v++ {
		if v.String() == s {
			return v, nil
		}
	}

	return 0, fmt.Errorf("lowpass: unknown variant: %q", s)
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	variant Variant
	mode    lut.Mode
	freqPos float64
	qPos    float64

	biquadTable *lut.Table[biquad.Coefficients]
	svfTable    *lut.Table[SVFCoefficients]
	ladderTable *lut.Table[LadderCoefficients]
}

func defaultConfig() config {
	return config{
		variant: VariantLadder,
		mode:    lut.ModeBilinear,
		freqPos: defaultFreqPos,
		qPos:    defaultQPos,
	}
}

// WithVariant selects the filter topology.
func WithVariant(variant Variant) Option {
	return func(cfg *config) error {
		if !validVariant(variant) {
			return fmt.Errorf("lowpass: invalid variant: %d", variant)
		}

		cfg.variant = variant

		return nil
	}
}

// WithLookup selects nearest or bilinear coefficient lookup.
func WithLookup(mode lut.Mode) Option {
	return func(cfg *config) error {
		if mode != lut.ModeNearest && mode != lut.ModeBilinear {
			return fmt.Errorf("lowpass: invalid lookup mode: %d", mode)
		}

		cfg.mode = mode

		return nil
	}
}

// WithFreq sets the initial cutoff position in [0, 1].
func WithFreq(pos float64) Option {
	return func(cfg *config) error {
		if err := validatePosition(pos, "cutoff"); err != nil {
			return err
		}

		cfg.freqPos = pos

		return nil
	}
}

// WithQ sets the initial resonance position in [0, 1].
func WithQ(pos float64) Option {
	return func(cfg *config) error {
		if err := validatePosition(pos, "resonance"); err != nil {
			return err
		}

		cfg.qPos = pos

		return nil
	}
}

// WithBiquadTable injects a prebuilt VariantBiquad table.
func WithBiquadTable(t *lut.Table[biquad.Coefficients]) Option {
	return func(cfg *config) error {
		cfg.biquadTable = t
		return nil
	}
}

// WithSVFTable injects a prebuilt VariantSVF table.
func WithSVFTable(t *lut.Table[SVFCoefficients]) Option {
	return func(cfg *config) error {
		cfg.svfTable = t
		return nil
	}
}

// WithLadderTable injects a prebuilt VariantLadder table.
func WithLadderTable(t *lut.Table[LadderCoefficients]) Option {
	return func(cfg *config) error {
		cfg.ladderTable = t
		return nil
	}
}

// Filter is a table-driven resonant low-pass for one channel.
type Filter struct {
	sampleRate float64
	variant    Variant
	mode       lut.Mode

	freqPos float64
	freqAdd float64
	qPos    float64

	grid        lut.Grid
	biquadTable *lut.Table[biquad.Coefficients]
	svfTable    *lut.Table[SVFCoefficients]
	ladderTable *lut.Table[LadderCoefficients]

	df1    biquad.DirectFormI
	s1, s2 float64
	ladder ladderState
}

// New constructs a filter. Unless a table is injected, the variant's shared
// table for sampleRate is built on first use and reused afterwards.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("lowpass: sample rate must be > 0 and finite: %f", sampleRate)
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

	f := &Filter{
		sampleRate: sampleRate,
		variant:    cfg.variant,
		mode:       cfg.mode,
		freqPos:    cfg.freqPos,
		qPos:       cfg.qPos,
	}

	var err error

	switch cfg.variant {
	case VariantBiquad:
		f.biquadTable, err = pickTable(cfg.biquadTable, sampleRate, biquadTables)
		f.grid = BiquadGrid
	case VariantSVF:
		f.svfTable, err = pickTable(cfg.svfTable, sampleRate, svfTables)
		f.grid = SVFGrid
	default:
		f.ladderTable, err = pickTable(cfg.ladderTable, sampleRate, ladderTables)
		f.grid = LadderGrid
	}

	if err != nil {
		return nil, err
	}

	f.ladder.setup(sampleRate)

	return f, nil
}

func pickTable[C lut.Cell[C]](injected *lut.Table[C], sampleRate float64, reg *lut.Registry[C]) (*lut.Table[C], error) {
	if injected == nil {
		return reg.Get(sampleRate)
	}

	if injected.SampleRate() != sampleRate {
		return nil, fmt.Errorf("lowpass: table sample rate %f does not match %f", injected.SampleRate(), sampleRate)
	}

	return injected, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Variant returns the filter topology.
func (f *Filter) Variant() Variant { return f.variant }

// Lookup returns the coefficient lookup mode.
func (f *Filter) Lookup() lut.Mode { return f.mode }

// Grid returns the variant's table lattice.
func (f *Filter) Grid() lut.Grid { return f.grid }

// FreqPosition returns the cutoff knob position.
func (f *Filter) FreqPosition() float64 { return f.freqPos }

// FreqAddition returns the modulation added to the cutoff position.
func (f *Filter) FreqAddition() float64 { return f.freqAdd }

// QPosition returns the resonance position.
func (f *Filter) QPosition() float64 { return f.qPos }

// CutoffHz maps the cutoff knob position back to Hz, without modulation.
func (f *Filter) CutoffHz() float64 { return f.grid.Hz(f.freqPos) }

// ModulatedCutoffHz returns the cutoff used for processing, with the
// modulation added and clamped.
func (f *Filter) ModulatedCutoffHz() float64 { return f.grid.Hz(f.lookupFreq()) }

// Q maps the resonance position onto the variant's scale: Q for the biquad
// and SVF, fraction of self-oscillation feedback for the ladder.
func (f *Filter) Q() float64 { return f.grid.Q(f.qPos) }

// SetFreq sets the cutoff position, clamped to [0, 1].
func (f *Filter) SetFreq(pos float64) { f.freqPos = core.Clamp01(pos) }

// AddFreq sets the cutoff modulation. It is not clamped here; the sum with
// the cutoff position is clamped at lookup. NaN is treated as zero.
func (f *Filter) AddFreq(pos float64) {
	if math.IsNaN(pos) {
		pos = 0
	}

	f.freqAdd = pos
}

// SetQ sets the resonance position, clamped to [0, 1].
func (f *Filter) SetQ(pos float64) { f.qPos = core.Clamp01(pos) }

// SetLookup switches between nearest and bilinear lookup. Unknown modes are
// ignored.
func (f *Filter) SetLookup(mode lut.Mode) {
	if mode == lut.ModeNearest || mode == lut.ModeBilinear {
		f.mode = mode
	}
}

// BiquadCoefficients returns the current biquad coefficients. It is zero for
// other variants.
func (f *Filter) BiquadCoefficients() biquad.Coefficients {
	if f.biquadTable == nil {
		return biquad.Coefficients{}
	}

	return f.biquadTable.Lookup(f.lookupFreq(), f.qPos, f.mode)
}

// SVFCoefficients returns the current SVF coefficients. It is zero for other
// variants.
func (f *Filter) SVFCoefficients() SVFCoefficients {
	if f.svfTable == nil {
		return SVFCoefficients{}
	}

	return f.svfTable.Lookup(f.lookupFreq(), f.qPos, f.mode)
}

// LadderCoefficients returns the current ladder coefficients. It is zero for
// other variants.
func (f *Filter) LadderCoefficients() LadderCoefficients {
	if f.ladderTable == nil {
		return LadderCoefficients{}
	}

	return f.ladderTable.Lookup(f.lookupFreq(), f.qPos, f.mode)
}

// Reset clears all filter state. Positions are kept.
func (f *Filter) Reset() {
	f.df1.Reset()
	f.s1, f.s2 = 0, 0
	f.ladder.reset()
}

// ProcessSample filters one sample.
func (f *Filter) ProcessSample(input float64) float64 {
	if !core.IsFinite(input) {
		input = 0
	}

	var out float64

	switch f.variant {
	case VariantBiquad:
		out = f.df1.ProcessSample(f.BiquadCoefficients(), input)
		if !core.IsFinite(out) {
			f.df1.Reset()
			return 0
		}

		// Same state bound as the SVF and ladder integrators.
		h := f.df1.State()
		f.df1.SetOutputHistory(clipState(core.FlushDenormals(h[2])), clipState(core.FlushDenormals(h[3])))
	case VariantSVF:
		out = f.processSVF(input, f.SVFCoefficients())
	default:
		out = f.ladder.process(input, f.LadderCoefficients())
	}

	return sanitizeOutput(out)
}

// ProcessInPlace filters buf in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// ProcessTo filters src into dst. Both slices must have the same length.
func (f *Filter) ProcessTo(dst, src []float64) {
	n := len(src)
	if n == 0 {
		return
	}

	_ = dst[n-1]
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

// processSVF runs one trapezoidal SVF step and returns the low-pass output.
func (f *Filter) processSVF(x float64, c SVFCoefficients) float64 {
	g := c.G
	d := 1 / (1 + 2*c.R*g + g*g)

	hp := (x - (2*c.R+g)*f.s1 - f.s2) * d
	v1 := g * hp
	bp := v1 + f.s1
	v2 := g * bp
	lp := v2 + f.s2

	f.s1 = core.FlushDenormals(svfLimit * math.Tanh((bp+v1)/svfLimit))
	f.s2 = clipState(core.FlushDenormals(lp + v2))

	return lp
}

func (f *Filter) lookupFreq() float64 {
	return core.Clamp01(f.freqPos + f.freqAdd)
}

// Stereo runs one filter per channel over a shared table.
type Stereo struct {
	left  *Filter
	right *Filter
}

// NewStereo constructs a stereo pair with independent state.
func NewStereo(sampleRate float64, opts ...Option) (*Stereo, error) {
	left, err := New(sampleRate, opts...)
	if err != nil {
		return nil, err
	}

	right, err := New(sampleRate, opts...)
	if err != nil {
		return nil, err
	}

	return &Stereo{left: left, right: right}, nil
}

// Left returns the left-channel filter.
func (s *Stereo) Left() *Filter { return s.left }

// Right returns the right-channel filter.
func (s *Stereo) Right() *Filter { return s.right }

// SetFreq sets the cutoff position on both channels.
func (s *Stereo) SetFreq(pos float64) {
	s.left.SetFreq(pos)
	s.right.SetFreq(pos)
}

// AddFreq sets the cutoff modulation on both channels.
func (s *Stereo) AddFreq(pos float64) {
	s.left.AddFreq(pos)
	s.right.AddFreq(pos)
}

// SetQ sets the resonance position on both channels.
func (s *Stereo) SetQ(pos float64) {
	s.left.SetQ(pos)
	s.right.SetQ(pos)
}

// Reset clears both channel states.
func (s *Stereo) Reset() {
	s.left.Reset()
	s.right.Reset()
}

// ProcessSample processes one stereo frame.
func (s *Stereo) ProcessSample(leftIn, rightIn float64) (leftOut, rightOut float64) {
	return s.left.ProcessSample(leftIn), s.right.ProcessSample(rightIn)
}

// ProcessInPlace processes planar buffers in place.
func (s *Stereo) ProcessInPlace(left, right []float64) {
	n := len(left)
	if n == 0 {
		return
	}

	_ = right[n-1]
	for i := range n {
		left[i], right[i] = s.ProcessSample(left[i], right[i])
	}
}

func validVariant(v Variant) bool {
	return v >= VariantLadder && v <= VariantBiquad
}

func validatePosition(pos float64, name string) error {
	if !core.IsFinite(pos) {
		return fmt.Errorf("lowpass: %s position must be finite: %v", name, pos)
	}

	if pos < 0 || pos > 1 {
		return fmt.Errorf("lowpass: %s position must be in [0, 1]: %f", name, pos)
	}

	return nil
}

func sanitizeOutput(value float64) float64 {
	if !core.IsFinite(value) {
		return 0
	}

	return value
}
