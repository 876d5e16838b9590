package lut

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-swarm/dsp/core"
)

// ErrInvalidGrid is returned for grids that cannot be sampled.
var ErrInvalidGrid = errors.New("lut: invalid grid")

// Cell is a coefficient set that can be blended with a neighbour.
type Cell[C any] interface {
	Lerp(to C, t float64) C
}

// Designer computes the coefficients for one grid point.
type Designer[C any] func(hz, q, sampleRate float64) C

// Mode selects the lookup policy.
type Mode int

const (
	// ModeNearest snaps to the closest grid point.
	ModeNearest Mode = iota
	// ModeBilinear blends the four surrounding grid points.
	ModeBilinear
)

func (m Mode) String() string {
	switch m {
	case ModeNearest:
		return "nearest"
	case ModeBilinear:
		return "bilinear"
	default:
		return "unknown"
	}
}

// Grid describes the sampling lattice. Frequencies are spaced
// logarithmically between MinHz and MaxHz, Q linearly between MinQ and MaxQ.
type Grid struct {
	FreqSteps int
	QSteps    int
	MinHz     float64
	MaxHz     float64
	MinQ      float64
	MaxQ      float64
}

// Validate reports whether g can be sampled.
func (g Grid) Validate() error {
	if g.FreqSteps < 2 || g.QSteps < 2 {
		return fmt.Errorf("%w: steps must be >= 2: %dx%d", ErrInvalidGrid, g.FreqSteps, g.QSteps)
	}

	for _, v := range []float64{g.MinHz, g.MaxHz, g.MinQ, g.MaxQ} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds must be finite", ErrInvalidGrid)
		}
	}

	if g.MinHz <= 0 || g.MaxHz <= g.MinHz {
		return fmt.Errorf("%w: need 0 < MinHz < MaxHz: %f, %f", ErrInvalidGrid, g.MinHz, g.MaxHz)
	}

	if g.MaxQ < g.MinQ {
		return fmt.Errorf("%w: need MinQ <= MaxQ: %f, %f", ErrInvalidGrid, g.MinQ, g.MaxQ)
	}

	return nil
}

// Hz maps a normalized position to a frequency.
func (g Grid) Hz(pos float64) float64 {
	return core.LogScale(pos, g.MinHz, g.MaxHz)
}

// Q maps a normalized position to a resonance value.
func (g Grid) Q(pos float64) float64 {
	return core.LinearScale(pos, g.MinQ, g.MaxQ)
}

// Table is an immutable grid of coefficient sets indexed (qStep, freqStep).
type Table[C Cell[C]] struct {
	grid       Grid
	sampleRate float64
	cells      []C
}

// New samples designer over grid at sampleRate.
func New[C Cell[C]](sampleRate float64, grid Grid, designer Designer[C]) (*Table[C], error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("lut: sample rate must be > 0 and finite: %f", sampleRate)
	}

	if err := grid.Validate(); err != nil {
		return nil, err
	}

	if designer == nil {
		return nil, errors.New("lut: designer must not be nil")
	}

	t := &Table[C]{
		grid:       grid,
		sampleRate: sampleRate,
		cells:      make([]C, grid.FreqSteps*grid.QSteps),
	}

	fLast := float64(grid.FreqSteps - 1)
	qLast := float64(grid.QSteps - 1)
	for fi := range grid.FreqSteps {
		hz := grid.Hz(float64(fi) / fLast)
		for qi := range grid.QSteps {
			q := grid.Q(float64(qi) / qLast)
			t.cells[qi*grid.FreqSteps+fi] = designer(hz, q, sampleRate)
		}
	}

	return t, nil
}

// Grid returns the sampling lattice.
func (t *Table[C]) Grid() Grid { return t.grid }

// SampleRate returns the sample rate the table was built for.
func (t *Table[C]) SampleRate() float64 { return t.sampleRate }

// At returns the cell at resonance step qi and frequency step fi.
func (t *Table[C]) At(qi, fi int) C {
	return t.cells[qi*t.grid.FreqSteps+fi]
}

// Nearest returns the grid point closest to (freqPos, qPos).
func (t *Table[C]) Nearest(freqPos, qPos float64) C {
	fi := int(math.Round(clampPos(freqPos) * float64(t.grid.FreqSteps-1)))
	qi := int(math.Round(clampPos(qPos) * float64(t.grid.QSteps-1)))

	return t.At(qi, fi)
}

// Bilinear blends the four grid points surrounding (freqPos, qPos).
func (t *Table[C]) Bilinear(freqPos, qPos float64) C {
	fi, ft := split(freqPos, t.grid.FreqSteps)
	qi, qt := split(qPos, t.grid.QSteps)

	row0 := qi * t.grid.FreqSteps
	row1 := row0 + t.grid.FreqSteps

	lo := t.cells[row0+fi].Lerp(t.cells[row0+fi+1], ft)
	hi := t.cells[row1+fi].Lerp(t.cells[row1+fi+1], ft)

	return lo.Lerp(hi, qt)
}

// Lookup dispatches on mode. Unknown modes fall back to bilinear.
func (t *Table[C]) Lookup(freqPos, qPos float64, mode Mode) C {
	if mode == ModeNearest {
		return t.Nearest(freqPos, qPos)
	}

	return t.Bilinear(freqPos, qPos)
}

// split returns the lower cell index and blend factor for pos on an axis of
// n points. The index never exceeds n-2 so index+1 stays in range.
func split(pos float64, n int) (int, float64) {
	x := clampPos(pos) * float64(n-1)

	i := int(x)
	if i > n-2 {
		i = n - 2
	}

	return i, x - float64(i)
}

func clampPos(pos float64) float64 {
	if pos > 0 {
		if pos > 1 {
			return 1
		}

		return pos
	}

	// Negative and NaN.
	return 0
}
