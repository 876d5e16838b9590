package biquad

// Coefficients holds the transfer function coefficients for a single
// second-order section. a0 is normalized to 1 and not stored.
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Coefficients struct {
	B0, B1, B2 float64 // feedforward
	A1, A2     float64 // feedback
}

// Lerp interpolates every coefficient linearly towards to. The stability
// triangle in (A1, A2) is convex, so interpolating between two stable
// sections yields a stable section.
func (c Coefficients) Lerp(to Coefficients, t float64) Coefficients {
	return Coefficients{
		B0: c.B0 + (to.B0-c.B0)*t,
		B1: c.B1 + (to.B1-c.B1)*t,
		B2: c.B2 + (to.B2-c.B2)*t,
		A1: c.A1 + (to.A1-c.A1)*t,
		A2: c.A2 + (to.A2-c.A2)*t,
	}
}

// Stable reports whether both poles lie strictly inside the unit circle.
func (c Coefficients) Stable() bool {
	return c.A2 < 1 && c.A2 > -1 && c.A1 < 1+c.A2 && -c.A1 < 1+c.A2
}

// Section is a biquad with fixed coefficients in Direct Form II Transposed.
type Section struct {
	Coefficients

	d0, d1 float64
}

// NewSection returns a Section with the given coefficients and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters buf in place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	d0, d1 := s.d0, s.d1

	for i, x := range buf {
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	s.d0, s.d1 = d0, d1
}

// ProcessBlockTo filters src into dst. Both slices must have the same length.
func (s *Section) ProcessBlockTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1]
	for i, x := range src {
		dst[i] = s.ProcessSample(x)
	}
}

// Reset clears the delay line.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// State returns the current delay-line state [d0, d1].
func (s *Section) State() [2]float64 {
	return [2]float64{s.d0, s.d1}
}

// SetState restores a previously saved delay-line state.
func (s *Section) SetState(state [2]float64) {
	s.d0 = state[0]
	s.d1 = state[1]
}

// DirectFormI is the input/output history of a Direct Form I biquad.
// Coefficients are supplied on every call. Since the history holds plain
// signal values, swapping coefficients between samples never corrupts state.
type DirectFormI struct {
	x1, x2 float64
	y1, y2 float64
}

// ProcessSample filters x with c.
func (f *DirectFormI) ProcessSample(c Coefficients, x float64) float64 {
	y := c.B0*x + c.B1*f.x1 + c.B2*f.x2 - c.A1*f.y1 - c.A2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y

	return y
}

// Reset clears the history.
func (f *DirectFormI) Reset() {
	*f = DirectFormI{}
}

// State returns [x1, x2, y1, y2].
func (f *DirectFormI) State() [4]float64 {
	return [4]float64{f.x1, f.x2, f.y1, f.y2}
}

// SetOutputHistory overwrites the output history, e.g. after sanitizing.
func (f *DirectFormI) SetOutputHistory(y1, y2 float64) {
	f.y1, f.y2 = y1, y2
}
