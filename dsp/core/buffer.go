package core

// Interleave writes planar left/right samples into dst as [l0 r0 l1 r1 ...]
// and returns the number of frames written.
func Interleave(dst []float32, left, right []float64) int {
	n := len(dst) / 2
	if len(left) < n {
		n = len(left)
	}
	if len(right) < n {
		n = len(right)
	}

	for i := range n {
		dst[2*i] = float32(left[i])
		dst[2*i+1] = float32(right[i])
	}

	return n
}
