package biquad_test

import (
	"fmt"

	"github.com/cwbudde/algo-swarm/dsp/filter/biquad"
)

func ExampleSection_ProcessSample() {
	s := biquad.NewSection(biquad.Coefficients{
		B0: 0.25, B1: 0.5, B2: 0.25,
		A1: -0.2, A2: 0.04,
	})

	for i := range 4 {
		var x float64
		if i == 0 {
			x = 1
		}

		fmt.Printf("y[%d] = %.3f\n", i, s.ProcessSample(x))
	}
	// Output:
	// y[0] = 0.250
	// y[1] = 0.550
	// y[2] = 0.350
	// y[3] = 0.048
}

func ExampleLowpass() {
	c := biquad.Lowpass(1000, 0.7071, 48000)
	fmt.Printf("4 kHz: %+.2f dB\n", c.MagnitudeDB(4000, 48000))
	fmt.Printf("1 kHz: %+.2f dB\n", c.MagnitudeDB(1000, 48000))
	// Output:
	// 4 kHz: -24.48 dB
	// 1 kHz: -3.01 dB
}
