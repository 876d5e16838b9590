package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-swarm/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(48000),
		core.WithBlockSize(2),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d\n", cfg.SampleRate, cfg.BlockSize)

	// Output:
	// sampleRate=48000 blockSize=2
}

func ExampleNoteToHz() {
	fmt.Printf("%.2f %.2f\n", core.NoteToHz(69), core.NoteToHz(60))

	// Output:
	// 440.00 261.63
}
