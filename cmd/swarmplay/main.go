// Command swarmplay plays a looping arpeggio through the swarm voice on the
// default audio device.
//
// Usage:
//
//	swarmplay [flags]
//
// Examples:
//
//	swarmplay
//	swarmplay -notes 45,52,57,60 -bpm 140 -res 0.8
//	swarmplay -variant biquad -duration 30s
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-swarm/dsp/core"
	"github.com/cwbudde/algo-swarm/dsp/filter/lowpass"
	"github.com/cwbudde/algo-swarm/dsp/voice"
)

// bufferSize is the device buffer length requested from oto.
const bufferSize = 20 * time.Millisecond

func main() {
	notes := flag.String("notes", "45,57,60,64", "comma-separated MIDI note numbers")
	bpm := flag.Float64("bpm", 120, "tempo in sixteenth notes x4 per minute")
	sampleRate := flag.Int("sr", 48000, "sample rate in Hz")
	block := flag.Int("block", 16, "frames between control-event drains")
	detune := flag.Float64("detune", 0.6, "unison detune amount (0-1)")
	cutoff := flag.Float64("cutoff", 0.45, "filter cutoff knob (0-1)")
	res := flag.Float64("res", 0.6, "filter resonance knob (0-1)")
	env := flag.Float64("env", 0.35, "filter envelope amount (0-1)")
	variant := flag.String("variant", "ladder", "filter variant: ladder, svf or biquad")
	duration := flag.Duration("duration", 0, "stop after this long (0 plays until interrupted)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: swarmplay [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plays a looping arpeggio through the swarm voice.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  swarmplay -notes 45,52,57,60 -bpm 140 -res 0.8\n")
		fmt.Fprintf(os.Stderr, "  swarmplay -variant biquad -duration 30s\n")
	}
	flag.Parse()

	pattern, err := parseNotes(*notes)
	if err != nil {
		fatal(err)
	}

	kind, err := lowpass.ParseVariant(*variant)
	if err != nil {
		fatal(err)
	}

	v, err := voice.New(
		voice.WithProcessor(core.WithSampleRate(float64(*sampleRate)), core.WithBlockSize(*block)),
		voice.WithVariant(kind),
		voice.WithOutputGain(0.7),
	)
	if err != nil {
		fatal(err)
	}

	v.SetKnob(voice.KnobDetune, *detune)
	v.SetKnob(voice.KnobCutoff, *cutoff)
	v.SetKnob(voice.KnobResonance, *res)
	v.SetKnob(voice.KnobEnvAmount, *env)
	v.SetKnob(voice.KnobAttack, 0.05)
	v.SetKnob(voice.KnobDecay, 0.35)

	src, err := newArpeggio(v, pattern, *bpm, *sampleRate*int(bufferSize/time.Millisecond)/1000)
	if err != nil {
		fatal(err)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		fatal(err)
	}
	<-ready

	player := ctx.NewPlayer(src)
	player.Play()

	fmt.Fprintf(os.Stderr, "playing %v at %.0f bpm (%s filter), Ctrl-C to stop\n", pattern, *bpm, kind)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}

	select {
	case <-stop:
	case <-timeout:
	}

	if err := player.Close(); err != nil {
		fatal(err)
	}

	fmt.Fprintf(os.Stderr, "peak %.3f\n", src.Peak())
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
