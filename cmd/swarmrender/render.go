package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-swarm/dsp/voice"
)

const (
	bitDepth     = 16
	channels     = 2
	pcmFormatTag = 1
)

type sequence struct {
	notes    []int
	step     float64
	gate     float64
	velocity int
}

type scheduled struct {
	frame int
	event voice.Event
}

func parseSequence(notes string, step, gate float64, velocity int) (sequence, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return sequence{}, fmt.Errorf("step must be > 0 seconds: %v", step)
	}

	if gate <= 0 || gate > 1 || math.IsNaN(gate) {
		return sequence{}, fmt.Errorf("gate must be in (0, 1]: %v", gate)
	}

	if velocity < 1 || velocity > 127 {
		return sequence{}, fmt.Errorf("velocity must be in [1, 127]: %d", velocity)
	}

	seq := sequence{step: step, gate: gate, velocity: velocity}

	for _, field := range strings.Split(notes, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		n, err := strconv.Atoi(field)
		if err != nil {
			return sequence{}, fmt.Errorf("invalid note %q: %w", field, err)
		}

		if n < 0 || n > 127 {
			return sequence{}, fmt.Errorf("note out of range [0, 127]: %d", n)
		}

		seq.notes = append(seq.notes, n)
	}

	if len(seq.notes) == 0 {
		return sequence{}, fmt.Errorf("no notes given")
	}

	return seq, nil
}

func (s sequence) stepFrames(sampleRate float64) int {
	return max(1, int(math.Round(s.step*sampleRate)))
}

// schedule returns note events ordered by frame.
func (s sequence) schedule(sampleRate float64) []scheduled {
	step := s.stepFrames(sampleRate)
	held := max(1, int(math.Round(s.gate*float64(step))))

	events := make([]scheduled, 0, 2*len(s.notes))
	for i, n := range s.notes {
		start := i * step
		events = append(events,
			scheduled{frame: start, event: voice.NoteOnEvent(n, s.velocity)},
			scheduled{frame: start + held, event: voice.NoteOffEvent(n)},
		)
	}

	return events
}

// render plays seq through v and returns interleaved stereo frames.
func render(v *voice.Voice, seq sequence, tail float64) []float32 {
	sr := v.SampleRate()
	total := len(seq.notes)*seq.stepFrames(sr) + int(math.Round(math.Max(tail, 0)*sr))
	out := make([]float32, channels*total)

	var pending []voice.Event

	pos := 0
	for _, s := range seq.schedule(sr) {
		if s.frame > pos {
			v.ProcessBlock(out[channels*pos:channels*s.frame], pending)
			pending = pending[:0]
			pos = s.frame
		}

		pending = append(pending, s.event)
	}

	v.ProcessBlock(out[channels*pos:], pending)

	return out
}

func deinterleave(frames []float32, n int) []float64 {
	n = min(n, len(frames)/channels)

	left := make([]float64, n)
	for i := range left {
		left[i] = float64(frames[channels*i])
	}

	return left
}

func toPCM(frames []float32, sampleRate int) *audio.IntBuffer {
	const full = 1<<(bitDepth-1) - 1

	data := make([]int, len(frames))
	for i, s := range frames {
		x := math.Max(-1, math.Min(1, float64(s)))
		data[i] = int(math.Round(x * full))
	}

	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
}

func writeWAV(path string, frames []float32, sampleRate int) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, pcmFormatTag)
	if err := enc.Write(toPCM(frames, sampleRate)); err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	return nil
}
