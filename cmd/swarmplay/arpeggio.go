package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/cwbudde/algo-swarm/dsp/voice"
)

const (
	bytesPerFrame = 8
	gateFraction  = 0.6
	velocity      = 100
)

// arpeggio is the pull source handed to the audio device. Each Read renders
// the next frames, emitting note events on step boundaries. Rendering goes
// through a scratch buffer sized once at construction; larger reads are
// rendered in chunks.
type arpeggio struct {
	mu sync.Mutex

	voice *voice.Voice
	notes []int

	stepFrames int
	gateFrames int
	frame      int

	scratch []float32
	events  []voice.Event

	// A frame split across reads; pending holds its unread bytes.
	tail    [bytesPerFrame]byte
	pending []byte
}

// newArpeggio returns a source rendering at most chunkFrames frames per
// voice call.
func newArpeggio(v *voice.Voice, notes []int, bpm float64, chunkFrames int) (*arpeggio, error) {
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}

	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return nil, fmt.Errorf("bpm must be > 0: %v", bpm)
	}

	if chunkFrames < 1 {
		return nil, fmt.Errorf("chunk size must be >= 1 frame: %d", chunkFrames)
	}

	// Sixteenth notes.
	step := max(1, int(math.Round(v.SampleRate()*60/bpm/4)))

	return &arpeggio{
		voice:      v,
		notes:      notes,
		stepFrames: step,
		gateFrames: max(1, int(float64(step)*gateFraction)),
		scratch:    make([]float32, 2*chunkFrames),
		events:     make([]voice.Event, 0, 2),
	}, nil
}

// Read implements io.Reader with little-endian float32 stereo frames. It
// always fills p; a frame that does not fit is finished by the next Read.
func (a *arpeggio) Read(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := copy(p, a.pending)
	a.pending = a.pending[n:]

	chunk := len(a.scratch) / 2
	for len(p)-n >= bytesPerFrame {
		frames := min((len(p)-n)/bytesPerFrame, chunk)
		a.render(a.scratch[:2*frames])
		encode(p[n:], a.scratch[:2*frames])

		n += frames * bytesPerFrame
	}

	if n < len(p) {
		a.render(a.scratch[:2])
		encode(a.tail[:], a.scratch[:2])

		c := copy(p[n:], a.tail[:])
		a.pending = a.tail[c:]
		n += c
	}

	return n, nil
}

// render fills buf with the next len(buf)/2 frames.
func (a *arpeggio) render(buf []float32) {
	frames := len(buf) / 2

	for done := 0; done < frames; {
		n := min(frames-done, a.framesToBoundary())
		a.voice.ProcessBlock(buf[2*done:2*(done+n)], a.eventsAt(a.frame))

		done += n
		a.frame += n
	}
}

func encode(dst []byte, src []float32) {
	for i, s := range src {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(s))
	}
}

// Peak returns the voice's peak level.
func (a *arpeggio) Peak() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.voice.Peak()
}

func (a *arpeggio) framesToBoundary() int {
	pos := a.frame % a.stepFrames
	if pos < a.gateFrames {
		return a.gateFrames - pos
	}

	return a.stepFrames - pos
}

func (a *arpeggio) eventsAt(frame int) []voice.Event {
	a.events = a.events[:0]

	step := frame / a.stepFrames
	note := a.notes[step%len(a.notes)]

	switch frame % a.stepFrames {
	case 0:
		a.events = append(a.events, voice.NoteOnEvent(note, velocity))
	case a.gateFrames:
		a.events = append(a.events, voice.NoteOffEvent(note))
	}

	return a.events
}

func parseNotes(s string) ([]int, error) {
	var notes []int

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid note %q: %w", field, err)
		}

		if n < 0 || n > 127 {
			return nil, fmt.Errorf("note out of range [0, 127]: %d", n)
		}

		notes = append(notes, n)
	}

	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}

	return notes, nil
}
