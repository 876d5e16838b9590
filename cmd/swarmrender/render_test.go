package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-swarm/dsp/voice"
)

func TestParseSequence(t *testing.T) {
	seq, err := parseSequence(" 57, 60,,64 ", 0.25, 0.5, 100)
	if err != nil {
		t.Fatalf("parseSequence() error = %v", err)
	}

	want := []int{57, 60, 64}
	if len(seq.notes) != len(want) {
		t.Fatalf("notes = %v, want %v", seq.notes, want)
	}

	for i := range want {
		if seq.notes[i] != want[i] {
			t.Fatalf("notes = %v, want %v", seq.notes, want)
		}
	}
}

func TestParseSequenceErrors(t *testing.T) {
	tests := []struct {
		name     string
		notes    string
		step     float64
		gate     float64
		velocity int
	}{
		{name: "empty", notes: " , ", step: 1, gate: 0.5, velocity: 100},
		{name: "not_a_number", notes: "57,x", step: 1, gate: 0.5, velocity: 100},
		{name: "note_range", notes: "128", step: 1, gate: 0.5, velocity: 100},
		{name: "step", notes: "60", step: 0, gate: 0.5, velocity: 100},
		{name: "gate", notes: "60", step: 1, gate: 1.5, velocity: 100},
		{name: "velocity", notes: "60", step: 1, gate: 0.5, velocity: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseSequence(tt.notes, tt.step, tt.gate, tt.velocity); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSchedule(t *testing.T) {
	seq, err := parseSequence("60,62", 0.01, 0.5, 90)
	if err != nil {
		t.Fatalf("parseSequence() error = %v", err)
	}

	got := seq.schedule(48000)
	want := []scheduled{
		{frame: 0, event: voice.NoteOnEvent(60, 90)},
		{frame: 240, event: voice.NoteOffEvent(60)},
		{frame: 480, event: voice.NoteOnEvent(62, 90)},
		{frame: 720, event: voice.NoteOffEvent(62)},
	}

	if len(got) != len(want) {
		t.Fatalf("schedule = %+v", got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRenderAndWriteWAV(t *testing.T) {
	v, err := newVoice(48000, "svf", 0.5, 0.6, 0.3, 0.4)
	if err != nil {
		t.Fatalf("newVoice() error = %v", err)
	}

	seq, err := parseSequence("57,64", 0.05, 0.8, 127)
	if err != nil {
		t.Fatalf("parseSequence() error = %v", err)
	}

	frames := render(v, seq, 0.02)
	if len(frames) != 2*(2*2400+960) {
		t.Fatalf("rendered %d samples", len(frames))
	}

	if v.Peak() == 0 {
		t.Fatal("render produced silence")
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	if err := writeWAV(path, frames, 48000); err != nil {
		t.Fatalf("writeWAV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}

	if buf.Format.NumChannels != 2 || buf.Format.SampleRate != 48000 || dec.BitDepth != 16 {
		t.Fatalf("format = %+v, depth %d", buf.Format, dec.BitDepth)
	}

	if len(buf.Data) != len(frames) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(frames))
	}
}

func TestToPCMClamps(t *testing.T) {
	buf := toPCM([]float32{0, 0.5, 2, -3}, 44100)

	want := []int{0, 16384, 32767, -32767}
	for i, w := range want {
		if buf.Data[i] != w {
			t.Fatalf("Data[%d] = %d, want %d", i, buf.Data[i], w)
		}
	}
}

func TestNewVoiceRejectsVariant(t *testing.T) {
	if _, err := newVoice(48000, "moog", 0, 0.5, 0, 0); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}
