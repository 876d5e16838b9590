package voice

import (
	"github.com/cwbudde/algo-swarm/dsp/core"
	"github.com/cwbudde/algo-swarm/dsp/envelope"
)

// MIDI controller numbers routed by ControlChange.
const (
	CCModWheel     = 1
	CCFilterAttack = 14
	CCFilterDecay  = 15
	CCResonance    = 71
	CCCutoff       = 74
)

const (
	maxMIDIValue = 127
	// ccTimeRange is the envelope time added at controller value 127.
	ccTimeRange = 5.0
)

// EventKind identifies a control event.
type EventKind int

const (
	// EventNoteOn starts a note. Velocity 0 is a note-off.
	EventNoteOn EventKind = iota
	// EventNoteOff releases a note.
	EventNoteOff
	// EventControlChange sets a MIDI continuous controller.
	EventControlChange
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note-on"
	case EventNoteOff:
		return "note-off"
	case EventControlChange:
		return "control-change"
	default:
		return "unknown"
	}
}

// Event is a note or controller message. Note and Velocity are used by note
// events, Controller and Value by control changes. All values are 0-127.
type Event struct {
	Kind       EventKind
	Note       int
	Velocity   int
	Controller int
	Value      int
}

// NoteOnEvent returns a note-on event.
func NoteOnEvent(note, velocity int) Event {
	return Event{Kind: EventNoteOn, Note: note, Velocity: velocity}
}

// NoteOffEvent returns a note-off event.
func NoteOffEvent(note int) Event {
	return Event{Kind: EventNoteOff, Note: note}
}

// ControlChangeEvent returns a controller event.
func ControlChangeEvent(controller, value int) Event {
	return Event{Kind: EventControlChange, Controller: controller, Value: value}
}

// Apply dispatches ev. Unknown kinds are ignored.
func (v *Voice) Apply(ev Event) {
	switch ev.Kind {
	case EventNoteOn:
		v.NoteOn(ev.Note, ev.Velocity)
	case EventNoteOff:
		v.NoteOff(ev.Note)
	case EventControlChange:
		v.ControlChange(ev.Controller, ev.Value)
	}
}

// NoteOn tunes the oscillator to note and triggers both envelopes. The
// amplitude path is scaled by velocity/127, ramped over a few milliseconds
// while the voice is sounding. Velocity 0 acts as NoteOff.
func (v *Voice) NoteOn(note, velocity int) {
	if velocity <= 0 {
		v.NoteOff(note)
		return
	}

	note = clampMIDI(note)

	v.note = note
	v.gate = true
	v.osc.SetNote(note)
	v.velocity = midiUnit(velocity)
	if v.ampEnv.Stage() == envelope.StageOff {
		v.velGain = v.velocity
	}
	v.ampEnv.Trigger()
	v.filterEnv.Trigger()
}

// NoteOff releases the filter envelope if note is the sounding note. The
// amplitude envelope always runs its attack/decay course.
func (v *Voice) NoteOff(note int) {
	if !v.gate || clampMIDI(note) != v.note {
		return
	}

	v.gate = false
	v.filterEnv.Release()
}

// ControlChange routes a MIDI controller. Unassigned controllers are ignored.
func (v *Voice) ControlChange(controller, value int) {
	x := midiUnit(value)

	switch controller {
	case CCFilterAttack:
		v.filterEnv.AddAttack(x * ccTimeRange)
	case CCFilterDecay:
		v.filterEnv.AddDecay(x * ccTimeRange)
	case CCModWheel:
		v.SetKnob(KnobDetune, x)
	case CCCutoff:
		v.SetKnob(KnobCutoff, x)
	case CCResonance:
		v.SetKnob(KnobResonance, x)
	}
}

func clampMIDI(value int) int {
	return min(max(value, 0), maxMIDIValue)
}

func midiUnit(value int) float64 {
	return core.Clamp01(float64(value) / maxMIDIValue)
}
