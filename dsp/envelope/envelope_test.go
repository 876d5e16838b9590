package envelope

import (
	"math"
	"testing"
)

func newTestEnvelope(t *testing.T, sampleRate float64, opts ...Option) *Envelope {
	t.Helper()

	e, err := New(sampleRate, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return e
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	if _, err := New(math.NaN()); err == nil {
		t.Fatal("expected error for NaN sample rate")
	}

	if _, err := New(48000, WithAttack(0)); err == nil {
		t.Fatal("expected error for attack below range")
	}

	if _, err := New(48000, WithCurve(5)); err == nil {
		t.Fatal("expected error for curve above range")
	}

	if _, err := New(48000, WithRetrigger(Retrigger(7))); err == nil {
		t.Fatal("expected error for invalid retrigger policy")
	}
}

func TestDefaults(t *testing.T) {
	e := newTestEnvelope(t, 96000)

	if e.Attack() != defaultAttack || e.Decay() != defaultDecay {
		t.Fatalf("times = %v/%v, want %v/%v", e.Attack(), e.Decay(), defaultAttack, defaultDecay)
	}

	if e.Curve() != defaultCurve || e.Scale() != defaultScale {
		t.Fatalf("curve/scale = %v/%v", e.Curve(), e.Scale())
	}

	if e.Stage() != StageOff || e.Output() != 0 {
		t.Fatalf("stage=%v out=%v, want off/0", e.Stage(), e.Output())
	}

	if got := e.ProcessSample(); got != 0 {
		t.Fatalf("idle output = %v, want 0", got)
	}
}

func TestSettersClamp(t *testing.T) {
	e := newTestEnvelope(t, 48000)

	tests := []struct {
		name string
		set  func(float64)
		get  func() float64
		in   float64
		want float64
	}{
		{name: "attack_low", set: e.SetAttack, get: e.Attack, in: 0, want: MinTime},
		{name: "attack_high", set: e.SetAttack, get: e.Attack, in: 10, want: MaxTime},
		{name: "attack_nan", set: e.SetAttack, get: e.Attack, in: math.NaN(), want: MinTime},
		{name: "attack_add_low", set: e.AddAttack, get: e.AttackAdd, in: -1, want: 0},
		{name: "attack_add_high", set: e.AddAttack, get: e.AttackAdd, in: 6, want: MaxTime},
		{name: "decay_low", set: e.SetDecay, get: e.Decay, in: -3, want: MinTime},
		{name: "decay_high", set: e.SetDecay, get: e.Decay, in: 7, want: MaxTime},
		{name: "decay_add", set: e.AddDecay, get: e.DecayAdd, in: 0.25, want: 0.25},
		{name: "scale_low", set: e.SetScale, get: e.Scale, in: -0.5, want: 0},
		{name: "scale_high", set: e.SetScale, get: e.Scale, in: 1.5, want: 1},
		{name: "curve_low", set: e.SetCurve, get: e.Curve, in: 0.2, want: MinCurve},
		{name: "curve_high", set: e.SetCurve, get: e.Curve, in: 9, want: MaxCurve},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set(tt.in)
			if got := tt.get(); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStageMonotonic(t *testing.T) {
	for _, curve := range []float64{1, 2, 3.5} {
		e := newTestEnvelope(t, 48000, WithAttack(0.01), WithDecay(0.05), WithCurve(curve))
		e.Trigger()

		prev := 0.0
		prevStage := StageAttack
		sawDecay := false

		for i := range 48000 {
			out := e.ProcessSample()
			stage := e.Stage()

			switch {
			case stage == StageAttack && out < prev:
				t.Fatalf("curve %v: attack decreased at %d: %v < %v", curve, i, out, prev)
			case stage == StageDecay && prevStage == StageDecay && out > prev:
				t.Fatalf("curve %v: decay increased at %d: %v > %v", curve, i, out, prev)
			}

			if stage == StageDecay {
				sawDecay = true
			}

			if out < 0 || out > 1 {
				t.Fatalf("curve %v: output %v outside [0,1] at %d", curve, out, i)
			}

			if stage == StageOff {
				if out != 0 {
					t.Fatalf("curve %v: off stage output = %v, want 0", curve, out)
				}
				break
			}

			prev, prevStage = out, stage
		}

		if !sawDecay {
			t.Fatalf("curve %v: never reached decay", curve)
		}
	}
}

func TestTermination(t *testing.T) {
	tests := []struct {
		name   string
		sr     float64
		attack float64
		decay  float64
		curve  float64
	}{
		{name: "shortest", sr: 48000, attack: MinTime, decay: MinTime, curve: 1},
		{name: "short_curved", sr: 48000, attack: 0.002, decay: 0.003, curve: 4},
		{name: "typical", sr: 96000, attack: 0.05, decay: 0.3, curve: 2},
		{name: "linear_44k", sr: 44100, attack: 0.2, decay: 0.1, curve: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnvelope(t, tt.sr,
				WithAttack(tt.attack),
				WithDecay(tt.decay),
				WithCurve(tt.curve),
			)
			e.Trigger()

			n := int((tt.attack + tt.decay) * tt.sr * 1.5)

			var out float64
			for range n {
				out = e.ProcessSample()
			}

			if e.Stage() != StageOff {
				t.Fatalf("stage = %v after %d samples, want off", e.Stage(), n)
			}

			if out != 0 {
				t.Fatalf("output = %v, want exactly 0", out)
			}
		})
	}
}

func TestEndToEndTiming(t *testing.T) {
	e := newTestEnvelope(t, 48000,
		WithAttack(0.01),
		WithDecay(0.1),
		WithCurve(2),
		WithScale(1),
	)
	e.Trigger()

	var out float64
	for range 480 {
		out = e.ProcessSample()
	}

	if math.Abs(out-1) > 0.05 {
		t.Fatalf("output after 10 ms = %v, want ~1", out)
	}

	for range 5760 - 480 {
		out = e.ProcessSample()
	}

	if out != 0 || e.Stage() != StageOff {
		t.Fatalf("after 120 ms: out=%v stage=%v, want 0/off", out, e.Stage())
	}
}

func TestSetSampleRateKeepsStageTime(t *testing.T) {
	e := newTestEnvelope(t, 48000, WithAttack(0.01), WithDecay(0.1), WithCurve(1), WithScale(1))
	e.Trigger()

	for range 240 {
		e.ProcessSample()
	}

	if err := e.SetSampleRate(96000); err != nil {
		t.Fatalf("SetSampleRate() error = %v", err)
	}
	if e.SampleRate() != 96000 {
		t.Fatalf("sample rate = %v, want 96000", e.SampleRate())
	}

	var out float64
	for range 480 {
		out = e.ProcessSample()
	}

	// 5 ms at 48 kHz plus 5 ms at 96 kHz ends the 10 ms attack.
	if math.Abs(out-1) > 0.01 {
		t.Fatalf("output after 10 ms = %v, want ~1", out)
	}

	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := e.SetSampleRate(sr); err == nil {
			t.Fatalf("expected error for sample rate %v", sr)
		}
	}
	if e.SampleRate() != 96000 {
		t.Fatalf("invalid rate changed sample rate to %v", e.SampleRate())
	}
}

func TestRetriggerIsContinuous(t *testing.T) {
	const sr = 48000.0

	for _, curve := range []float64{1, 2, 4} {
		e := newTestEnvelope(t, sr, WithAttack(0.01), WithDecay(0.05), WithCurve(curve))
		e.Trigger()

		for range 480 + 1200 {
			e.ProcessSample()
		}

		v := e.Output()
		if v <= 0 || e.Stage() != StageDecay {
			t.Fatalf("curve %v: expected decaying envelope, got out=%v stage=%v", curve, v, e.Stage())
		}

		e.Trigger()
		next := e.ProcessSample()

		// One attack step can move the output by at most curve*inc/attack.
		maxStep := curve / sr / 0.01
		if d := math.Abs(next - v); d > maxStep+1e-12 {
			t.Fatalf("curve %v: retrigger jumped from %v to %v (|d|=%v > %v)", curve, v, next, d, maxStep)
		}

		if next < v {
			t.Fatalf("curve %v: retrigger should resume rising from %v, got %v", curve, v, next)
		}
	}
}

func TestRetriggerRestart(t *testing.T) {
	e := newTestEnvelope(t, 48000, WithAttack(0.01), WithDecay(0.05), WithRetrigger(RetriggerRestart))
	e.Trigger()

	for range 600 {
		e.ProcessSample()
	}

	e.Trigger()

	if got := e.ProcessSample(); got > 0.01 {
		t.Fatalf("restart retrigger output = %v, want near 0", got)
	}
}

func TestRelease(t *testing.T) {
	e := newTestEnvelope(t, 48000, WithAttack(0.1), WithDecay(0.01))

	e.Release()
	if e.Stage() != StageOff {
		t.Fatalf("release while off changed stage to %v", e.Stage())
	}

	e.Trigger()
	for range 100 {
		e.ProcessSample()
	}

	e.Release()
	if e.Stage() != StageDecay {
		t.Fatalf("stage after release = %v, want decay", e.Stage())
	}

	before := e.ProcessSample()
	e.Release()

	after := e.ProcessSample()
	if after > before {
		t.Fatalf("second release restarted decay: %v -> %v", before, after)
	}

	for range 48000 {
		e.ProcessSample()
	}

	if e.Stage() != StageOff || e.Output() != 0 {
		t.Fatalf("released envelope did not finish: stage=%v out=%v", e.Stage(), e.Output())
	}
}

func TestScaleAppliesToOutputOnly(t *testing.T) {
	e := newTestEnvelope(t, 48000, WithAttack(0.001), WithScale(0.25), WithCurve(1))
	e.Trigger()

	var out float64
	for range 10 {
		out = e.ProcessSample()
	}

	if math.Abs(out-0.25*e.Output()) > 1e-15 {
		t.Fatalf("scaled output = %v, want %v", out, 0.25*e.Output())
	}
}

func TestAdditionsLengthenStages(t *testing.T) {
	count := func(add float64) int {
		e := newTestEnvelope(t, 48000, WithAttack(0.01), WithDecay(0.01))
		e.AddAttack(add)
		e.AddDecay(add)
		e.Trigger()

		n := 0
		for e.Stage() != StageOff {
			e.ProcessSample()
			n++
		}

		return n
	}

	short, long := count(0), count(0.02)
	if long <= short+1000 {
		t.Fatalf("additions did not lengthen envelope: %d vs %d samples", long, short)
	}
}

func TestResetKeepsParameters(t *testing.T) {
	e := newTestEnvelope(t, 48000, WithAttack(0.2))
	e.Trigger()
	e.ProcessSample()
	e.Reset()

	if e.Stage() != StageOff || e.Output() != 0 {
		t.Fatalf("reset left stage=%v out=%v", e.Stage(), e.Output())
	}

	if e.Attack() != 0.2 {
		t.Fatalf("reset changed attack to %v", e.Attack())
	}
}

func TestProcessSampleDoesNotAllocate(t *testing.T) {
	e := newTestEnvelope(t, 48000)
	e.Trigger()

	allocs := testing.AllocsPerRun(1000, func() {
		_ = e.ProcessSample()
	})
	if allocs != 0 {
		t.Fatalf("ProcessSample allocs = %v, want 0", allocs)
	}
}

func TestStageString(t *testing.T) {
	if StageAttack.String() != "attack" || Stage(9).String() != "unknown" {
		t.Fatal("unexpected stage names")
	}
}
