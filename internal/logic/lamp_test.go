package logic

import (
	"errors"
	"testing"
)

func TestLampStartsAtBaseline(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, false)
	if l.Duty() != InitialBaseline {
		t.Errorf("Duty: got %d, want %d", l.Duty(), InitialBaseline)
	}
	if l.Baseline() != InitialBaseline {
		t.Errorf("Baseline: got %d, want %d", l.Baseline(), InitialBaseline)
	}
}

func TestLampSetLevel(t *testing.T) {
	tests := []struct {
		percent uint8
		want    string
	}{
		{100, "Lámpara: brillo al 100%."},
		{70, "Lámpara: brillo al 70%."},
		{50, "Lámpara: brillo al 50%."},
		{20, "Lámpara: brillo al 20%."},
		{0, "Lámpara apagada."},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			rec := &recorder{}
			l := NewLamp(rec, rec, false)

			if err := l.SetLevel(tt.percent); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.Duty() != tt.percent {
				t.Errorf("Duty: got %d, want %d", l.Duty(), tt.percent)
			}
			if rec.lastDuty(t) != tt.percent {
				t.Errorf("output: got %d, want %d", rec.lastDuty(t), tt.percent)
			}
			if len(rec.lines) != 1 || rec.lines[0] != tt.want {
				t.Errorf("lines: got %q, want [%q]", rec.lines, tt.want)
			}
		})
	}
}

func TestLampSetLevelRejectsOtherValues(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, false)

	err := l.SetLevel(42)
	if !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}
	if l.Duty() != InitialBaseline {
		t.Error("duty should be unchanged")
	}
	if len(rec.dutyWrites) != 0 || len(rec.lines) != 0 {
		t.Error("invalid level should not write anything")
	}
}

func TestLampForceFullKeepsBaseline(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, false)
	l.SetLevel(50)

	if err := l.ForceFull(1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Duty() != FullBrightness {
		t.Errorf("Duty: got %d, want 100", l.Duty())
	}
	if l.Baseline() != 50 {
		t.Errorf("Baseline: got %d, want 50", l.Baseline())
	}
	pending, from := l.RestorePending()
	if !pending || from != 1000 {
		t.Errorf("restore: pending=%v from=%d, want true/1000", pending, from)
	}
}

func TestLampRampStepsEvery500ms(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, false)

	if err := l.StartRamp(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Duty() != 10 {
		t.Fatalf("first step should be applied immediately, got %d", l.Duty())
	}
	if rec.lines[0] != msgLampRamp {
		t.Errorf("unexpected line %q", rec.lines[0])
	}

	stepAt := map[uint8]Tick{10: 0}
	for now := Tick(10); now <= 6000; now += 10 {
		change, err := l.Tick(now)
		if err != nil {
			t.Fatalf("tick %d: %v", now, err)
		}
		if change.Stepped {
			stepAt[change.Step] = now
		}
	}

	want := []uint8{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if len(rec.dutyWrites) != len(want) {
		t.Fatalf("duty writes: got %v, want %v", rec.dutyWrites, want)
	}
	for i, d := range want {
		if rec.dutyWrites[i] != d {
			t.Errorf("step %d: got %d, want %d", i, rec.dutyWrites[i], d)
		}
		if i > 0 {
			held := Elapsed(stepAt[d], stepAt[want[i-1]])
			if held < RampStepInterval {
				t.Errorf("step %d%% held only %dms", want[i-1], held)
			}
		}
	}
	if Elapsed(stepAt[100], stepAt[10]) < 4500 {
		t.Errorf("ramp finished after %dms, want >= 4500", Elapsed(stepAt[100], stepAt[10]))
	}
	if l.Ramp().Active {
		t.Error("ramp should be finished")
	}
	if l.Baseline() != 100 {
		t.Errorf("completed ramp should become the baseline, got %d", l.Baseline())
	}
}

func TestLampRampNeverSkipsWithSlowTicks(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, false)
	l.StartRamp(0)

	// Ticks far apart still advance a single step each.
	for now := Tick(1300); len(rec.dutyWrites) < 10; now += 1300 {
		l.Tick(now)
		if now > 100000 {
			t.Fatal("ramp did not finish")
		}
	}
	for i, d := range rec.dutyWrites {
		if d != uint8(10*(i+1)) {
			t.Fatalf("writes: got %v, want 10..100 in order", rec.dutyWrites)
		}
	}
}

func TestLampSetLevelCancelsRamp(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, false)
	l.StartRamp(0)
	l.Tick(500)

	l.SetLevel(50)
	if l.Ramp().Active {
		t.Fatal("ramp should be cancelled")
	}
	if change, _ := l.Tick(1000); change.Stepped {
		t.Error("no step after cancel")
	}
	if l.Duty() != 50 {
		t.Errorf("Duty: got %d, want 50", l.Duty())
	}
}

func TestLampRestoreOnce(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, false)
	l.ForceFull(0)

	if change, _ := l.Tick(9999); change.Restored {
		t.Fatal("should not restore before 10000ms")
	}
	change, err := l.Tick(10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.Restored {
		t.Fatal("should restore at 10000ms")
	}
	if l.Duty() != InitialBaseline {
		t.Errorf("Duty: got %d, want %d", l.Duty(), InitialBaseline)
	}
	if rec.lines[len(rec.lines)-1] != msgLampRestored {
		t.Errorf("unexpected line %q", rec.lines[len(rec.lines)-1])
	}

	// One-shot: a later level command is not overridden by further ticks.
	l.SetLevel(70)
	if change, _ := l.Tick(20000); change.Restored {
		t.Error("restoration should fire once per open")
	}
	if l.Duty() != 70 {
		t.Errorf("Duty: got %d, want 70", l.Duty())
	}
}

func TestLampNoRestoreWithoutOpen(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, false)
	l.SetLevel(70)
	if change, _ := l.Tick(60000); change.Restored {
		t.Error("restoration should only be armed by an open")
	}
}

// Level commands move the baseline; restoration targets the latest one.
func TestLampRestoreTracksLevelCommands(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, false)
	l.SetLevel(50)
	l.ForceFull(0)

	l.Tick(10000)
	if l.Duty() != 50 {
		t.Errorf("Duty: got %d, want 50 (tracked baseline)", l.Duty())
	}
}

// With a frozen baseline the lamp returns to the initial 20% whatever level
// was commanded in between, like the original firmware.
func TestLampRestoreFrozenBaseline(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, true)
	l.SetLevel(70)
	l.ForceFull(0)

	l.Tick(10000)
	if l.Duty() != InitialBaseline {
		t.Errorf("Duty: got %d, want %d (frozen baseline)", l.Duty(), InitialBaseline)
	}
	if l.Baseline() != InitialBaseline {
		t.Errorf("Baseline: got %d, want %d", l.Baseline(), InitialBaseline)
	}
}

func TestLampRestoreWaitsForRamp(t *testing.T) {
	rec := &recorder{}
	l := NewLamp(rec, rec, true)
	l.ForceFull(0)
	l.StartRamp(8000)

	for now := Tick(8010); now <= 12500; now += 10 {
		change, _ := l.Tick(now)
		if change.Restored {
			t.Fatalf("restored at %d while ramp active", now)
		}
	}
	if l.Ramp().Active {
		t.Fatal("ramp should be done by 12500")
	}
	change, _ := l.Tick(12510)
	if !change.Restored {
		t.Error("restoration should fire once the ramp is done")
	}
	if l.Duty() != InitialBaseline {
		t.Errorf("Duty: got %d, want %d", l.Duty(), InitialBaseline)
	}
}

func TestLampOutputErrorWrapped(t *testing.T) {
	rec := &recorder{dutyErr: errors.New("pwm fault")}
	l := NewLamp(rec, rec, false)

	err := l.SetLevel(70)
	if !errors.Is(err, rec.dutyErr) {
		t.Fatalf("expected wrapped pwm error, got %v", err)
	}
	if l.Duty() != 70 {
		t.Error("duty should reflect the last value sent")
	}
}
