package logic

import (
	"errors"
	"fmt"
)

// ErrInvalidLevel is returned by SetLevel for a percent outside the command levels.
var ErrInvalidLevel = errors.New("invalid lamp level")

const (
	msgLampOff      = "Lámpara apagada."
	msgLampRamp     = "Aumentando gradualmente el brillo de la lámpara"
	msgLampRestored = "Lámpara reestablecida"
)

// RampState is the non-blocking brightness ramp. While Active, NextPercent is
// applied once RampStepInterval has elapsed since LastStepAt.
type RampState struct {
	Active      bool
	NextPercent uint8
	LastStepAt  Tick
}

// LampChange reports what a Lamp.Tick did.
type LampChange struct {
	Stepped  bool  // a ramp step was applied
	Step     uint8 // percent applied by the step
	RampDone bool  // the step was the last one
	Restored bool  // the lamp returned to baseline
}

// Lamp owns the duty cycle, the restoration baseline and the ramp.
type Lamp struct {
	out Output
	con Console

	duty     uint8
	baseline uint8

	// frozenBaseline keeps the baseline at its initial value regardless of
	// level commands. The daemon runs with tracking (false).
	frozenBaseline bool

	restorePending bool
	restoreFrom    Tick

	ramp RampState
}

// NewLamp creates a lamp at InitialBaseline. It does not touch the output.
func NewLamp(out Output, con Console, frozenBaseline bool) *Lamp {
	return &Lamp{
		out:            out,
		con:            con,
		duty:           InitialBaseline,
		baseline:       InitialBaseline,
		frozenBaseline: frozenBaseline,
	}
}

// Duty returns the last duty cycle sent to the output.
func (l *Lamp) Duty() uint8 { return l.duty }

// Baseline returns the restoration target.
func (l *Lamp) Baseline() uint8 { return l.baseline }

// Ramp returns the current ramp state.
func (l *Lamp) Ramp() RampState { return l.ramp }

// RestorePending reports whether a restoration is armed, and since when.
func (l *Lamp) RestorePending() (bool, Tick) {
	return l.restorePending, l.restoreFrom
}

// SetLevel programs one of the command levels (0, 20, 50, 70, 100).
// It cancels an active ramp.
func (l *Lamp) SetLevel(percent uint8) error {
	switch percent {
	case 0, 20, 50, 70, 100:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidLevel, percent)
	}

	l.ramp = RampState{}
	if err := l.apply(percent); err != nil {
		return err
	}
	l.track(percent)

	msg := msgLampOff
	if percent > 0 {
		msg = fmt.Sprintf("Lámpara: brillo al %d%%.", percent)
	}
	if err := l.con.WriteLine(msg); err != nil {
		return fmt.Errorf("report lamp level: %w", err)
	}
	return nil
}

// ForceFull drives the lamp to full brightness for a door open and arms the
// restoration timer from now. The baseline is left alone.
func (l *Lamp) ForceFull(now Tick) error {
	l.ramp = RampState{}
	l.restorePending = true
	l.restoreFrom = now
	return l.apply(FullBrightness)
}

// StartRamp begins a ramp from RampStepPercent to FullBrightness. The first
// step is applied immediately; the rest are applied by Tick.
func (l *Lamp) StartRamp(now Tick) error {
	if err := l.con.WriteLine(msgLampRamp); err != nil {
		return fmt.Errorf("report ramp: %w", err)
	}
	l.ramp = RampState{
		Active:      true,
		NextPercent: 2 * RampStepPercent,
		LastStepAt:  now,
	}
	return l.apply(RampStepPercent)
}

// Tick advances the ramp by at most one step, then checks restoration.
// Restoration waits while a ramp is running so that no step is skipped.
func (l *Lamp) Tick(now Tick) (LampChange, error) {
	var change LampChange

	if l.ramp.Active {
		if Elapsed(now, l.ramp.LastStepAt) < RampStepInterval {
			return change, nil
		}
		step := l.ramp.NextPercent
		change.Stepped = true
		change.Step = step
		if step >= FullBrightness {
			l.ramp = RampState{}
			change.RampDone = true
			l.track(step)
		} else {
			l.ramp.NextPercent = step + RampStepPercent
			l.ramp.LastStepAt = now
		}
		return change, l.apply(step)
	}

	if l.restorePending && Elapsed(now, l.restoreFrom) >= RestoreDelay {
		l.restorePending = false
		change.Restored = true
		if err := l.con.WriteLine(msgLampRestored); err != nil {
			return change, fmt.Errorf("report restore: %w", err)
		}
		return change, l.apply(l.baseline)
	}

	return change, nil
}

func (l *Lamp) track(percent uint8) {
	if !l.frozenBaseline {
		l.baseline = percent
	}
}

func (l *Lamp) apply(percent uint8) error {
	l.duty = percent
	if err := l.out.SetLampDuty(percent); err != nil {
		return fmt.Errorf("set lamp duty %d: %w", percent, err)
	}
	return nil
}
