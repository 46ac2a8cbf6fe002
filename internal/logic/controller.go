package logic

import (
	"errors"
	"fmt"
	"sync"
)

// Startup banner lines.
const (
	BannerName      = "Controlador de Sala v1.0"
	BannerDeveloper = "Desarrollador: Johan Sebastian Mendieta Dilbert"
)

// Option configures a Controller.
type Option func(*Controller)

// WithFrozenBaseline keeps the restoration target at InitialBaseline forever,
// ignoring level commands.
func WithFrozenBaseline() Option {
	return func(c *Controller) { c.frozenBaseline = true }
}

// Controller owns the door, the lamp and the debounce gate. Button presses,
// command bytes and ticks may arrive from different goroutines; every entry
// point runs under one lock so multi-field updates and output writes are
// never interleaved.
type Controller struct {
	mu sync.Mutex

	out Output
	con Console

	gate   DebounceGate
	door   *Door
	lamp   *Lamp
	interp *Interpreter

	frozenBaseline bool
	counts         EventCounts
}

// NewController creates a Controller. Call Init before delivering events.
func NewController(out Output, con Console, opts ...Option) *Controller {
	c := &Controller{out: out, con: con}
	for _, opt := range opts {
		opt(c)
	}
	c.door = NewDoor(out, con)
	c.lamp = NewLamp(out, con, c.frozenBaseline)
	c.interp = NewInterpreter(c.door, c.lamp, con)
	return c
}

// Init drives the outputs to their initial state and prints the banner.
func (c *Controller) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if err := c.out.SetDoor(false); err != nil {
		errs = append(errs, fmt.Errorf("init door: %w", err))
	}
	if err := c.out.SetLampDuty(c.lamp.Duty()); err != nil {
		errs = append(errs, fmt.Errorf("init lamp: %w", err))
	}

	lines := []string{
		BannerName,
		BannerDeveloper,
		"Estado inicial:",
		fmt.Sprintf("-Lámpara: %d%%", c.lamp.Duty()),
		"-Puerta: Cerrada",
	}
	for _, line := range lines {
		if err := c.con.WriteLine(line); err != nil {
			errs = append(errs, fmt.Errorf("write banner: %w", err))
			break
		}
	}
	return errors.Join(errs...)
}

// OnButton handles a button edge. Presses within DebounceInterval of the last
// accepted one are absorbed and reported only as EventButtonIgnored.
func (c *Controller) OnButton(now Tick) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.gate.Accept(now) {
		c.counts.BouncesDenied++
		return []Event{c.event(now, EventButtonIgnored)}, nil
	}

	err := openDoor(c.door, c.lamp, now, SourceButton)
	ev := c.event(now, EventDoorOpened)
	ev.Source = SourceButton
	events := []Event{ev}
	c.count(events)
	return events, err
}

// OnCommand parses and executes one command byte.
func (c *Controller) OnCommand(now Tick, ch byte) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := c.interp.Dispatch(now, ParseCommand(ch))
	c.count(events)
	return events, err
}

// OnTick runs the periodic checks: door auto-close, then lamp ramp and restoration.
func (c *Controller) OnTick(now Tick) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var events []Event

	closed, doorErr := c.door.Tick(now)
	if closed {
		events = append(events, c.event(now, EventDoorAutoClosed))
	}

	change, lampErr := c.lamp.Tick(now)
	switch {
	case change.RampDone:
		events = append(events, c.event(now, EventRampDone))
	case change.Stepped:
		events = append(events, c.event(now, EventRampStep))
	case change.Restored:
		events = append(events, c.event(now, EventLampRestored))
	}

	c.count(events)
	return events, errors.Join(doorErr, lampErr)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	restorePending, restoreFrom := c.lamp.RestorePending()
	ramp := c.lamp.Ramp()
	return State{
		DoorOpen:       c.door.IsOpen(),
		OpenedAt:       c.door.OpenedAt(),
		Duty:           c.lamp.Duty(),
		Baseline:       c.lamp.Baseline(),
		RestorePending: restorePending,
		RestoreFrom:    restoreFrom,
		RampActive:     ramp.Active,
		RampNext:       ramp.NextPercent,
		Counts:         c.counts,
	}
}

func (c *Controller) event(now Tick, typ EventType) Event {
	return Event{
		Tick:     now,
		Type:     typ,
		DoorOpen: c.door.IsOpen(),
		Duty:     c.lamp.Duty(),
	}
}

func (c *Controller) count(events []Event) {
	for _, e := range events {
		switch e.Type {
		case EventDoorOpened:
			c.counts.Opens++
		case EventDoorClosed:
			c.counts.Closes++
		case EventDoorAutoClosed:
			c.counts.AutoCloses++
		case EventLampRestored:
			c.counts.Restorations++
		case EventRampStarted:
			c.counts.Ramps++
		case EventUnknownCommand:
			c.counts.Unknown++
		}
	}
}
