//go:build linux

package gpio

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives the door line through the GPIO character device and the
// lamp through the BCM hardware PWM.
type RealDriver struct {
	chip     *gpiocdev.Chip
	door     *gpiocdev.Line
	lamp     rpio.Pin
	rpioOpen bool
}

// NewRealDriver requests the door line as an output (closed) and configures
// lampPin for hardware PWM at pwmFreq Hz. The lamp pin must be PWM capable
// (BCM 12, 13, 18 or 19).
func NewRealDriver(chipName string, doorPin, lampPin, pwmFreq int) (*RealDriver, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, errors.Wrapf(err, "open gpio chip %s", chipName)
	}

	door, err := chip.RequestLine(doorPin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, errors.Wrapf(err, "request door pin %d", doorPin)
	}

	if err := rpio.Open(); err != nil {
		door.Close()
		chip.Close()
		return nil, errors.Wrap(err, "open rpio for lamp pwm")
	}

	lamp := rpio.Pin(lampPin)
	lamp.Mode(rpio.Pwm)
	lamp.Freq(pwmFreq * pwmCycleLen)
	lamp.DutyCycle(0, pwmCycleLen)

	return &RealDriver{
		chip:     chip,
		door:     door,
		lamp:     lamp,
		rpioOpen: true,
	}, nil
}

// SetDoor drives the door line high when open.
func (d *RealDriver) SetDoor(open bool) error {
	v := 0
	if open {
		v = 1
	}
	if err := d.door.SetValue(v); err != nil {
		return errors.Wrapf(err, "set door line to %d", v)
	}
	return nil
}

// SetLampDuty programs the PWM duty cycle.
func (d *RealDriver) SetLampDuty(percent uint8) error {
	if percent > 100 {
		return errors.Errorf("lamp duty %d out of range", percent)
	}
	d.lamp.DutyCycle(dutyCounts(percent), pwmCycleLen)
	return nil
}

// Close turns the lamp off, drives the door closed and releases the lines.
func (d *RealDriver) Close() error {
	var errs []error

	if d.rpioOpen {
		d.lamp.DutyCycle(0, pwmCycleLen)
		if err := rpio.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rpio: %w", err))
		}
		d.rpioOpen = false
	}
	if d.door != nil {
		if err := d.door.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive door closed: %w", err))
		}
		if err := d.door.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close door line: %w", err))
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealButton watches the button line for falling edges.
type RealButton struct {
	chip    *gpiocdev.Chip
	line    *gpiocdev.Line
	presses chan struct{}
}

// NewRealButton requests pin as a pulled-up input with falling edge detection.
// Edges arrive on a kernel event goroutine and are forwarded without blocking;
// an edge is dropped if the previous one has not been consumed yet.
func NewRealButton(chipName string, pin int) (*RealButton, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, errors.Wrapf(err, "open gpio chip %s", chipName)
	}

	b := &RealButton{
		chip:    chip,
		presses: make(chan struct{}, 1),
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(b.handle),
	)
	if err != nil {
		chip.Close()
		return nil, errors.Wrapf(err, "request button pin %d", pin)
	}
	b.line = line

	return b, nil
}

func (b *RealButton) handle(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	select {
	case b.presses <- struct{}{}:
	default:
	}
}

// Presses returns the edge channel.
func (b *RealButton) Presses() <-chan struct{} {
	return b.presses
}

// Close releases the button line.
func (b *RealButton) Close() error {
	var errs []error
	if b.line != nil {
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button line: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// ReadLines samples the door and button lines without reconfiguring them.
// The button is active low: raw 0 = pressed.
func ReadLines(chipName string, doorPin, buttonPin int) (doorOpen, pressed bool, err error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return false, false, errors.Wrapf(err, "open gpio chip %s", chipName)
	}
	defer chip.Close()

	lines, err := chip.RequestLines([]int{doorPin, buttonPin}, gpiocdev.AsIs)
	if err != nil {
		return false, false, errors.Wrapf(err, "request pins %d,%d", doorPin, buttonPin)
	}
	defer lines.Close()

	values := make([]int, 2)
	if err := lines.Values(values); err != nil {
		return false, false, errors.Wrap(err, "read lines")
	}

	return values[0] == 1, values[1] == 0, nil
}
