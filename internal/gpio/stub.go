//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealDriver is not available on non-Linux platforms.
type RealDriver struct{}

// NewRealDriver returns an error on non-Linux platforms.
func NewRealDriver(chipName string, doorPin, lampPin, pwmFreq int) (*RealDriver, error) {
	return nil, errUnsupported
}

// SetDoor is not implemented on non-Linux platforms.
func (d *RealDriver) SetDoor(open bool) error { return errUnsupported }

// SetLampDuty is not implemented on non-Linux platforms.
func (d *RealDriver) SetLampDuty(percent uint8) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (d *RealDriver) Close() error { return nil }

// RealButton is not available on non-Linux platforms.
type RealButton struct{}

// NewRealButton returns an error on non-Linux platforms.
func NewRealButton(chipName string, pin int) (*RealButton, error) {
	return nil, errUnsupported
}

// Presses returns nil on non-Linux platforms.
func (b *RealButton) Presses() <-chan struct{} { return nil }

// Close is not implemented on non-Linux platforms.
func (b *RealButton) Close() error { return nil }

// ReadLines returns an error on non-Linux platforms.
func ReadLines(chipName string, doorPin, buttonPin int) (bool, bool, error) {
	return false, false, errUnsupported
}
