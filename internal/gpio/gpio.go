// Package gpio drives the door actuator and the lamp PWM, and delivers button
// edges, with hardware abstraction.
// The real implementation uses the Linux GPIO character device for the door
// and the button, and the BCM PWM peripheral for the lamp.
// The fake implementation allows testing without hardware.
package gpio

// Driver drives the room outputs. It satisfies logic.Output.
type Driver interface {
	// SetDoor drives the actuator line: true = open.
	SetDoor(open bool) error

	// SetLampDuty programs the lamp duty cycle in percent (0..100).
	SetLampDuty(percent uint8) error

	// Close releases GPIO resources, leaving the door closed and the lamp off.
	Close() error
}

// Button delivers one value per falling edge on the button line.
// Edges are not debounced here; the controller does that.
type Button interface {
	Presses() <-chan struct{}
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinDoor   = 17 // Door actuator output
	DefaultPinButton = 27 // Door button input, active low
	DefaultPinLamp   = 18 // Lamp, hardware PWM0
)

// DefaultChip is the GPIO character device the lines are requested from.
const DefaultChip = "gpiochip0"

// PWM timing for the lamp: one period is pwmCycleLen counts.
const (
	DefaultPWMFreq = 1000 // Hz
	pwmCycleLen    = 100
)

// dutyCounts converts a percent to PWM counts, clamping above 100.
func dutyCounts(percent uint8) uint32 {
	if percent > 100 {
		percent = 100
	}
	return uint32(percent) * pwmCycleLen / 100
}
