// Package logic contains the pure control logic for the room controller.
// This package has NO external dependencies (no GPIO, serial, MQTT, OS, or time.Sleep).
// Time is always injected as a Tick, and hardware is reached only through the
// Output and Console interfaces.
package logic

// Tick is a monotonic millisecond counter. It wraps at 2^32.
type Tick uint32

// Elapsed returns the milliseconds from since to now. Unsigned subtraction
// keeps the result correct across a counter wrap.
func Elapsed(now, since Tick) uint32 {
	return uint32(now - since)
}

// Fixed timing and brightness constants.
const (
	DebounceInterval = 50    // ms between accepted button presses
	AutoCloseDelay   = 3000  // ms a door stays open
	RestoreDelay     = 10000 // ms after an open before the lamp returns to baseline
	RampStepInterval = 500   // ms each ramp step is held

	InitialBaseline = 20
	FullBrightness  = 100
	RampStepPercent = 10
)

// Output drives the door actuator and the lamp PWM channel.
type Output interface {
	// SetDoor drives the actuator open (true) or closed (false).
	SetDoor(open bool) error
	// SetLampDuty programs the lamp duty cycle, 0..100 percent.
	SetLampDuty(percent uint8) error
}

// Console is the outbound, line-oriented text channel.
// Lines are passed without terminators; the channel appends CRLF.
type Console interface {
	WriteLine(line string) error
}

// Source identifies what opened the door.
type Source string

const (
	SourceButton Source = "BUTTON"
	SourceRemote Source = "REMOTE"
)

// EventType represents something the controller did.
type EventType string

const (
	EventDoorOpened     EventType = "DOOR_OPENED"
	EventDoorClosed     EventType = "DOOR_CLOSED"
	EventDoorAutoClosed EventType = "DOOR_AUTO_CLOSED"
	EventLampLevel      EventType = "LAMP_LEVEL"
	EventLampRestored   EventType = "LAMP_RESTORED"
	EventRampStarted    EventType = "RAMP_STARTED"
	EventRampStep       EventType = "RAMP_STEP"
	EventRampDone       EventType = "RAMP_DONE"
	EventButtonIgnored  EventType = "BUTTON_IGNORED"
	EventUnknownCommand EventType = "UNKNOWN_COMMAND"
)

// Event represents a state change to be published.
type Event struct {
	Tick     Tick
	Type     EventType
	Source   Source // set for door opens
	Command  Command
	DoorOpen bool
	Duty     uint8
}

// EventCounts tracks the number of each notable event since startup.
type EventCounts struct {
	Opens         int
	Closes        int
	AutoCloses    int
	Restorations  int
	Ramps         int
	BouncesDenied int
	Unknown       int
}

// State is a point-in-time copy of the controller state.
type State struct {
	DoorOpen       bool
	OpenedAt       Tick
	Duty           uint8
	Baseline       uint8
	RestorePending bool
	RestoreFrom    Tick
	RampActive     bool
	RampNext       uint8
	Counts         EventCounts
}

// DoorText returns the door state as shown on the text channel.
func (s State) DoorText() string {
	if s.DoorOpen {
		return "Abierta"
	}
	return "Cerrada"
}
