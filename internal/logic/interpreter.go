package logic

import (
	"errors"
	"fmt"
)

const msgUnknownCommand = "Comando desconocido."

// Interpreter maps commands onto the door and the lamp.
type Interpreter struct {
	door *Door
	lamp *Lamp
	con  Console
}

// NewInterpreter creates an Interpreter over the given components.
func NewInterpreter(door *Door, lamp *Lamp, con Console) *Interpreter {
	return &Interpreter{door: door, lamp: lamp, con: con}
}

// Dispatch executes cmd at now and returns the events it produced.
// An unknown command is reported on the console and is not an error.
func (in *Interpreter) Dispatch(now Tick, cmd Command) ([]Event, error) {
	if percent, ok := cmd.Percent(); ok {
		err := in.lamp.SetLevel(percent)
		return []Event{in.event(now, EventLampLevel, cmd)}, err
	}

	switch cmd {
	case CmdOpen:
		err := openDoor(in.door, in.lamp, now, SourceRemote)
		ev := in.event(now, EventDoorOpened, cmd)
		ev.Source = SourceRemote
		return []Event{ev}, err

	case CmdClose:
		err := in.door.Close()
		return []Event{in.event(now, EventDoorClosed, cmd)}, err

	case CmdStatus:
		return nil, in.status()

	case CmdRamp:
		err := in.lamp.StartRamp(now)
		return []Event{in.event(now, EventRampStarted, cmd)}, err

	case CmdHelp:
		return nil, in.writeLines(HelpLines...)
	}

	if err := in.con.WriteLine(msgUnknownCommand); err != nil {
		return nil, fmt.Errorf("report unknown command: %w", err)
	}
	return []Event{in.event(now, EventUnknownCommand, cmd)}, nil
}

func (in *Interpreter) status() error {
	door := "Puerta: Cerrada"
	if in.door.IsOpen() {
		door = "Puerta: Abierta."
	}
	return in.writeLines(
		"Estado actual:",
		fmt.Sprintf("Lámpara: %d%%", in.lamp.Duty()),
		door,
	)
}

func (in *Interpreter) writeLines(lines ...string) error {
	for _, line := range lines {
		if err := in.con.WriteLine(line); err != nil {
			return fmt.Errorf("write console: %w", err)
		}
	}
	return nil
}

func (in *Interpreter) event(now Tick, typ EventType, cmd Command) Event {
	return Event{
		Tick:     now,
		Type:     typ,
		Command:  cmd,
		DoorOpen: in.door.IsOpen(),
		Duty:     in.lamp.Duty(),
	}
}

// openDoor is the full open transition shared by the button and the remote
// command: the door opens and the lamp goes to full with restoration armed.
func openDoor(door *Door, lamp *Lamp, now Tick, source Source) error {
	return errors.Join(door.Open(now, source), lamp.ForceFull(now))
}
