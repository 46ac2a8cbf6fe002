package logic

import (
	"errors"
	"fmt"
)

// Text channel lines emitted by the door.
const (
	msgDoorOpenedButton = "Evento: Botón presionado - Abriendo puerta."
	msgDoorOpenedRemote = "Puerta abierta remotamente."
	msgDoorClosedRemote = "Puerta cerrada remotamente."
	msgDoorAutoClosed   = "Puerta cerrada automáticamente tras 3 segundos."
)

// Door owns the open/closed state and the auto-close deadline.
// States: Closed (initial) and Open. Open -> Closed on Close or after AutoCloseDelay.
type Door struct {
	out Output
	con Console

	isOpen   bool
	openedAt Tick
}

// NewDoor creates a closed door. It does not touch the output; Controller.Init does.
func NewDoor(out Output, con Console) *Door {
	return &Door{out: out, con: con}
}

// IsOpen reports whether the door is open.
func (d *Door) IsOpen() bool {
	return d.isOpen
}

// OpenedAt returns the tick of the most recent open. Only meaningful while open.
func (d *Door) OpenedAt() Tick {
	return d.openedAt
}

// Open opens the door and (re)starts the auto-close timer.
// Debouncing is the caller's job.
func (d *Door) Open(now Tick, source Source) error {
	d.isOpen = true
	d.openedAt = now

	msg := msgDoorOpenedRemote
	if source == SourceButton {
		msg = msgDoorOpenedButton
	}
	var errs []error
	if err := d.con.WriteLine(msg); err != nil {
		errs = append(errs, fmt.Errorf("report door open: %w", err))
	}
	if err := d.out.SetDoor(true); err != nil {
		errs = append(errs, fmt.Errorf("drive door open: %w", err))
	}
	return errors.Join(errs...)
}

// Close closes the door on remote request. Closing a closed door re-drives
// the output and reports again.
func (d *Door) Close() error {
	return d.close(msgDoorClosedRemote)
}

// Tick closes the door once AutoCloseDelay has elapsed since the last open.
// It returns true only on the tick that performed the close.
func (d *Door) Tick(now Tick) (bool, error) {
	if !d.isOpen || Elapsed(now, d.openedAt) < AutoCloseDelay {
		return false, nil
	}
	return true, d.close(msgDoorAutoClosed)
}

func (d *Door) close(msg string) error {
	d.isOpen = false
	var errs []error
	if err := d.out.SetDoor(false); err != nil {
		errs = append(errs, fmt.Errorf("drive door closed: %w", err))
	}
	if err := d.con.WriteLine(msg); err != nil {
		errs = append(errs, fmt.Errorf("report door closed: %w", err))
	}
	return errors.Join(errs...)
}
