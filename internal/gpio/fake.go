package gpio

import (
	"errors"
	"sync"
)

// FakeDriver is a test double that records every output write.
type FakeDriver struct {
	mu sync.Mutex

	// DoorWrites and DutyWrites hold every value written, in order.
	DoorWrites []bool
	DutyWrites []uint8

	// DoorError and DutyError, if set, are returned by the matching setter
	// after the write is recorded.
	DoorError error
	DutyError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeDriver creates a FakeDriver with no writes.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// SetDoor records the door write.
func (f *FakeDriver) SetDoor(open bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DoorWrites = append(f.DoorWrites, open)
	return f.DoorError
}

// SetLampDuty records the duty write. Values above 100 are rejected like the
// real driver does.
func (f *FakeDriver) SetLampDuty(percent uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if percent > 100 {
		return errors.New("lamp duty out of range")
	}
	f.DutyWrites = append(f.DutyWrites, percent)
	return f.DutyError
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Door returns the last door write, false if none.
func (f *FakeDriver) Door() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.DoorWrites) == 0 {
		return false
	}
	return f.DoorWrites[len(f.DoorWrites)-1]
}

// Duty returns the last duty write, 0 if none.
func (f *FakeDriver) Duty() uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.DutyWrites) == 0 {
		return 0
	}
	return f.DutyWrites[len(f.DutyWrites)-1]
}

// Reset clears recorded writes and errors.
func (f *FakeDriver) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DoorWrites = nil
	f.DutyWrites = nil
	f.DoorError = nil
	f.DutyError = nil
	f.Closed = false
}

// FakeButton is a Button whose presses are injected by tests.
type FakeButton struct {
	presses chan struct{}
	Closed  bool
}

// NewFakeButton creates a FakeButton with room for buffered presses.
func NewFakeButton(buffer int) *FakeButton {
	return &FakeButton{presses: make(chan struct{}, buffer)}
}

// Press injects one edge. It blocks if the buffer is full.
func (b *FakeButton) Press() {
	b.presses <- struct{}{}
}

// Presses returns the edge channel.
func (b *FakeButton) Presses() <-chan struct{} {
	return b.presses
}

// Close marks the button as closed.
func (b *FakeButton) Close() error {
	b.Closed = true
	return nil
}
