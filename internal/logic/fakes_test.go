package logic

import (
	"strings"
	"testing"
)

// recorder implements Output and Console and keeps every write in order.
type recorder struct {
	doorWrites []bool
	dutyWrites []uint8
	lines      []string

	doorErr error
	dutyErr error
	lineErr error
}

func (r *recorder) SetDoor(open bool) error {
	r.doorWrites = append(r.doorWrites, open)
	return r.doorErr
}

func (r *recorder) SetLampDuty(percent uint8) error {
	r.dutyWrites = append(r.dutyWrites, percent)
	return r.dutyErr
}

func (r *recorder) WriteLine(line string) error {
	r.lines = append(r.lines, line)
	return r.lineErr
}

func (r *recorder) lastDuty(t *testing.T) uint8 {
	t.Helper()
	if len(r.dutyWrites) == 0 {
		t.Fatal("no duty writes recorded")
	}
	return r.dutyWrites[len(r.dutyWrites)-1]
}

func (r *recorder) lastDoor(t *testing.T) bool {
	t.Helper()
	if len(r.doorWrites) == 0 {
		t.Fatal("no door writes recorded")
	}
	return r.doorWrites[len(r.doorWrites)-1]
}

func (r *recorder) text() string {
	return strings.Join(r.lines, "\n")
}

func (r *recorder) reset() {
	r.doorWrites = nil
	r.dutyWrites = nil
	r.lines = nil
}

// newTestController returns an initialized controller with a cleared recorder.
func newTestController(t *testing.T, opts ...Option) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	c := NewController(rec, rec, opts...)
	if err := c.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	rec.reset()
	return c, rec
}

func hasEvent(events []Event, typ EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}
