package mqtt

import (
	"testing"
)

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(10)
	if got := o.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestOutboxPushAndDrain(t *testing.T) {
	o := newOutbox(10)
	for i := 0; i < 5; i++ {
		o.push(pendingMsg{topic: "t", payload: []byte{byte(i)}})
	}
	if o.len() != 5 {
		t.Fatalf("len: got %d, want 5", o.len())
	}

	got := o.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	if o.drain() != nil {
		t.Error("second drain should be empty")
	}
	if o.len() != 0 {
		t.Error("len should be 0 after drain")
	}
}

func TestOutboxOverflowKeepsNewest(t *testing.T) {
	size := 5
	o := newOutbox(size)

	// Push 0..7; the oldest three are overwritten.
	for i := 0; i < size+3; i++ {
		o.push(pendingMsg{topic: "t", payload: []byte{byte(i)}})
	}
	if o.dropped != 3 {
		t.Errorf("dropped: got %d, want 3", o.dropped)
	}

	got := o.drain()
	if len(got) != size {
		t.Fatalf("expected %d items, got %d", size, len(got))
	}
	for i := 0; i < size; i++ {
		want := byte(i + 3)
		if got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
	if o.dropped != 0 {
		t.Error("drain should reset the drop counter")
	}
}

func TestOutboxReusableAfterDrain(t *testing.T) {
	o := newOutbox(3)
	for cycle := 0; cycle < 3; cycle++ {
		o.push(pendingMsg{topic: "a", qos: 1})
		o.push(pendingMsg{topic: "b", retained: true})

		got := o.drain()
		if len(got) != 2 {
			t.Fatalf("cycle %d: expected 2 items, got %d", cycle, len(got))
		}
		if got[0].topic != "a" || got[0].qos != 1 {
			t.Errorf("cycle %d: first item %+v", cycle, got[0])
		}
		if got[1].topic != "b" || !got[1].retained {
			t.Errorf("cycle %d: second item %+v", cycle, got[1])
		}
	}
}
