package mqtt

import "github.com/rs/zerolog/log"

// pendingMsg is a serialized message held for replay after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO of messages published while disconnected.
// When full, the oldest message is overwritten.
// Not safe for concurrent use; the caller synchronizes.
type outbox struct {
	msgs    []pendingMsg
	next    int // slot the next push writes
	count   int
	dropped int // overwritten since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{msgs: make([]pendingMsg, capacity)}
}

func (o *outbox) push(msg pendingMsg) {
	capacity := len(o.msgs)
	if o.count == capacity {
		if o.dropped == 0 {
			log.Warn().Int("capacity", capacity).Msg("mqtt outbox full, dropping oldest")
		}
		o.dropped++
	} else {
		o.count++
	}
	o.msgs[o.next] = msg
	o.next = (o.next + 1) % capacity
}

// drain returns queued messages oldest first and empties the outbox.
func (o *outbox) drain() []pendingMsg {
	if o.count == 0 {
		return nil
	}

	capacity := len(o.msgs)
	out := make([]pendingMsg, 0, o.count)
	first := (o.next - o.count + capacity) % capacity
	for i := 0; i < o.count; i++ {
		out = append(out, o.msgs[(first+i)%capacity])
	}

	if o.dropped > 0 {
		log.Warn().Int("dropped", o.dropped).Msg("mqtt outbox overflowed while offline")
	}
	o.count = 0
	o.next = 0
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return o.count
}
