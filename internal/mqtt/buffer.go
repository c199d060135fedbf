package mqtt

import (
	"log"

	ring "github.com/zfjagann/golang-ring"
)

// DefaultBufferSize is the number of messages held while disconnected.
const DefaultBufferSize = 256

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages published while the broker is unreachable. When
// full, the oldest message is overwritten.
// Not safe for concurrent use; the caller must synchronize.
type outbox struct {
	r        *ring.Ring
	capacity int
	count    int
	dropped  int
	overflow bool // true if any message was dropped since last drain
}

func newOutbox(capacity int) *outbox {
	o := &outbox{capacity: capacity}
	o.clear()
	return o
}

func (o *outbox) clear() {
	o.r = &ring.Ring{}
	o.r.SetCapacity(o.capacity)
	o.count = 0
	o.overflow = false
}

func (o *outbox) push(msg bufferedMsg) {
	if o.count == o.capacity {
		if !o.overflow {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", o.capacity)
			o.overflow = true
		}
		o.dropped++
	} else {
		o.count++
	}
	o.r.Enqueue(msg)
}

// drain returns buffered messages oldest first and empties the outbox.
func (o *outbox) drain() []bufferedMsg {
	if o.count == 0 {
		return nil
	}
	vals := o.r.Values()
	out := make([]bufferedMsg, len(vals))
	for i, v := range vals {
		out[i] = v.(bufferedMsg)
	}
	o.clear()
	return out
}

func (o *outbox) len() int {
	return o.count
}
