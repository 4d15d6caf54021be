package mqtt

import "log"

// queuedMsg stores a serialized MQTT message for replay after the
// broker connection comes back.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO holding messages published while
// disconnected. When full, the oldest message is overwritten: a late
// replay of stale switch states is worth less than the recent ones.
// Not safe for concurrent use — caller must synchronize.
type ringBuffer struct {
	buf      []queuedMsg
	capacity int
	head     int // next write position
	count    int
	overflow bool // true if any message was dropped since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		buf:      make([]queuedMsg, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(msg queuedMsg) {
	if r.count == r.capacity {
		if !r.overflow {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", r.capacity)
			r.overflow = true
		}
		// Overwrite oldest: head is already pointing at it
		r.buf[r.head] = msg
		r.head = (r.head + 1) % r.capacity
		// count stays at capacity
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
	r.count++
}

// drainAll returns the buffered messages in publish order and empties
// the buffer.
func (r *ringBuffer) drainAll() []queuedMsg {
	if r.count == 0 {
		return nil
	}

	result := make([]queuedMsg, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}
