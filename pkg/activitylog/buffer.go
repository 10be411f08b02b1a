package activitylog

import "sync"

// RingBuffer is a bounded, thread-safe FIFO of entries. When full, the oldest
// entries are dropped to make room for new ones.
type RingBuffer struct {
	mu       sync.Mutex
	entries  []Entry
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int

	dropped int64
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RingBuffer{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

// Enqueue adds an entry, dropping the oldest if necessary.
func (b *RingBuffer) Enqueue(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
	}
	b.entries[b.head] = e
	b.head = (b.head + 1) % b.capacity
	b.count++
}

// Requeue puts entries back in front of the buffer in their original order.
// Anything that no longer fits is dropped from the old end.
func (b *RingBuffer) Requeue(entries []Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := len(entries) - 1; i >= 0; i-- {
		if b.count >= b.capacity {
			b.dropped += int64(i + 1)
			return
		}
		b.tail = (b.tail - 1 + b.capacity) % b.capacity
		b.entries[b.tail] = entries[i]
		b.count++
	}
}

// DequeueBatch removes up to n entries, oldest first.
func (b *RingBuffer) DequeueBatch(n int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}
	out := make([]Entry, n)
	for i := range n {
		out[i] = b.entries[b.tail]
		b.entries[b.tail] = Entry{}
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return out
}

func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Dropped returns the total number of entries evicted so far.
func (b *RingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
