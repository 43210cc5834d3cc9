package recorder

import (
	"sync"

	"machsafe/internal/audit/models"
)

// entry is one buffered event plus how many store writes it has survived.
type entry struct {
	event   models.Event
	attempt int
}

// ringBuffer is a bounded, thread-safe buffer for pending audit events.
// When full, the oldest events are dropped to make room for new ones: the
// recorder absorbs backpressure instead of passing it to business operations.
type ringBuffer struct {
	mu       sync.Mutex
	entries  []entry
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int

	dropped int64
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &ringBuffer{
		entries:  make([]entry, capacity),
		capacity: capacity,
	}
}

// enqueue adds an entry, dropping the oldest if necessary. It never fails;
// the return value reports whether an older entry was evicted.
func (b *ringBuffer) enqueue(e entry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	evicted := false
	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
		evicted = true
	}

	b.entries[b.head] = e
	b.head = (b.head + 1) % b.capacity
	b.count++
	return evicted
}

// dequeueBatch removes up to n entries from the buffer.
func (b *ringBuffer) dequeueBatch(n int) []entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	result := make([]entry, n)
	for i := 0; i < n; i++ {
		result[i] = b.entries[b.tail]
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n

	return result
}

func (b *ringBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *ringBuffer) droppedCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
