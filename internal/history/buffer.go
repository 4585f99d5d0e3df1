// Package history implements the bounded activity event buffer.
//
// Time complexity: O(1) amortized for Append, O(n) for Snapshot.
// Space complexity: O(n) where n is capacity.
//
// The buffer is append-only at the tail; when full, the oldest event is
// evicted from the head. Eviction is the intended retention policy, not a
// failure. The buffer is rebuilt each process lifetime; persistence is the
// store's job.
package history

import (
	"sync"

	"github.com/p-blackswan/activity-agent/internal/event"
)

// DefaultCapacity bounds the buffer when no capacity is configured.
const DefaultCapacity = 1000

// Buffer is a fixed-capacity ordered store of recent activity events.
// Single writer (the tracker), multiple readers via Snapshot.
type Buffer struct {
	mu       sync.RWMutex
	capacity int
	events   []event.Event // ring storage
	start    int           // index of oldest event
	size     int
}

// New creates a Buffer with the given capacity.
// Panics if capacity < 1.
func New(capacity int) *Buffer {
	if capacity < 1 {
		panic("history: capacity must be >= 1")
	}
	return &Buffer{
		capacity: capacity,
		events:   make([]event.Event, capacity),
	}
}

// Append adds an event at the tail, evicting the oldest event when full.
// Always succeeds.
func (b *Buffer) Append(ev event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size < b.capacity {
		b.events[(b.start+b.size)%b.capacity] = ev
		b.size++
		return
	}

	// Full: overwrite the head slot and advance.
	b.events[b.start] = ev
	b.start = (b.start + 1) % b.capacity
}

// Snapshot returns a point-in-time copy of the buffer contents in insertion
// order, oldest first. Detectors scan the copy, never the live buffer.
func (b *Buffer) Snapshot() []event.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]event.Event, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.events[(b.start+i)%b.capacity]
	}
	return out
}

// Len returns the current number of buffered events.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the configured capacity.
func (b *Buffer) Cap() int { return b.capacity }
