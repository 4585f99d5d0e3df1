package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/p-blackswan/activity-agent/internal/event"
)

func mkEvent(i int) event.Event {
	return event.Event{ID: fmt.Sprintf("evt-%d", i), Kind: event.KindSystem}
}

func TestAppendAndSnapshot(t *testing.T) {
	b := New(5)

	for i := 0; i < 3; i++ {
		b.Append(mkEvent(i))
	}

	snap := b.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	for i, ev := range snap {
		if ev.ID != fmt.Sprintf("evt-%d", i) {
			t.Fatalf("expected evt-%d at index %d, got %s", i, i, ev.ID)
		}
	}
}

func TestEvictionKeepsMostRecent(t *testing.T) {
	const capacity = 4
	b := New(capacity)

	// Append capacity+k events; buffer must hold the most recent `capacity`.
	const total = capacity + 7
	for i := 0; i < total; i++ {
		b.Append(mkEvent(i))
	}

	if b.Len() != capacity {
		t.Fatalf("expected len=%d, got %d", capacity, b.Len())
	}

	snap := b.Snapshot()
	for i, ev := range snap {
		want := fmt.Sprintf("evt-%d", total-capacity+i)
		if ev.ID != want {
			t.Fatalf("expected %s at index %d, got %s", want, i, ev.ID)
		}
	}
}

func TestSnapshotLengthProperty(t *testing.T) {
	const capacity = 10
	for _, total := range []int{0, 1, capacity - 1, capacity, capacity + 1, 3 * capacity} {
		b := New(capacity)
		for i := 0; i < total; i++ {
			b.Append(mkEvent(i))
		}
		want := total
		if want > capacity {
			want = capacity
		}
		if got := len(b.Snapshot()); got != want {
			t.Fatalf("after %d appends: expected snapshot len %d, got %d", total, want, got)
		}
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	b := New(3)
	b.Append(mkEvent(0))

	snap := b.Snapshot()
	b.Append(mkEvent(1))
	b.Append(mkEvent(2))

	if len(snap) != 1 || snap[0].ID != "evt-0" {
		t.Fatalf("snapshot mutated by later appends: %+v", snap)
	}
}

func TestConcurrentAppendAndSnapshot(t *testing.T) {
	b := New(100)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Append(mkEvent(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := b.Snapshot()
			if len(snap) > 100 {
				t.Errorf("snapshot exceeds capacity: %d", len(snap))
				return
			}
		}
	}()
	wg.Wait()

	if b.Len() != 100 {
		t.Fatalf("expected full buffer, got %d", b.Len())
	}
}
