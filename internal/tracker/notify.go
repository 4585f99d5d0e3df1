package tracker

import (
	"sync"

	"github.com/p-blackswan/activity-agent/internal/automation"
	"github.com/p-blackswan/activity-agent/internal/event"
	"github.com/p-blackswan/activity-agent/internal/suggest"
)

// Listener receives tracker notifications: raw events, accepted suggestions
// and automation execution results. Implementations must not block; slow
// consumers (persistence, UI transport) queue internally.
type Listener interface {
	OnEvent(ev event.Event)
	OnSuggestion(s suggest.Suggestion)
	OnExecution(res automation.Result)
}

// notifier fans notifications out to subscribed listeners.
// Safe for concurrent use; execution results arrive from worker goroutines.
type notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

func (n *notifier) subscribe(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

func (n *notifier) snapshot() []Listener {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Listener, len(n.listeners))
	copy(out, n.listeners)
	return out
}

func (n *notifier) publishEvent(ev event.Event) {
	for _, l := range n.snapshot() {
		l.OnEvent(ev)
	}
}

func (n *notifier) publishSuggestion(s suggest.Suggestion) {
	for _, l := range n.snapshot() {
		l.OnSuggestion(s)
	}
}

func (n *notifier) publishExecution(res automation.Result) {
	for _, l := range n.snapshot() {
		l.OnExecution(res)
	}
}
