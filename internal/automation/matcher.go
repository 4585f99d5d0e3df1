package automation

import (
	"github.com/p-blackswan/activity-agent/internal/event"
)

// Match pairs a task with the trigger that fired it.
type Match struct {
	Task    *Task
	Trigger Trigger
}

// Matcher evaluates incoming events against active tasks' triggers.
// Stateless; safe for concurrent use.
type Matcher struct{}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher { return &Matcher{} }

// Match returns one Match per task whose trigger set matches the event.
// Evaluation short-circuits at the first matching trigger per task, so a task
// fires at most once per event even when several of its triggers match.
// Tasks are evaluated independently; several distinct tasks may fire from a
// single event.
func (m *Matcher) Match(ev event.Event, tasks []*Task) []Match {
	var out []Match
	for _, t := range tasks {
		for _, trg := range t.Triggers() {
			if trg.Matches(ev) {
				out = append(out, Match{Task: t, Trigger: trg})
				break
			}
		}
	}
	return out
}
