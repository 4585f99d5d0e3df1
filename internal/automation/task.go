package automation

import (
	"sync"
	"time"
)

// Step is one opaque step descriptor inside a task. Interpretation belongs to
// the input-replay collaborator; the core never inspects Params.
type Step struct {
	Type   string            `json:"type" yaml:"type"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Task is a named, user-defined sequence of steps plus trigger conditions.
// Identity fields and Triggers are immutable after creation; ExecutionCount
// and LastExecutedAt are mutated only by the executor, IsActive only through
// SetActive.
type Task struct {
	mu sync.RWMutex

	id          string
	name        string
	description string
	steps       []Step
	triggers    []Trigger
	createdAt   time.Time

	executionCount int
	lastExecutedAt time.Time
	isActive       bool
}

// Snapshot is an immutable copy of a task's state, safe to hand across
// goroutines and to API responses.
type Snapshot struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Steps          []Step    `json:"steps"`
	Triggers       []Trigger `json:"triggers"`
	ExecutionCount int       `json:"execution_count"`
	LastExecutedAt time.Time `json:"last_executed_at,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// ID returns the task's identifier.
func (t *Task) ID() string { return t.id }

// Name returns the task's name.
func (t *Task) Name() string { return t.name }

// Triggers returns the task's trigger set. The slice is immutable after
// creation; callers must not modify it.
func (t *Task) Triggers() []Trigger { return t.triggers }

// Active reports whether the task participates in trigger matching.
func (t *Task) Active() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isActive
}

// SetActive toggles the task's activation state.
func (t *Task) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.isActive = active
}

// ExecutionCount returns how many times the task has executed.
func (t *Task) ExecutionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.executionCount
}

// Snapshot returns a copy of the current task state.
func (t *Task) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	steps := make([]Step, len(t.steps))
	copy(steps, t.steps)
	triggers := make([]Trigger, len(t.triggers))
	copy(triggers, t.triggers)

	return Snapshot{
		ID:             t.id,
		Name:           t.name,
		Description:    t.description,
		Steps:          steps,
		Triggers:       triggers,
		ExecutionCount: t.executionCount,
		LastExecutedAt: t.lastExecutedAt,
		IsActive:       t.isActive,
		CreatedAt:      t.createdAt,
	}
}

// recordExecution performs the executor's bookkeeping. It runs on success and
// failure alike so execution counts stay meaningful for auditing.
func (t *Task) recordExecution(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.executionCount++
	t.lastExecutedAt = at
}
