package automation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrTaskNotFound is returned when a task id does not resolve.
var ErrTaskNotFound = errors.New("automation: task not found")

// TaskSpec describes a task to create. Steps and triggers are copied.
type TaskSpec struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step    `json:"steps" yaml:"steps"`
	Triggers    []Trigger `json:"triggers,omitempty" yaml:"triggers,omitempty"`

	// Active defaults to true when nil.
	Active *bool `json:"active,omitempty" yaml:"active,omitempty"`

	// ID is set when restoring a persisted task; empty for new tasks.
	ID string `json:"-" yaml:"-"`

	// Restored bookkeeping, used only when loading from the persistence
	// collaborator at startup.
	ExecutionCount int       `json:"-" yaml:"-"`
	LastExecutedAt time.Time `json:"-" yaml:"-"`
	CreatedAt      time.Time `json:"-" yaml:"-"`
}

// Registry is the in-memory set of automation tasks. Tasks are created and
// toggled externally (config seed, persistence load, management API) and read
// by the trigger matcher. The core never deletes tasks.
type Registry struct {
	mu      sync.RWMutex
	tasks   map[string]*Task
	ordered []*Task // creation order, for stable listing
	logger  zerolog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		tasks:  make(map[string]*Task),
		logger: logger.With().Str("component", "task_registry").Logger(),
	}
}

// Create validates the spec, assigns an id if needed and registers the task.
func (r *Registry) Create(spec TaskSpec) (*Task, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("automation: task name is required")
	}
	for _, trg := range spec.Triggers {
		if err := trg.Validate(); err != nil {
			return nil, fmt.Errorf("automation: task %q: %w", spec.Name, err)
		}
	}

	id := spec.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := spec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	active := true
	if spec.Active != nil {
		active = *spec.Active
	}

	steps := make([]Step, len(spec.Steps))
	copy(steps, spec.Steps)
	triggers := make([]Trigger, len(spec.Triggers))
	copy(triggers, spec.Triggers)

	t := &Task{
		id:             id,
		name:           spec.Name,
		description:    spec.Description,
		steps:          steps,
		triggers:       triggers,
		createdAt:      createdAt,
		executionCount: spec.ExecutionCount,
		lastExecutedAt: spec.LastExecutedAt,
		isActive:       active,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[id]; exists {
		return nil, fmt.Errorf("automation: task id %q already registered", id)
	}
	r.tasks[id] = t
	r.ordered = append(r.ordered, t)

	r.logger.Info().
		Str("task_id", id).
		Str("name", spec.Name).
		Int("triggers", len(triggers)).
		Bool("active", active).
		Msg("task registered")

	return t, nil
}

// Get returns a task by id, or ErrTaskNotFound.
func (r *Registry) Get(id string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t, nil
}

// SetActive toggles a task's activation state.
func (r *Registry) SetActive(id string, active bool) error {
	t, err := r.Get(id)
	if err != nil {
		return err
	}
	t.SetActive(active)
	r.logger.Info().Str("task_id", id).Bool("active", active).Msg("task activation changed")
	return nil
}

// List returns snapshots of all tasks in creation order.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Snapshot, len(r.ordered))
	for i, t := range r.ordered {
		out[i] = t.Snapshot()
	}
	return out
}

// Active returns the tasks currently participating in trigger matching.
func (r *Registry) Active() []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Task
	for _, t := range r.ordered {
		if t.Active() {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
