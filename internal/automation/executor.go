package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// StepRunner is the input-replay collaborator that actually performs a task's
// steps. The executor invokes it once per execution and only records whether
// it completed without error.
type StepRunner interface {
	Run(ctx context.Context, task Snapshot) error
}

// NoopRunner reports success without performing any steps. Used when no real
// input-replay collaborator is connected.
type NoopRunner struct{}

// Run logs nothing and succeeds.
func (NoopRunner) Run(_ context.Context, _ Snapshot) error { return nil }

// Result describes one completed execution attempt.
type Result struct {
	TaskID     string    `json:"task_id"`
	TaskName   string    `json:"task_name"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Executor runs automation tasks through the step runner and keeps the
// per-task execution bookkeeping.
type Executor struct {
	runner StepRunner
	logger zerolog.Logger
}

// NewExecutor creates an Executor. A nil runner falls back to NoopRunner.
func NewExecutor(runner StepRunner, logger zerolog.Logger) *Executor {
	if runner == nil {
		runner = NoopRunner{}
	}
	return &Executor{
		runner: runner,
		logger: logger.With().Str("component", "executor").Logger(),
	}
}

// Execute runs the task once. Bookkeeping (execution count, last-executed
// timestamp) happens on success and failure alike; a failed execution is
// reported in the Result, never escalated.
func (e *Executor) Execute(ctx context.Context, t *Task) Result {
	now := time.Now()
	snap := t.Snapshot()

	e.logger.Info().
		Str("task_id", snap.ID).
		Str("name", snap.Name).
		Int("steps", len(snap.Steps)).
		Msg("executing automation")

	err := e.runner.Run(ctx, snap)
	t.recordExecution(now)

	res := Result{
		TaskID:     snap.ID,
		TaskName:   snap.Name,
		ExecutedAt: now,
	}
	if err != nil {
		res.Success = false
		res.Message = fmt.Sprintf("automation %q failed: %v", snap.Name, err)
		e.logger.Error().Err(err).Str("task_id", snap.ID).Msg("automation failed")
		return res
	}

	res.Success = true
	res.Message = fmt.Sprintf("automation %q completed", snap.Name)
	e.logger.Info().Str("task_id", snap.ID).Msg("automation completed")
	return res
}
