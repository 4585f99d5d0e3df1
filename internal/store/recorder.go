package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/activity-agent/internal/automation"
	"github.com/p-blackswan/activity-agent/internal/event"
	"github.com/p-blackswan/activity-agent/internal/retry"
	"github.com/p-blackswan/activity-agent/internal/suggest"
)

// writeRetry covers transient contention (SQLITE_BUSY under WAL).
var writeRetry = retry.Config{
	MaxAttempts: 3,
	BaseDelay:   10 * time.Millisecond,
	MaxDelay:    100 * time.Millisecond,
	Jitter:      true,
	Retryable: func(err error) bool {
		msg := err.Error()
		return strings.Contains(msg, "busy") || strings.Contains(msg, "locked")
	},
}

// recordOp is one queued persistence operation. At most one data field is
// set; ack, when non-nil, is closed after the op is applied.
type recordOp struct {
	event      *event.Event
	suggestion *suggest.Suggestion
	execution  *automation.Result
	ack        chan struct{}
}

// Recorder subscribes to tracker notifications and persists them. Writes are
// queued on a buffered channel and drained by a single worker so the
// tracker's consumer loop never blocks on disk. When the queue is full the
// oldest guarantee is dropped: the write is skipped and counted in the log.
type Recorder struct {
	store  *Store
	logger zerolog.Logger
	ops    chan recordOp

	closeOnce sync.Once
	done      chan struct{}
}

// NewRecorder creates a Recorder with the given queue depth and starts its
// worker. Call Close during shutdown to flush queued writes.
func NewRecorder(store *Store, queueSize int, logger zerolog.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	r := &Recorder{
		store:  store,
		logger: logger.With().Str("component", "recorder").Logger(),
		ops:    make(chan recordOp, queueSize),
		done:   make(chan struct{}),
	}
	go r.work()
	return r
}

// OnEvent queues the event for persistence.
func (r *Recorder) OnEvent(ev event.Event) {
	r.enqueue(recordOp{event: &ev})
}

// OnSuggestion queues the suggestion for persistence.
func (r *Recorder) OnSuggestion(s suggest.Suggestion) {
	r.enqueue(recordOp{suggestion: &s})
}

// OnExecution queues the execution result for persistence.
func (r *Recorder) OnExecution(res automation.Result) {
	r.enqueue(recordOp{execution: &res})
}

// Close stops accepting writes and blocks until the queue is drained.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.ops)
		<-r.done
	})
}

func (r *Recorder) enqueue(op recordOp) {
	defer func() {
		// Sending on a closed channel panics; a notification racing Close is
		// dropped rather than crashing shutdown.
		if recover() != nil {
			r.logger.Warn().Msg("write after close dropped")
		}
	}()

	select {
	case r.ops <- op:
	default:
		r.logger.Warn().Msg("persistence queue full, write dropped")
	}
}

func (r *Recorder) work() {
	defer close(r.done)
	for op := range r.ops {
		r.apply(op)
		if op.ack != nil {
			close(op.ack)
		}
	}
}

func (r *Recorder) apply(op recordOp) {
	ctx := context.Background()
	switch {
	case op.event != nil:
		err := retry.Do(ctx, writeRetry, func(context.Context) error {
			return r.store.SaveEvent(*op.event)
		})
		if err != nil {
			r.logger.Error().Err(err).Str("event_id", op.event.ID).Msg("failed to persist event")
		}
	case op.suggestion != nil:
		err := retry.Do(ctx, writeRetry, func(context.Context) error {
			return r.store.SaveSuggestion(*op.suggestion)
		})
		if err != nil {
			r.logger.Error().Err(err).Str("suggestion_id", op.suggestion.ID).Msg("failed to persist suggestion")
		}
	case op.execution != nil:
		err := retry.Do(ctx, writeRetry, func(context.Context) error {
			return r.store.SaveExecution(*op.execution)
		})
		if err != nil {
			r.logger.Error().Err(err).Str("task_id", op.execution.TaskID).Msg("failed to persist execution")
		}
	}
}

// Flush waits until every op queued before the call has been applied. The
// worker drains in order, so acknowledging a marker op means everything ahead
// of it is on disk.
func (r *Recorder) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case r.ops <- recordOp{ack: ack}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
