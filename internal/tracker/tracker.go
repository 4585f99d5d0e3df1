// Package tracker implements the activity tracking orchestrator. It wires
// event sources into the history buffer, runs the pattern detector set and
// the trigger matcher over incoming events, and republishes everything to
// subscribed listeners.
//
// Events are handled one at a time, in arrival order, by a single consumer
// goroutine: history append, trigger matching and pattern detection for event
// k complete before event k+1 is touched. Automation execution and listener
// persistence are the only operations pushed off the critical path.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/activity-agent/internal/automation"
	"github.com/p-blackswan/activity-agent/internal/event"
	"github.com/p-blackswan/activity-agent/internal/history"
	"github.com/p-blackswan/activity-agent/internal/metrics"
	"github.com/p-blackswan/activity-agent/internal/suggest"
)

// Config holds the tracker's runtime configuration.
type Config struct {
	// CaptureInterval is the periodic capture cadence. Default: 1s.
	CaptureInterval time.Duration

	// EventBufferSize is the capacity of the internal event channel. Default: 256.
	EventBufferSize int

	// SuggestionsEnabled toggles the pattern detector set.
	SuggestionsEnabled bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		CaptureInterval:    time.Second,
		EventBufferSize:    256,
		SuggestionsEnabled: true,
	}
}

// Deps are the tracker's injected collaborators. Buffer, Suggestions,
// Registry and Executor are required; Metrics, Capturer and KeyListener are
// optional.
type Deps struct {
	Buffer      *history.Buffer
	Detectors   []suggest.Detector
	Suggestions *suggest.Store
	Registry    *automation.Registry
	Matcher     *automation.Matcher
	Executor    *automation.Executor
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger

	// Capturer, when set, is polled on the CaptureInterval cadence through a
	// capture source that Start subscribes with the other sources.
	Capturer event.Capturer

	// KeyListener, when set, feeds keyboard events through a keyboard source.
	KeyListener event.KeyListener
}

// Tracker is the orchestrator state machine: Stopped (initial) or Tracking.
type Tracker struct {
	cfg     Config
	deps    Deps
	sources []event.Source
	logger  zerolog.Logger
	notify  notifier

	mu       sync.Mutex
	tracking bool
	cancel   context.CancelFunc
	done     chan struct{}
	execCtx  context.Context
	execWG   sync.WaitGroup

	// timeFired maps task id to the last wall-clock minute its time trigger
	// ran. Consumer goroutine only.
	timeFired map[string]string
}

// New creates a Tracker. Call AddSource before Start.
func New(cfg Config, deps Deps) *Tracker {
	if cfg.CaptureInterval <= 0 {
		cfg.CaptureInterval = time.Second
	}
	if cfg.EventBufferSize <= 0 {
		cfg.EventBufferSize = 256
	}
	if deps.Matcher == nil {
		deps.Matcher = automation.NewMatcher()
	}
	t := &Tracker{
		cfg:       cfg,
		deps:      deps,
		logger:    deps.Logger.With().Str("component", "tracker").Logger(),
		timeFired: make(map[string]string),
	}
	if deps.Capturer != nil {
		t.sources = append(t.sources, event.NewCaptureSource(event.CaptureConfig{
			Interval: cfg.CaptureInterval,
			Logger:   deps.Logger,
		}, deps.Capturer))
	}
	if deps.KeyListener != nil {
		t.sources = append(t.sources, event.NewKeyboardSource(deps.KeyListener, deps.Logger))
	}
	return t
}

// AddSource registers an event source. Must be called before Start.
func (t *Tracker) AddSource(src event.Source) {
	t.sources = append(t.sources, src)
}

// Subscribe registers a listener for events, suggestions and execution
// results. Listeners added after Start receive only subsequent notifications.
func (t *Tracker) Subscribe(l Listener) {
	t.notify.subscribe(l)
}

// IsTracking reports whether the tracker is in the Tracking state.
func (t *Tracker) IsTracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tracking
}

// Suggestions returns the live suggestions, oldest first.
func (t *Tracker) Suggestions() []suggest.Suggestion {
	return t.deps.Suggestions.List()
}

// Start transitions Stopped → Tracking: subscribes all sources and launches
// the single consumer goroutine. Calling Start while already tracking is a
// no-op. The passed context bounds the whole tracking session.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tracking {
		t.logger.Debug().Msg("start ignored, already tracking")
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	ch := make(chan event.Event, t.cfg.EventBufferSize)

	for _, src := range t.sources {
		t.logger.Info().Str("source", src.Name()).Msg("starting event source")
		if err := src.Subscribe(runCtx, ch); err != nil {
			cancel()
			return err
		}
	}

	t.tracking = true
	t.cancel = cancel
	t.done = make(chan struct{})
	// In-flight executions survive Stop; give them a context that outlives
	// the tracking session.
	t.execCtx = context.WithoutCancel(runCtx)

	if t.deps.Metrics != nil {
		t.deps.Metrics.Tracking.Set(1)
	}

	t.logger.Info().
		Int("sources", len(t.sources)).
		Dur("capture_interval", t.cfg.CaptureInterval).
		Bool("suggestions", t.cfg.SuggestionsEnabled).
		Msg("tracking started")

	go t.run(runCtx, ch)
	return nil
}

// Stop transitions Tracking → Stopped. It cancels the sources and waits for
// the consumer goroutine to exit: once Stop returns, no further event is
// processed. In-flight automation executions are left to complete and their
// results are still published. Calling Stop while stopped is a no-op.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.tracking {
		t.mu.Unlock()
		t.logger.Debug().Msg("stop ignored, not tracking")
		return
	}
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()

	cancel()
	<-done

	t.mu.Lock()
	t.tracking = false
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	if t.deps.Metrics != nil {
		t.deps.Metrics.Tracking.Set(0)
	}
	t.logger.Info().Msg("tracking stopped")
}

// run is the single consumer goroutine. It preserves arrival order.
func (t *Tracker) run(ctx context.Context, ch <-chan event.Event) {
	defer close(t.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			if ctx.Err() != nil {
				return
			}
			t.handleEvent(ev)
		}
	}
}

// handleEvent is the per-event pipeline: append, notify, match, detect.
func (t *Tracker) handleEvent(ev event.Event) {
	t.deps.Buffer.Append(ev)

	if t.deps.Metrics != nil {
		t.deps.Metrics.RecordEvent(ev.Kind)
		t.deps.Metrics.HistorySize.Set(float64(t.deps.Buffer.Len()))
	}

	t.notify.publishEvent(ev)

	matches := t.deps.Matcher.Match(ev, t.deps.Registry.Active())
	for _, m := range matches {
		if m.Trigger.Kind == automation.TriggerTime && t.timeFiredThisMinute(m.Task.ID(), ev.Timestamp) {
			continue
		}
		t.logger.Info().
			Str("task_id", m.Task.ID()).
			Str("trigger", m.Trigger.Kind).
			Str("event_id", ev.ID).
			Msg("trigger matched")
		t.dispatchExecution(m.Task)
	}

	if t.cfg.SuggestionsEnabled {
		t.runDetectors()
	}
}

// timeFiredThisMinute dedupes time-trigger fires per task per wall-clock
// minute. The clock heartbeat beats more than once a minute, so without this
// a matching minute would run the task on every heartbeat it contains.
func (t *Tracker) timeFiredThisMinute(taskID string, ts time.Time) bool {
	minute := ts.Format("2006-01-02 15:04")
	if t.timeFired[taskID] == minute {
		return true
	}
	t.timeFired[taskID] = minute
	return false
}

// dispatchExecution runs the task off the critical path so slow step replay
// never stalls event ingestion.
func (t *Tracker) dispatchExecution(task *automation.Task) {
	ctx := t.execCtx
	t.execWG.Add(1)
	go func() {
		defer t.execWG.Done()
		res := t.deps.Executor.Execute(ctx, task)
		if t.deps.Metrics != nil {
			t.deps.Metrics.RecordExecution(res.Success)
		}
		t.notify.publishExecution(res)
	}()
}

// runDetectors runs the full detector set over a snapshot and submits every
// candidate. Duplicate rejection is silent and normal.
func (t *Tracker) runDetectors() {
	snap := t.deps.Buffer.Snapshot()
	for _, d := range t.deps.Detectors {
		for _, cand := range d.Detect(snap) {
			stored, accepted := t.deps.Suggestions.Submit(cand)
			if t.deps.Metrics != nil {
				outcome := "accepted"
				if !accepted {
					outcome = "duplicate"
				}
				t.deps.Metrics.RecordSuggestion(d.Name(), outcome)
			}
			if accepted {
				t.notify.publishSuggestion(stored)
			}
		}
	}
}

// ManualExecute runs a task by id on behalf of the UI collaborator. The
// result is published to listeners as well as returned. An unknown id yields
// automation.ErrTaskNotFound.
func (t *Tracker) ManualExecute(ctx context.Context, id string) (automation.Result, error) {
	task, err := t.deps.Registry.Get(id)
	if err != nil {
		return automation.Result{}, err
	}
	res := t.deps.Executor.Execute(ctx, task)
	if t.deps.Metrics != nil {
		t.deps.Metrics.RecordExecution(res.Success)
	}
	t.notify.publishExecution(res)
	return res, nil
}

// WaitExecutions blocks until all in-flight executions have completed.
// Intended for shutdown and tests.
func (t *Tracker) WaitExecutions() {
	t.execWG.Wait()
}
