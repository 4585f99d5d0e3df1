package mgmt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/activity-agent/internal/automation"
	"github.com/p-blackswan/activity-agent/internal/health"
	"github.com/p-blackswan/activity-agent/internal/history"
	"github.com/p-blackswan/activity-agent/internal/store"
	"github.com/p-blackswan/activity-agent/internal/tracker"
)

// Version reported by the status endpoint.
const Version = "1.0.0"

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	tracker  *tracker.Tracker
	registry *automation.Registry
	buffer   *history.Buffer
	store    *store.Store // optional; nil disables persistence-backed endpoints
	checker  *health.Checker
	logger   zerolog.Logger

	// baseCtx bounds tracking sessions started through the API.
	baseCtx   context.Context
	startTime time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	baseCtx context.Context,
	trk *tracker.Tracker,
	registry *automation.Registry,
	buffer *history.Buffer,
	st *store.Store,
	checker *health.Checker,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		tracker:   trk,
		registry:  registry,
		buffer:    buffer,
		store:     st,
		checker:   checker,
		logger:    logger.With().Str("component", "handlers").Logger(),
		baseCtx:   baseCtx,
		startTime: time.Now(),
	}
}

// Status handles GET /api/v1/status.
func (h *Handlers) Status(c *fiber.Ctx) error {
	resp := StatusResponse{
		Tracking:    h.tracker.IsTracking(),
		HistorySize: h.buffer.Len(),
		HistoryCap:  h.buffer.Cap(),
		Suggestions: len(h.tracker.Suggestions()),
		Tasks:       h.registry.Len(),
		Health:      h.checker.Run(c.Context()),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Version:     Version,
	}

	if h.store != nil {
		if sum, err := h.store.Summary(); err == nil {
			resp.Persistence = &sum
			resp.PersistedCount = sum.Events
		}
	}

	return c.JSON(resp)
}

// ListTasks handles GET /api/v1/tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	tasks := h.registry.List()
	if tasks == nil {
		tasks = []automation.Snapshot{}
	}
	return c.JSON(TaskListResponse{Tasks: tasks, Total: len(tasks)})
}

// CreateTask handles POST /api/v1/tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var spec automation.TaskSpec
	if err := c.BodyParser(&spec); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	task, err := h.registry.Create(spec)
	if err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_task", "Bad Request",
			err.Error())
	}

	snap := task.Snapshot()
	if h.store != nil {
		if err := h.store.SaveTask(snap); err != nil {
			h.logger.Error().Err(err).Str("task_id", snap.ID).Msg("failed to persist task")
		}
	}
	h.audit(c, "task.create", "task/"+snap.ID, "ok", snap.Name)

	return c.Status(fiber.StatusCreated).JSON(TaskResponse{Task: snap})
}

// GetTask handles GET /api/v1/tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	id := c.Params("id")
	task, err := h.registry.Get(id)
	if err != nil {
		return problemResponse(c, fiber.StatusNotFound,
			"task_not_found", "Not Found",
			"Task not found: "+id)
	}
	return c.JSON(TaskResponse{Task: task.Snapshot()})
}

// PatchTaskActive handles PATCH /api/v1/tasks/:id/active.
func (h *Handlers) PatchTaskActive(c *fiber.Ctx) error {
	id := c.Params("id")

	var req PatchActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}
	if req.Active == nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_active", "Bad Request",
			"Field \"active\" is required")
	}

	if err := h.registry.SetActive(id, *req.Active); err != nil {
		return problemResponse(c, fiber.StatusNotFound,
			"task_not_found", "Not Found",
			"Task not found: "+id)
	}

	if h.store != nil {
		if err := h.store.SetTaskActive(id, *req.Active); err != nil {
			h.logger.Error().Err(err).Str("task_id", id).Msg("failed to persist activation toggle")
		}
	}
	h.audit(c, "task.set_active", "task/"+id, "ok", fmt.Sprintf("active=%t", *req.Active))

	task, err := h.registry.Get(id)
	if err != nil {
		return problemResponse(c, fiber.StatusNotFound,
			"task_not_found", "Not Found",
			"Task not found: "+id)
	}
	return c.JSON(TaskResponse{Task: task.Snapshot()})
}

// ExecuteTask handles POST /api/v1/tasks/:id/execute.
func (h *Handlers) ExecuteTask(c *fiber.Ctx) error {
	id := c.Params("id")

	res, err := h.tracker.ManualExecute(c.Context(), id)
	if err != nil {
		if errors.Is(err, automation.ErrTaskNotFound) {
			return problemResponse(c, fiber.StatusNotFound,
				"task_not_found", "Not Found",
				"Task not found: "+id)
		}
		return problemResponse(c, fiber.StatusInternalServerError,
			"execute_failed", "Internal Server Error",
			err.Error())
	}

	result := "ok"
	if !res.Success {
		result = "failed"
	}
	h.audit(c, "task.execute", "task/"+id, result, res.Message)

	return c.JSON(ExecuteResponse{Result: res})
}

// ListExecutions handles GET /api/v1/tasks/:id/executions.
func (h *Handlers) ListExecutions(c *fiber.Ctx) error {
	if h.store == nil {
		return problemResponse(c, fiber.StatusNotImplemented,
			"no_persistence", "Not Implemented",
			"Execution history requires persistence")
	}

	id := c.Params("id")
	if _, err := h.registry.Get(id); err != nil {
		return problemResponse(c, fiber.StatusNotFound,
			"task_not_found", "Not Found",
			"Task not found: "+id)
	}

	limit := c.QueryInt("limit", 50)
	records, err := h.store.ListExecutions(id, limit)
	if err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"list_failed", "Internal Server Error",
			err.Error())
	}

	entries := make([]ExecutionEntry, len(records))
	for i, r := range records {
		entries[i] = ExecutionEntry{
			TaskID:     r.TaskID,
			TaskName:   r.TaskName,
			Success:    r.Success,
			Message:    r.Message,
			ExecutedAt: r.ExecutedAt,
		}
	}

	return c.JSON(ExecutionListResponse{Executions: entries, Total: len(entries)})
}

// ListSuggestions handles GET /api/v1/suggestions.
func (h *Handlers) ListSuggestions(c *fiber.Ctx) error {
	suggestions := h.tracker.Suggestions()
	return c.JSON(SuggestionListResponse{
		Suggestions: suggestions,
		Total:       len(suggestions),
	})
}

// StartTracking handles POST /api/v1/tracking/start.
func (h *Handlers) StartTracking(c *fiber.Ctx) error {
	if err := h.tracker.Start(h.baseCtx); err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"start_failed", "Internal Server Error",
			err.Error())
	}
	h.audit(c, "tracking.start", "", "ok", "")
	return c.JSON(TrackingResponse{Tracking: true})
}

// StopTracking handles POST /api/v1/tracking/stop.
func (h *Handlers) StopTracking(c *fiber.Ctx) error {
	h.tracker.Stop()
	h.audit(c, "tracking.stop", "", "ok", "")
	return c.JSON(TrackingResponse{Tracking: false})
}

// Liveness handles GET /healthz.
func (h *Handlers) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness handles GET /readyz.
func (h *Handlers) Readiness(c *fiber.Ctx) error {
	if !h.checker.IsReady(c.Context()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not_ready",
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// audit records a mutating API call. Best-effort; failures are logged only.
func (h *Handlers) audit(c *fiber.Ctx, action, resource, result, details string) {
	if h.store == nil {
		return
	}
	actor := "anonymous"
	if role, ok := c.Locals("role").(Role); ok {
		actor = string(role)
	}
	entry := &store.AuditEntry{
		Actor:    actor,
		Action:   action,
		Resource: resource,
		Result:   result,
		Details:  details,
	}
	if err := h.store.SaveAudit(entry); err != nil {
		h.logger.Error().Err(err).Str("action", action).Msg("failed to write audit entry")
	}
}
