package mgmt

import (
	"github.com/p-blackswan/activity-agent/internal/automation"
	"github.com/p-blackswan/activity-agent/internal/health"
	"github.com/p-blackswan/activity-agent/internal/store"
	"github.com/p-blackswan/activity-agent/internal/suggest"
)

// ProblemDetail follows RFC 7807 for error responses.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Tracking       bool           `json:"tracking"`
	HistorySize    int            `json:"history_size"`
	HistoryCap     int            `json:"history_capacity"`
	Suggestions    int            `json:"suggestions"`
	Tasks          int            `json:"tasks"`
	PersistedCount int64          `json:"persisted_events,omitempty"`
	Persistence    *store.Summary `json:"persistence,omitempty"`
	Health         health.Report  `json:"health"`
	Uptime         string         `json:"uptime"`
	Version        string         `json:"version"`
}

// TaskResponse wraps a single task snapshot.
type TaskResponse struct {
	Task automation.Snapshot `json:"task"`
}

// TaskListResponse is the body of GET /api/v1/tasks.
type TaskListResponse struct {
	Tasks []automation.Snapshot `json:"tasks"`
	Total int                   `json:"total"`
}

// PatchActiveRequest toggles a task's activation.
type PatchActiveRequest struct {
	Active *bool `json:"active"`
}

// ExecuteResponse is the body of POST /api/v1/tasks/:id/execute.
type ExecuteResponse struct {
	Result automation.Result `json:"result"`
}

// SuggestionListResponse is the body of GET /api/v1/suggestions.
type SuggestionListResponse struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
	Total       int                  `json:"total"`
}

// ExecutionEntry is one row of GET /api/v1/tasks/:id/executions.
type ExecutionEntry struct {
	TaskID     string `json:"task_id"`
	TaskName   string `json:"task_name"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	ExecutedAt int64  `json:"executed_at"`
}

// ExecutionListResponse is the body of GET /api/v1/tasks/:id/executions.
type ExecutionListResponse struct {
	Executions []ExecutionEntry `json:"executions"`
	Total      int              `json:"total"`
}

// TrackingResponse is the body of the tracking start/stop endpoints.
type TrackingResponse struct {
	Tracking bool `json:"tracking"`
}
