package mgmt

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/activity-agent/internal/automation"
	"github.com/p-blackswan/activity-agent/internal/health"
	"github.com/p-blackswan/activity-agent/internal/history"
	"github.com/p-blackswan/activity-agent/internal/store"
	"github.com/p-blackswan/activity-agent/internal/suggest"
	"github.com/p-blackswan/activity-agent/internal/tracker"
)

type testEnv struct {
	server   *Server
	tracker  *tracker.Tracker
	registry *automation.Registry
	store    *store.Store
}

func newTestEnv(t *testing.T, auth AuthConfig) *testEnv {
	t.Helper()
	logger := zerolog.New(os.Stderr)

	st, err := store.New(filepath.Join(t.TempDir(), "mgmt.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	buffer := history.New(history.DefaultCapacity)
	registry := automation.NewRegistry(logger)
	trk := tracker.New(tracker.DefaultConfig(), tracker.Deps{
		Buffer:      buffer,
		Suggestions: suggest.NewStore(suggest.DefaultCapacity, logger),
		Registry:    registry,
		Matcher:     automation.NewMatcher(),
		Executor:    automation.NewExecutor(nil, logger),
		Logger:      logger,
	})
	t.Cleanup(trk.Stop)

	checker := health.NewChecker(logger)
	checker.Register("database", func(ctx context.Context) health.Status {
		return health.StatusOK
	})

	handlers := NewHandlers(context.Background(), trk, registry, buffer, st, checker, logger)
	server := NewServer(ServerConfig{AuthConfig: auth}, handlers, logger)

	return &testEnv{server: server, tracker: trk, registry: registry, store: st}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, AuthConfig{Mode: "none"})
	code, body := env.request(t, "GET", "/healthz", nil, nil)
	assert.Equal(t, 200, code)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t, AuthConfig{Mode: "none"})

	code, body := env.request(t, "GET", "/api/v1/status", nil, nil)
	require.Equal(t, 200, code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.False(t, resp.Tracking)
	assert.Equal(t, 0, resp.HistorySize)
	assert.Equal(t, history.DefaultCapacity, resp.HistoryCap)
	assert.Equal(t, Version, resp.Version)
	assert.Equal(t, health.StatusOK, resp.Health.Overall)
	assert.Equal(t, health.StatusOK, resp.Health.Checks["database"])
	require.NotNil(t, resp.Persistence)
	assert.Zero(t, resp.Persistence.Events)
	assert.Greater(t, resp.Persistence.SizeBytes, int64(0))
}

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t, AuthConfig{Mode: "none"})

	// Create
	code, body := env.request(t, "POST", "/api/v1/tasks", automation.TaskSpec{
		Name:     "refresh dashboard",
		Triggers: []automation.Trigger{{Kind: automation.TriggerKeyboardShortcut, Key: "F5"}},
	}, nil)
	require.Equal(t, 201, code)

	var created TaskResponse
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.Task.ID)
	assert.True(t, created.Task.IsActive)

	// List
	code, body = env.request(t, "GET", "/api/v1/tasks", nil, nil)
	require.Equal(t, 200, code)
	var list TaskListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Total)

	// Get
	code, _ = env.request(t, "GET", "/api/v1/tasks/"+created.Task.ID, nil, nil)
	assert.Equal(t, 200, code)

	// Deactivate
	inactive := false
	code, body = env.request(t, "PATCH", "/api/v1/tasks/"+created.Task.ID+"/active",
		PatchActiveRequest{Active: &inactive}, nil)
	require.Equal(t, 200, code)
	var patched TaskResponse
	require.NoError(t, json.Unmarshal(body, &patched))
	assert.False(t, patched.Task.IsActive)

	// Execute
	code, body = env.request(t, "POST", "/api/v1/tasks/"+created.Task.ID+"/execute", nil, nil)
	require.Equal(t, 200, code)
	var exec ExecuteResponse
	require.NoError(t, json.Unmarshal(body, &exec))
	assert.True(t, exec.Result.Success)
	assert.Equal(t, created.Task.ID, exec.Result.TaskID)

	// Task persisted
	specs, err := env.store.LoadTasks()
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, created.Task.ID, specs[0].ID)

	// Audit trail recorded the mutations
	entries, err := env.store.ListAudit(10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 3)
}

func TestTaskValidation(t *testing.T) {
	env := newTestEnv(t, AuthConfig{Mode: "none"})

	// Missing name
	code, _ := env.request(t, "POST", "/api/v1/tasks", automation.TaskSpec{}, nil)
	assert.Equal(t, 400, code)

	// Invalid trigger
	code, body := env.request(t, "POST", "/api/v1/tasks", automation.TaskSpec{
		Name:     "bad trigger",
		Triggers: []automation.Trigger{{Kind: "gesture"}},
	}, nil)
	assert.Equal(t, 400, code)
	assert.Contains(t, string(body), "invalid_task")

	// Missing active field
	code, _ = env.request(t, "PATCH", "/api/v1/tasks/whatever/active", map[string]string{}, nil)
	assert.Equal(t, 400, code)
}

func TestTaskNotFound(t *testing.T) {
	env := newTestEnv(t, AuthConfig{Mode: "none"})

	code, _ := env.request(t, "GET", "/api/v1/tasks/nope", nil, nil)
	assert.Equal(t, 404, code)

	code, _ = env.request(t, "POST", "/api/v1/tasks/nope/execute", nil, nil)
	assert.Equal(t, 404, code)

	active := true
	code, _ = env.request(t, "PATCH", "/api/v1/tasks/nope/active", PatchActiveRequest{Active: &active}, nil)
	assert.Equal(t, 404, code)
}

func TestSuggestionsEmpty(t *testing.T) {
	env := newTestEnv(t, AuthConfig{Mode: "none"})

	code, body := env.request(t, "GET", "/api/v1/suggestions", nil, nil)
	require.Equal(t, 200, code)

	var resp SuggestionListResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 0, resp.Total)
}

func TestTrackingControl(t *testing.T) {
	env := newTestEnv(t, AuthConfig{Mode: "none"})

	code, body := env.request(t, "POST", "/api/v1/tracking/start", nil, nil)
	require.Equal(t, 200, code)
	assert.Contains(t, string(body), `"tracking":true`)
	assert.True(t, env.tracker.IsTracking())

	code, body = env.request(t, "POST", "/api/v1/tracking/stop", nil, nil)
	require.Equal(t, 200, code)
	assert.Contains(t, string(body), `"tracking":false`)
	assert.False(t, env.tracker.IsTracking())
}

func TestAuthAPIKey(t *testing.T) {
	env := newTestEnv(t, AuthConfig{Mode: "api-key", APIKey: "secret"})

	// Probes skip auth
	code, _ := env.request(t, "GET", "/healthz", nil, nil)
	assert.Equal(t, 200, code)

	// Missing header
	code, _ = env.request(t, "GET", "/api/v1/status", nil, nil)
	assert.Equal(t, 401, code)

	// Wrong key
	code, _ = env.request(t, "GET", "/api/v1/status", nil, map[string]string{
		"Authorization": "Bearer wrong",
	})
	assert.Equal(t, 401, code)

	// Right key
	code, _ = env.request(t, "GET", "/api/v1/status", nil, map[string]string{
		"Authorization": "Bearer secret",
	})
	assert.Equal(t, 200, code)
}

func TestAuthReadOnlyRole(t *testing.T) {
	env := newTestEnv(t, AuthConfig{
		Mode:  "api-key",
		Roles: map[string]Role{"viewer-key": RoleReadOnly},
	})
	headers := map[string]string{"Authorization": "Bearer viewer-key"}

	code, _ := env.request(t, "GET", "/api/v1/tasks", nil, headers)
	assert.Equal(t, 200, code)

	code, _ = env.request(t, "POST", "/api/v1/tasks", automation.TaskSpec{Name: "nope"}, headers)
	assert.Equal(t, 403, code)
}
