package health

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_RunAll(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("database", func(ctx context.Context) Status { return StatusOK })
	c.Register("tracker", func(ctx context.Context) Status { return StatusDegraded })

	results := c.RunAll(context.Background())
	assert.Equal(t, StatusOK, results["database"])
	assert.Equal(t, StatusDegraded, results["tracker"])
	assert.True(t, c.IsReady(context.Background()), "degraded is still ready")
}

func TestOverall(t *testing.T) {
	assert.Equal(t, StatusOK, Overall(nil))
	assert.Equal(t, StatusOK, Overall(map[string]Status{"database": StatusOK}))
	assert.Equal(t, StatusDegraded, Overall(map[string]Status{"database": StatusOK, "tracker": StatusDegraded}))
	assert.Equal(t, StatusDown, Overall(map[string]Status{"database": StatusDown, "tracker": StatusDegraded}))
}

func TestChecker_RunAggregates(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("database", func(ctx context.Context) Status { return StatusOK })
	c.Register("tracker", func(ctx context.Context) Status { return StatusDegraded })

	report := c.Run(context.Background())
	assert.Equal(t, StatusDegraded, report.Overall)
	assert.Equal(t, StatusOK, report.Checks["database"])
	assert.Equal(t, StatusDegraded, report.Checks["tracker"])
}

func TestChecker_IsReadyDownDependency(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("database", func(ctx context.Context) Status { return StatusDown })

	assert.False(t, c.IsReady(context.Background()))
}

func TestReadinessHandler(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("database", func(ctx context.Context) Status { return StatusOK })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ready", nil)
	c.ReadinessHandler()(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)

	c.Register("tracker", func(ctx context.Context) Status { return StatusDown })
	rec = httptest.NewRecorder()
	c.ReadinessHandler()(rec, req)
	assert.Equal(t, 503, rec.Code)
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, rec.Code)
}
