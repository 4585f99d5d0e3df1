// Package health aggregates the tracker's dependency checks (database,
// tracker state, event sources) into liveness and readiness signals.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// checkTimeout bounds each individual check.
const checkTimeout = 5 * time.Second

// Status represents the health status of a dependency.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// CheckFunc is a function that checks a dependency's health.
type CheckFunc func(ctx context.Context) Status

// Report is a point-in-time aggregation of every registered check.
type Report struct {
	Overall Status            `json:"overall"`
	Checks  map[string]Status `json:"checks"`
}

// Overall folds per-check results into one status: down wins over degraded,
// degraded over ok. A stopped tracker is degraded, not down; the process can
// still serve its API and be started again.
func Overall(results map[string]Status) Status {
	overall := StatusOK
	for _, s := range results {
		switch s {
		case StatusDown:
			return StatusDown
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// Checker runs named health checks and aggregates their results.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
	logger zerolog.Logger
}

// NewChecker creates a new health checker.
func NewChecker(logger zerolog.Logger) *Checker {
	return &Checker{
		checks: make(map[string]CheckFunc),
		logger: logger.With().Str("component", "health").Logger(),
	}
}

// Register adds a named health check.
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// RunAll executes all health checks concurrently, each under its own timeout.
func (c *Checker) RunAll(ctx context.Context) map[string]Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	type outcome struct {
		name   string
		status Status
	}

	ch := make(chan outcome, len(checks))
	for name, fn := range checks {
		go func(n string, f CheckFunc) {
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			ch <- outcome{name: n, status: f(checkCtx)}
		}(name, fn)
	}

	results := make(map[string]Status, len(checks))
	for range checks {
		o := <-ch
		results[o.name] = o.status
		if o.status != StatusOK {
			c.logger.Warn().Str("check", o.name).Str("status", string(o.status)).Msg("health check not ok")
		}
	}
	return results
}

// Run executes all checks and returns the aggregated report.
func (c *Checker) Run(ctx context.Context) Report {
	results := c.RunAll(ctx)
	return Report{Overall: Overall(results), Checks: results}
}

// IsReady returns true unless a check reports down. Degraded is still ready.
func (c *Checker) IsReady(ctx context.Context) bool {
	return Overall(c.RunAll(ctx)) != StatusDown
}

// LivenessHandler returns an HTTP handler for /health (liveness).
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// ReadinessHandler returns an HTTP handler for /ready with the per-check
// breakdown in the body.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		report := c.Run(r.Context())

		resp := map[string]interface{}{"checks": report.Checks}
		if report.Overall == StatusDown {
			resp["status"] = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			resp["status"] = "ready"
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(resp)
	}
}
