package store

import (
	"context"
	"fmt"
	"time"
)

// Retention ages. Raw events dominate disk usage, so they get the shortest
// window.
const (
	eventRetention      = 7 * 24 * time.Hour
	suggestionRetention = 30 * 24 * time.Hour
	executionRetention  = 30 * 24 * time.Hour
	auditRetention      = 30 * 24 * time.Hour
)

// RunRetention deletes data past its retention window.
func (s *Store) RunRetention(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM events WHERE timestamp < ?",
		eventCutoff(now, eventRetention),
	)
	if err != nil {
		return fmt.Errorf("failed to delete old events: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"DELETE FROM suggestions WHERE created_at < ?",
		eventCutoff(now, suggestionRetention),
	)
	if err != nil {
		return fmt.Errorf("failed to delete old suggestions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"DELETE FROM executions WHERE executed_at < ?",
		eventCutoff(now, executionRetention),
	)
	if err != nil {
		return fmt.Errorf("failed to delete old executions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"DELETE FROM audit_log WHERE created_at < ?",
		eventCutoff(now, auditRetention),
	)
	if err != nil {
		return fmt.Errorf("failed to delete old audit logs: %w", err)
	}

	return nil
}

// DBSizeBytes returns the database size in bytes.
func (s *Store) DBSizeBytes() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pageCount int64
	var pageSize int64

	err := s.db.QueryRow("PRAGMA page_count").Scan(&pageCount)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}

	err = s.db.QueryRow("PRAGMA page_size").Scan(&pageSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get page size: %w", err)
	}

	return pageCount * pageSize, nil
}
