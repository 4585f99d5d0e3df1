package store

import (
	"fmt"

	"github.com/p-blackswan/activity-agent/internal/automation"
)

// ExecutionRecord is one persisted execution outcome row.
type ExecutionRecord struct {
	ID         int64
	TaskID     string
	TaskName   string
	Success    bool
	Message    string
	ExecutedAt int64 // unix ms
}

// SaveExecution appends an execution result and bumps the owning task's
// bookkeeping columns in the same transaction.
func (s *Store) SaveExecution(res automation.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	at := res.ExecutedAt.UnixMilli()

	_, err = tx.Exec(
		`INSERT INTO executions (task_id, task_name, success, message, executed_at) VALUES (?, ?, ?, ?, ?)`,
		res.TaskID, res.TaskName, res.Success, res.Message, at,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE tasks SET execution_count = execution_count + 1, last_executed_at = ? WHERE id = ?`,
		at, res.TaskID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task bookkeeping: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit execution: %w", err)
	}
	return nil
}

// ListExecutions returns execution history, newest first. An empty taskID
// returns history across all tasks.
func (s *Store) ListExecutions(taskID string, limit int) ([]*ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, task_id, task_name, success, message, executed_at FROM executions`
	args := []interface{}{}
	if taskID != "" {
		query += ` WHERE task_id = ?`
		args = append(args, taskID)
	}
	query += ` ORDER BY executed_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	var out []*ExecutionRecord
	for rows.Next() {
		r := &ExecutionRecord{}
		if err := rows.Scan(&r.ID, &r.TaskID, &r.TaskName, &r.Success, &r.Message, &r.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		out = append(out, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return out, nil
}
