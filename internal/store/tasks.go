package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/p-blackswan/activity-agent/internal/automation"
)

// SaveTask inserts or updates a task definition from a registry snapshot.
// Steps and triggers are stored as JSON.
func (s *Store) SaveTask(snap automation.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps, err := json.Marshal(snap.Steps)
	if err != nil {
		return fmt.Errorf("failed to encode steps: %w", err)
	}
	triggers, err := json.Marshal(snap.Triggers)
	if err != nil {
		return fmt.Errorf("failed to encode triggers: %w", err)
	}

	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
	INSERT OR REPLACE INTO tasks (
		id, name, description, steps, triggers, is_active,
		execution_count, last_executed_at, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		snap.ID, snap.Name, snap.Description,
		string(steps), string(triggers), snap.IsActive,
		snap.ExecutionCount,
		sql.NullInt64{Int64: snap.LastExecutedAt.UnixMilli(), Valid: !snap.LastExecutedAt.IsZero()},
		createdAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// LoadTasks returns specs for every persisted task, oldest first, ready to
// seed the in-memory registry at startup.
func (s *Store) LoadTasks() ([]automation.TaskSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
	SELECT id, name, description, steps, triggers, is_active,
	       execution_count, last_executed_at, created_at
	FROM tasks ORDER BY created_at ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	defer rows.Close()

	var specs []automation.TaskSpec
	for rows.Next() {
		var (
			spec           automation.TaskSpec
			stepsJSON      string
			triggersJSON   string
			isActive       bool
			lastExecutedAt sql.NullInt64
			createdAt      int64
		)

		err := rows.Scan(
			&spec.ID, &spec.Name, &spec.Description,
			&stepsJSON, &triggersJSON, &isActive,
			&spec.ExecutionCount, &lastExecutedAt, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		if err := json.Unmarshal([]byte(stepsJSON), &spec.Steps); err != nil {
			return nil, fmt.Errorf("failed to decode steps for task %s: %w", spec.ID, err)
		}
		if err := json.Unmarshal([]byte(triggersJSON), &spec.Triggers); err != nil {
			return nil, fmt.Errorf("failed to decode triggers for task %s: %w", spec.ID, err)
		}

		active := isActive
		spec.Active = &active
		if lastExecutedAt.Valid {
			spec.LastExecutedAt = time.UnixMilli(lastExecutedAt.Int64)
		}
		spec.CreatedAt = time.UnixMilli(createdAt)

		specs = append(specs, spec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return specs, nil
}

// SetTaskActive persists a task's activation toggle.
func (s *Store) SetTaskActive(id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`UPDATE tasks SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set task active: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

// HasTask reports whether a task id is persisted.
func (s *Store) HasTask(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check task: %w", err)
	}
	return count > 0, nil
}
