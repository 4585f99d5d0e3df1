package store

import (
	"database/sql"
	"fmt"
	"time"
)

// AuditEntry is one management API audit row.
type AuditEntry struct {
	ID        int64
	Actor     string
	Action    string
	Resource  string
	Result    string
	Details   string
	CreatedAt int64 // unix ms
}

// SaveAudit appends an audit log entry.
func (s *Store) SaveAudit(e *AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}

	query := `
	INSERT INTO audit_log (actor, action, resource, result, details, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		e.Actor, e.Action,
		sql.NullString{String: e.Resource, Valid: e.Resource != ""},
		e.Result,
		sql.NullString{String: e.Details, Valid: e.Details != ""},
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the most recent audit entries, newest first.
func (s *Store) ListAudit(limit int) ([]*AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	query := `
	SELECT id, actor, action, resource, result, details, created_at
	FROM audit_log ORDER BY created_at DESC LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*AuditEntry
	for rows.Next() {
		e := &AuditEntry{}
		var resource, details sql.NullString
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &resource, &e.Result, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Resource = resource.String
		e.Details = details.String
		out = append(out, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return out, nil
}
