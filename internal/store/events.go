package store

import (
	"fmt"
	"time"

	"github.com/p-blackswan/activity-agent/internal/event"
)

// EventRecord is one persisted activity event row.
type EventRecord struct {
	ID        string
	Kind      string
	Payload   string // JSON
	Timestamp int64  // unix ms
}

// SaveEvent appends an activity event to the database.
func (s *Store) SaveEvent(ev event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `INSERT OR REPLACE INTO events (id, kind, payload, timestamp) VALUES (?, ?, ?, ?)`
	_, err := s.db.Exec(query, ev.ID, ev.Kind, string(ev.Payload), ev.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// ListRecentEvents returns the most recent events, newest first.
func (s *Store) ListRecentEvents(limit int) ([]*EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, kind, payload, timestamp FROM events ORDER BY timestamp DESC LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*EventRecord
	for rows.Next() {
		e := &EventRecord{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.Payload, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// CountEvents returns the total number of persisted events.
func (s *Store) CountEvents() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// CountEventsByKind returns per-kind event totals.
func (s *Store) CountEventsByKind() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM events GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to count events by kind: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[kind] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event counts: %w", err)
	}

	return counts, nil
}

// eventCutoff converts a retention age into a unix ms cutoff.
func eventCutoff(now time.Time, age time.Duration) int64 {
	return now.Add(-age).UnixMilli()
}
