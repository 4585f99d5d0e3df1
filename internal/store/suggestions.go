package store

import (
	"encoding/json"
	"fmt"

	"github.com/p-blackswan/activity-agent/internal/suggest"
)

// SuggestionRecord is one persisted suggestion row.
type SuggestionRecord struct {
	ID             string
	Title          string
	Description    string
	Confidence     float64
	DetectorType   string
	DetectorKey    string
	SourceEventIDs string // JSON array
	CreatedAt      int64  // unix ms
}

// SaveSuggestion appends an accepted suggestion. Only the source event ids
// are persisted, not the full event payloads; the events table already has
// those.
func (s *Store) SaveSuggestion(sg suggest.Suggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(sg.SourceActivities))
	for i, ev := range sg.SourceActivities {
		ids[i] = ev.ID
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode source event ids: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO suggestions (
		id, title, description, confidence, detector_type, detector_key,
		source_event_ids, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		sg.ID, sg.Title, sg.Description, sg.Confidence,
		sg.DetectorType, sg.DetectorKey,
		string(encoded), sg.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save suggestion: %w", err)
	}
	return nil
}

// ListSuggestions returns persisted suggestions, newest first.
func (s *Store) ListSuggestions(limit int) ([]*SuggestionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, title, description, confidence, detector_type, detector_key,
	       source_event_ids, created_at
	FROM suggestions ORDER BY created_at DESC LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	var out []*SuggestionRecord
	for rows.Next() {
		r := &SuggestionRecord{}
		err := rows.Scan(
			&r.ID, &r.Title, &r.Description, &r.Confidence,
			&r.DetectorType, &r.DetectorKey,
			&r.SourceEventIDs, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		out = append(out, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggestions: %w", err)
	}

	return out, nil
}
