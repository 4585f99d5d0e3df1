// Package suggest implements pattern detection over activity history and the
// deduplicating suggestion store. Detectors are deterministic heuristics:
// confidence values are fixed per detector so every suggestion stays
// explainable and testable.
package suggest

import (
	"time"

	"github.com/p-blackswan/activity-agent/internal/event"
)

// Detector type identifiers.
const (
	DetectorRepeatedSequence = "repeated_sequence"
	DetectorAppSequence      = "app_sequence"
	DetectorTimeOfDay        = "time_of_day"
)

// Suggestion is a proposed automation derived from a detected pattern.
// (DetectorType, DetectorKey) is the deduplication key. Immutable after the
// store accepts it.
type Suggestion struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Confidence       float64       `json:"confidence"` // 0..1, fixed per detector
	SourceActivities []event.Event `json:"source_activities,omitempty"`
	DetectorType     string        `json:"detector_type"`
	DetectorKey      string        `json:"detector_key"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Detector is a pure function mapping a history snapshot to candidate
// suggestions. Detectors hold no mutable state and may run concurrently with
// event ingestion as long as they operate on a snapshot.
type Detector interface {
	// Name returns the detector type identifier.
	Name() string

	// Detect scans the snapshot (oldest first) and returns zero or more
	// candidates. Candidates carry no ID or CreatedAt; the store assigns both.
	Detect(history []event.Event) []Suggestion
}
