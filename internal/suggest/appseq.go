package suggest

import (
	"fmt"
	"strings"

	"github.com/p-blackswan/activity-agent/internal/event"
)

const confAppSequence = 0.65

// appSequenceLen is how many distinct applications form a workflow.
const appSequenceLen = 3

// AppSequenceDetector looks for a workflow across the last three distinct
// applications the user touched. Application names come from application
// events or from screen captures that recognised the foreground app.
//
// Output ordering convention: most recently observed application first. The
// dedup key is the joined names in that order, so the same workflow observed
// again does not produce a second suggestion.
type AppSequenceDetector struct{}

// NewAppSequenceDetector creates the detector.
func NewAppSequenceDetector() *AppSequenceDetector { return &AppSequenceDetector{} }

func (d *AppSequenceDetector) Name() string { return DetectorAppSequence }

// Detect scans history backward collecting distinct app names, stopping once
// three are found or history is exhausted. Fewer than three distinct names
// emits nothing.
func (d *AppSequenceDetector) Detect(history []event.Event) []Suggestion {
	var (
		names   []string
		sources []event.Event
		seen    = make(map[string]bool)
	)

	for i := len(history) - 1; i >= 0 && len(names) < appSequenceLen; i-- {
		name, ok := history[i].AppName()
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		sources = append(sources, history[i])
	}

	if len(names) != appSequenceLen {
		return nil
	}

	joined := strings.Join(names, ", ")
	return []Suggestion{{
		Title:            "Application workflow detected",
		Description:      fmt.Sprintf("You often switch between %s. Would you like to automate this workflow?", joined),
		Confidence:       confAppSequence,
		SourceActivities: sources,
		DetectorType:     DetectorAppSequence,
		DetectorKey:      joined,
	}}
}
