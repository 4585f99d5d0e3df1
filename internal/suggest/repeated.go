package suggest

import (
	"fmt"

	"github.com/p-blackswan/activity-agent/internal/event"
)

// Fixed confidence values per pattern.
const (
	confRepeatedText   = 0.7
	confRepeatedClicks = 0.6
)

// RepeatedKindDetector looks for bursts of the same event kind inside the
// most recent window of history.
//
// Only keyboard (with non-empty text) and mouse_click bursts currently emit a
// suggestion. Other kinds crossing the threshold stay silent, a known gap in
// the heuristic, kept as-is.
type RepeatedKindDetector struct {
	// Window is how many of the most recent events to examine. Default: 20.
	Window int

	// MinRepetitions is the occurrence threshold per kind. Default: 3.
	MinRepetitions int
}

// NewRepeatedKindDetector creates a detector with default thresholds.
func NewRepeatedKindDetector() *RepeatedKindDetector {
	return &RepeatedKindDetector{Window: 20, MinRepetitions: 3}
}

func (d *RepeatedKindDetector) Name() string { return DetectorRepeatedSequence }

// Detect emits at most one suggestion per event kind crossing the threshold,
// keyed (repeated_sequence, kind).
func (d *RepeatedKindDetector) Detect(history []event.Event) []Suggestion {
	window, minReps := d.Window, d.MinRepetitions
	if window <= 0 {
		window = 20
	}
	if minReps <= 0 {
		minReps = 3
	}

	if len(history) > window {
		history = history[len(history)-window:]
	}

	counts := make(map[string]int)
	for _, ev := range history {
		counts[ev.Kind]++
	}

	var out []Suggestion
	for kind, count := range counts {
		if count < minReps {
			continue
		}

		switch kind {
		case event.KindKeyboard:
			if s, ok := d.repeatedText(history, minReps); ok {
				out = append(out, s)
			}
		case event.KindMouseClick:
			out = append(out, d.repeatedClicks(history, count))
		}
		// Other kinds do not emit even above the threshold.
	}
	return out
}

func (d *RepeatedKindDetector) repeatedText(window []event.Event, minReps int) (Suggestion, bool) {
	var sources []event.Event
	for _, ev := range window {
		if p, ok := ev.Keyboard(); ok && p.Text != "" {
			sources = append(sources, ev)
		}
	}
	if len(sources) < minReps {
		return Suggestion{}, false
	}
	return Suggestion{
		Title:            "Repeated text input detected",
		Description:      fmt.Sprintf("You typed similar text %d times recently. Would you like to automate this input?", len(sources)),
		Confidence:       confRepeatedText,
		SourceActivities: sources,
		DetectorType:     DetectorRepeatedSequence,
		DetectorKey:      event.KindKeyboard,
	}, true
}

func (d *RepeatedKindDetector) repeatedClicks(window []event.Event, count int) Suggestion {
	var sources []event.Event
	for _, ev := range window {
		if ev.Kind == event.KindMouseClick {
			sources = append(sources, ev)
		}
	}
	return Suggestion{
		Title:            "Repeated clicks detected",
		Description:      fmt.Sprintf("You clicked %d times in a short period. Would you like to automate this sequence?", count),
		Confidence:       confRepeatedClicks,
		SourceActivities: sources,
		DetectorType:     DetectorRepeatedSequence,
		DetectorKey:      event.KindMouseClick,
	}
}
