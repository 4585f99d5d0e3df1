package suggest

import "github.com/p-blackswan/activity-agent/internal/event"

// TimeOfDayDetector is a reserved extension point for recurring-time-window
// detection ("you usually open X around 9:00"). The baseline implementation
// emits nothing; a future version can cluster event timestamps by hour
// without changing the Detector interface.
type TimeOfDayDetector struct{}

// NewTimeOfDayDetector creates the detector.
func NewTimeOfDayDetector() *TimeOfDayDetector { return &TimeOfDayDetector{} }

func (d *TimeOfDayDetector) Name() string { return DetectorTimeOfDay }

// Detect returns nothing in the baseline design.
func (d *TimeOfDayDetector) Detect(_ []event.Event) []Suggestion { return nil }
