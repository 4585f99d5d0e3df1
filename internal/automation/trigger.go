// Package automation holds user-defined automation tasks, the trigger
// matcher that fires them from incoming activity, and the executor that runs
// their steps through the input-replay collaborator.
package automation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/p-blackswan/activity-agent/internal/event"
)

// Trigger kinds.
const (
	TriggerTime             = "time"
	TriggerMousePosition    = "mouse_position"
	TriggerKeyboardShortcut = "keyboard_shortcut"
	TriggerClickRegion      = "click_region"
)

// DefaultMouseTolerance is the match radius for mouse_position triggers when
// none is configured.
const DefaultMouseTolerance = 20

// Trigger is a predicate that, when matched by an event, requests execution
// of its owning task. Pure value type, immutable, compared structurally.
// Only the fields of the tagged kind are meaningful.
type Trigger struct {
	Kind string `json:"kind" yaml:"kind"`

	// time: wall clock "hh:mm".
	At string `json:"at,omitempty" yaml:"at,omitempty"`

	// mouse_position and click_region share the anchor coordinates.
	X int `json:"x,omitempty" yaml:"x,omitempty"`
	Y int `json:"y,omitempty" yaml:"y,omitempty"`

	// mouse_position: match radius in screen units. 0 means DefaultMouseTolerance.
	Tolerance int `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`

	// keyboard_shortcut: special key name, e.g. "F5".
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// click_region: rectangle extent.
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`
}

// Validate checks that the trigger is well-formed.
func (t Trigger) Validate() error {
	switch t.Kind {
	case TriggerTime:
		if _, _, err := parseClock(t.At); err != nil {
			return fmt.Errorf("time trigger: %w", err)
		}
	case TriggerMousePosition:
		if t.Tolerance < 0 {
			return fmt.Errorf("mouse_position trigger: negative tolerance")
		}
	case TriggerKeyboardShortcut:
		if t.Key == "" {
			return fmt.Errorf("keyboard_shortcut trigger: empty key")
		}
	case TriggerClickRegion:
		if t.Width < 0 || t.Height < 0 {
			return fmt.Errorf("click_region trigger: negative extent")
		}
	default:
		return fmt.Errorf("unknown trigger kind: %q", t.Kind)
	}
	return nil
}

// Matches evaluates the trigger against an incoming event. A trigger whose
// kind is incompatible with the event kind is a non-match, never an error.
func (t Trigger) Matches(ev event.Event) bool {
	switch t.Kind {
	case TriggerTime:
		return t.matchTime(ev)
	case TriggerMousePosition:
		return t.matchMousePosition(ev)
	case TriggerKeyboardShortcut:
		return t.matchKeyboardShortcut(ev)
	case TriggerClickRegion:
		return t.matchClickRegion(ev)
	}
	return false
}

// matchTime fires when a system event's wall clock hour and minute equal the
// trigger's hh:mm exactly.
func (t Trigger) matchTime(ev event.Event) bool {
	if ev.Kind != event.KindSystem {
		return false
	}
	hour, minute, err := parseClock(t.At)
	if err != nil {
		return false
	}
	return ev.Timestamp.Hour() == hour && ev.Timestamp.Minute() == minute
}

// matchMousePosition fires when a screen capture's mouse coordinates fall
// within the tolerance radius (Euclidean) of the trigger anchor.
func (t Trigger) matchMousePosition(ev event.Event) bool {
	p, ok := ev.ScreenCapture()
	if !ok {
		return false
	}
	tolerance := t.Tolerance
	if tolerance == 0 {
		tolerance = DefaultMouseTolerance
	}
	dx := p.MouseX - t.X
	dy := p.MouseY - t.Y
	return dx*dx+dy*dy <= tolerance*tolerance
}

// matchKeyboardShortcut fires when a keyboard event flagged as a special key
// carries exactly the trigger's key name.
func (t Trigger) matchKeyboardShortcut(ev event.Event) bool {
	p, ok := ev.Keyboard()
	if !ok {
		return false
	}
	return p.IsSpecial && p.Key == t.Key
}

// matchClickRegion fires when a mouse click lands inside the trigger's
// axis-aligned rectangle, edges inclusive.
func (t Trigger) matchClickRegion(ev event.Event) bool {
	p, ok := ev.MouseClick()
	if !ok {
		return false
	}
	return p.X >= t.X && p.X <= t.X+t.Width &&
		p.Y >= t.Y && p.Y <= t.Y+t.Height
}

// parseClock parses "hh:mm" into hour and minute.
func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q, expected hh:mm", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
