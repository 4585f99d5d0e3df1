package automation_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/activity-agent/internal/automation"
	"github.com/p-blackswan/activity-agent/internal/event"
)

func mustEvent(t *testing.T, kind string, payload interface{}) event.Event {
	t.Helper()
	ev, err := event.New(kind, payload)
	require.NoError(t, err)
	return ev
}

func newTask(t *testing.T, name string, triggers ...automation.Trigger) *automation.Task {
	t.Helper()
	reg := automation.NewRegistry(zerolog.Nop())
	task, err := reg.Create(automation.TaskSpec{Name: name, Triggers: triggers})
	require.NoError(t, err)
	return task
}

func TestClickRegionBoundaryInclusive(t *testing.T) {
	task := newTask(t, "region", automation.Trigger{
		Kind: automation.TriggerClickRegion, X: 10, Y: 10, Width: 50, Height: 50,
	})
	m := automation.NewMatcher()

	cases := []struct {
		x, y  int
		match bool
	}{
		{10, 10, true},  // top-left corner
		{60, 60, true},  // bottom-right corner, inclusive
		{35, 35, true},  // interior
		{61, 61, false}, // just outside
		{9, 35, false},
		{35, 61, false},
	}
	for _, tc := range cases {
		ev := mustEvent(t, event.KindMouseClick, event.MouseClickPayload{X: tc.x, Y: tc.y, Button: "left"})
		got := m.Match(ev, []*automation.Task{task})
		if tc.match {
			assert.Len(t, got, 1, "click at (%d,%d) should match", tc.x, tc.y)
		} else {
			assert.Empty(t, got, "click at (%d,%d) should not match", tc.x, tc.y)
		}
	}
}

func TestKeyboardShortcutNeedsSpecialKey(t *testing.T) {
	task := newTask(t, "refresh", automation.Trigger{
		Kind: automation.TriggerKeyboardShortcut, Key: "F5",
	})
	m := automation.NewMatcher()

	ev := mustEvent(t, event.KindKeyboard, event.KeyboardPayload{Key: "F5", IsSpecial: true})
	assert.Len(t, m.Match(ev, []*automation.Task{task}), 1)

	// Same key name but not flagged special: no match.
	ev = mustEvent(t, event.KindKeyboard, event.KeyboardPayload{Key: "F5"})
	assert.Empty(t, m.Match(ev, []*automation.Task{task}))

	// Different key.
	ev = mustEvent(t, event.KindKeyboard, event.KeyboardPayload{Key: "F6", IsSpecial: true})
	assert.Empty(t, m.Match(ev, []*automation.Task{task}))
}

func TestMousePositionTolerance(t *testing.T) {
	task := newTask(t, "corner", automation.Trigger{
		Kind: automation.TriggerMousePosition, X: 100, Y: 100, // default tolerance 20
	})
	m := automation.NewMatcher()

	within := mustEvent(t, event.KindScreenCapture, event.ScreenCapturePayload{MouseX: 112, MouseY: 116}) // dist = 20
	assert.Len(t, m.Match(within, []*automation.Task{task}), 1)

	outside := mustEvent(t, event.KindScreenCapture, event.ScreenCapturePayload{MouseX: 115, MouseY: 115}) // dist ≈ 21.2
	assert.Empty(t, m.Match(outside, []*automation.Task{task}))
}

func TestTimeTriggerMatchesSystemEvents(t *testing.T) {
	task := newTask(t, "daily", automation.Trigger{
		Kind: automation.TriggerTime, At: "09:30",
	})
	m := automation.NewMatcher()

	at := func(hour, minute int) event.Event {
		ev := mustEvent(t, event.KindSystem, event.SystemPayload{Message: "clock"})
		ev.Timestamp = time.Date(2026, 8, 23, hour, minute, 12, 0, time.Local)
		return ev
	}

	assert.Len(t, m.Match(at(9, 30), []*automation.Task{task}), 1)
	assert.Empty(t, m.Match(at(9, 31), []*automation.Task{task}))
	assert.Empty(t, m.Match(at(10, 30), []*automation.Task{task}))

	// Non-system events never match time triggers.
	click := mustEvent(t, event.KindMouseClick, event.MouseClickPayload{X: 1, Y: 1})
	click.Timestamp = time.Date(2026, 8, 23, 9, 30, 0, 0, time.Local)
	assert.Empty(t, m.Match(click, []*automation.Task{task}))
}

func TestTaskFiresAtMostOncePerEvent(t *testing.T) {
	// Two overlapping triggers on one task: short-circuit at the first.
	task := newTask(t, "overlap",
		automation.Trigger{Kind: automation.TriggerClickRegion, X: 0, Y: 0, Width: 100, Height: 100},
		automation.Trigger{Kind: automation.TriggerClickRegion, X: 0, Y: 0, Width: 200, Height: 200},
	)
	m := automation.NewMatcher()

	ev := mustEvent(t, event.KindMouseClick, event.MouseClickPayload{X: 50, Y: 50})
	got := m.Match(ev, []*automation.Task{task})
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Trigger.Width, "first trigger wins")
}

func TestDistinctTasksFireIndependently(t *testing.T) {
	a := newTask(t, "a", automation.Trigger{Kind: automation.TriggerClickRegion, X: 0, Y: 0, Width: 100, Height: 100})
	b := newTask(t, "b", automation.Trigger{Kind: automation.TriggerClickRegion, X: 40, Y: 40, Width: 100, Height: 100})
	m := automation.NewMatcher()

	ev := mustEvent(t, event.KindMouseClick, event.MouseClickPayload{X: 50, Y: 50})
	got := m.Match(ev, []*automation.Task{a, b})
	assert.Len(t, got, 2)
}

func TestIncompatibleKindIsNonMatch(t *testing.T) {
	task := newTask(t, "mixed",
		automation.Trigger{Kind: automation.TriggerTime, At: "12:00"},
		automation.Trigger{Kind: automation.TriggerMousePosition, X: 0, Y: 0},
		automation.Trigger{Kind: automation.TriggerKeyboardShortcut, Key: "F1"},
	)
	m := automation.NewMatcher()

	// A mouse click matches none of the above kinds; this is a silent
	// non-match, not an error.
	ev := mustEvent(t, event.KindMouseClick, event.MouseClickPayload{X: 0, Y: 0})
	assert.Empty(t, m.Match(ev, []*automation.Task{task}))
}
