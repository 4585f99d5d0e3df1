package suggest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/activity-agent/internal/event"
	"github.com/p-blackswan/activity-agent/internal/suggest"
)

func mustEvent(t *testing.T, kind string, payload interface{}) event.Event {
	t.Helper()
	ev, err := event.New(kind, payload)
	require.NoError(t, err)
	return ev
}

func clickAt(t *testing.T, x, y int) event.Event {
	return mustEvent(t, event.KindMouseClick, event.MouseClickPayload{X: x, Y: y, Button: "left"})
}

func typed(t *testing.T, text string) event.Event {
	return mustEvent(t, event.KindKeyboard, event.KeyboardPayload{Key: "a", Text: text})
}

func appEvent(t *testing.T, name string) event.Event {
	return mustEvent(t, event.KindApplication, event.ApplicationPayload{AppName: name})
}

func TestRepeatedClicksEmitOneSuggestion(t *testing.T) {
	d := suggest.NewRepeatedKindDetector()

	history := []event.Event{
		clickAt(t, 10, 10),
		mustEvent(t, event.KindSystem, event.SystemPayload{Message: "tick"}),
		clickAt(t, 11, 10),
		clickAt(t, 10, 12),
	}

	got := d.Detect(history)
	require.Len(t, got, 1)
	assert.Equal(t, suggest.DetectorRepeatedSequence, got[0].DetectorType)
	assert.Equal(t, event.KindMouseClick, got[0].DetectorKey)
	assert.Equal(t, 0.6, got[0].Confidence)
	assert.Len(t, got[0].SourceActivities, 3)
}

func TestRepeatedKeyboardRequiresText(t *testing.T) {
	d := suggest.NewRepeatedKindDetector()

	// Three keyboard events without text: no suggestion.
	history := []event.Event{
		mustEvent(t, event.KindKeyboard, event.KeyboardPayload{Key: "shift", IsSpecial: true}),
		mustEvent(t, event.KindKeyboard, event.KeyboardPayload{Key: "ctrl", IsSpecial: true}),
		mustEvent(t, event.KindKeyboard, event.KeyboardPayload{Key: "alt", IsSpecial: true}),
	}
	assert.Empty(t, d.Detect(history))

	// Three with text: one suggestion at 0.7.
	history = []event.Event{typed(t, "hello"), typed(t, "hello"), typed(t, "hello")}
	got := d.Detect(history)
	require.Len(t, got, 1)
	assert.Equal(t, event.KindKeyboard, got[0].DetectorKey)
	assert.Equal(t, 0.7, got[0].Confidence)
}

func TestRepeatedOtherKindsStaySilent(t *testing.T) {
	d := suggest.NewRepeatedKindDetector()

	// Repeated application events cross the threshold but do not emit.
	history := []event.Event{
		appEvent(t, "Editor"),
		appEvent(t, "Editor"),
		appEvent(t, "Editor"),
		appEvent(t, "Editor"),
	}
	assert.Empty(t, d.Detect(history))
}

func TestRepeatedDetectorWindowBound(t *testing.T) {
	d := suggest.NewRepeatedKindDetector()

	// Three clicks, but only two inside the 20-event window.
	var history []event.Event
	history = append(history, clickAt(t, 1, 1))
	for i := 0; i < 18; i++ {
		history = append(history, mustEvent(t, event.KindSystem, event.SystemPayload{Message: "tick"}))
	}
	history = append(history, clickAt(t, 2, 2), clickAt(t, 3, 3))

	assert.Empty(t, d.Detect(history))
}

func TestAppSequenceMostRecentFirst(t *testing.T) {
	d := suggest.NewAppSequenceDetector()

	// History A, B, A, C (oldest first). Last three distinct, most recent
	// first: C, A, B.
	history := []event.Event{
		appEvent(t, "A"),
		appEvent(t, "B"),
		appEvent(t, "A"),
		appEvent(t, "C"),
	}

	got := d.Detect(history)
	require.Len(t, got, 1)
	assert.Equal(t, suggest.DetectorAppSequence, got[0].DetectorType)
	assert.Equal(t, "C, A, B", got[0].DetectorKey)
	assert.Equal(t, 0.65, got[0].Confidence)
}

func TestAppSequenceNeedsThreeDistinctApps(t *testing.T) {
	d := suggest.NewAppSequenceDetector()

	history := []event.Event{appEvent(t, "A"), appEvent(t, "B"), appEvent(t, "A")}
	assert.Empty(t, d.Detect(history))
}

func TestAppSequenceReadsScreenCaptures(t *testing.T) {
	d := suggest.NewAppSequenceDetector()

	history := []event.Event{
		appEvent(t, "A"),
		mustEvent(t, event.KindScreenCapture, event.ScreenCapturePayload{AppName: "B", MouseX: 5, MouseY: 5}),
		// Captures without a recognised app are skipped, not counted.
		mustEvent(t, event.KindScreenCapture, event.ScreenCapturePayload{MouseX: 5, MouseY: 5}),
		appEvent(t, "C"),
	}

	got := d.Detect(history)
	require.Len(t, got, 1)
	assert.Equal(t, "C, B, A", got[0].DetectorKey)
}

func TestTimeOfDayIsReserved(t *testing.T) {
	d := suggest.NewTimeOfDayDetector()
	assert.Empty(t, d.Detect([]event.Event{appEvent(t, "A")}))
	assert.Equal(t, suggest.DetectorTimeOfDay, d.Name())
}
