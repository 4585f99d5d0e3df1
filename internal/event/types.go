// Package event defines the activity Event type and the Source interface.
// All observed user activity flows through the tracker as Events.
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind identifiers for well-known activity kinds.
const (
	KindKeyboard      = "keyboard"
	KindMouseClick    = "mouse_click"
	KindScreenCapture = "screen_capture"
	KindApplication   = "application"
	KindSystem        = "system"
)

// Event is one discrete observed user action. Events are immutable once
// created; the tracker hands them to the history buffer and detectors
// read-only.
type Event struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"` // kind-specific JSON
	Timestamp time.Time       `json:"timestamp"`
}

// KeyboardPayload is the decoded Payload for KindKeyboard events.
type KeyboardPayload struct {
	Key       string `json:"key"`
	IsSpecial bool   `json:"is_special"`
	Text      string `json:"text,omitempty"` // accumulated text input, if any
}

// MouseClickPayload is the decoded Payload for KindMouseClick events.
type MouseClickPayload struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Button string `json:"button"`
}

// ScreenCapturePayload is the decoded Payload for KindScreenCapture events.
// Frame and Crop reference stored artifacts owned by the capture collaborator.
type ScreenCapturePayload struct {
	Frame       string  `json:"frame,omitempty"`
	Crop        string  `json:"crop,omitempty"`
	WindowTitle string  `json:"window_title,omitempty"`
	AppName     string  `json:"app_name,omitempty"`
	MouseX      int     `json:"mouse_x"`
	MouseY      int     `json:"mouse_y"`
	Text        string  `json:"text,omitempty"` // extracted text, if the collaborator provides it
	Confidence  float64 `json:"confidence,omitempty"`
}

// ApplicationPayload is the decoded Payload for KindApplication events.
type ApplicationPayload struct {
	AppName string `json:"app_name"`
}

// SystemPayload is the decoded Payload for KindSystem events.
type SystemPayload struct {
	Message string `json:"message"`
}

// Source is implemented by anything that can emit activity events.
// The tracker starts each source when tracking begins.
type Source interface {
	// Name returns the source identifier (e.g. "capture").
	Name() string

	// Subscribe starts delivering events to out until ctx is cancelled.
	// Subscribe must be non-blocking; it should start a goroutine internally.
	Subscribe(ctx context.Context, out chan<- Event) error
}

// New constructs an Event with a generated ID and current timestamp.
func New(kind string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   raw,
		Timestamp: time.Now(),
	}, nil
}

// Keyboard decodes the payload of a keyboard event. Returns false if the
// event is not a keyboard event or the payload is malformed.
func (e Event) Keyboard() (KeyboardPayload, bool) {
	var p KeyboardPayload
	if e.Kind != KindKeyboard || json.Unmarshal(e.Payload, &p) != nil {
		return KeyboardPayload{}, false
	}
	return p, true
}

// MouseClick decodes the payload of a mouse click event.
func (e Event) MouseClick() (MouseClickPayload, bool) {
	var p MouseClickPayload
	if e.Kind != KindMouseClick || json.Unmarshal(e.Payload, &p) != nil {
		return MouseClickPayload{}, false
	}
	return p, true
}

// ScreenCapture decodes the payload of a screen capture event.
func (e Event) ScreenCapture() (ScreenCapturePayload, bool) {
	var p ScreenCapturePayload
	if e.Kind != KindScreenCapture || json.Unmarshal(e.Payload, &p) != nil {
		return ScreenCapturePayload{}, false
	}
	return p, true
}

// Application decodes the payload of an application event.
func (e Event) Application() (ApplicationPayload, bool) {
	var p ApplicationPayload
	if e.Kind != KindApplication || json.Unmarshal(e.Payload, &p) != nil {
		return ApplicationPayload{}, false
	}
	return p, true
}

// System decodes the payload of a system event.
func (e Event) System() (SystemPayload, bool) {
	var p SystemPayload
	if e.Kind != KindSystem || json.Unmarshal(e.Payload, &p) != nil {
		return SystemPayload{}, false
	}
	return p, true
}

// AppName returns the application name carried by the event, if any.
// Application events carry it directly; screen captures carry it when the
// capture collaborator recognised the foreground application.
func (e Event) AppName() (string, bool) {
	switch e.Kind {
	case KindApplication:
		if p, ok := e.Application(); ok && p.AppName != "" {
			return p.AppName, true
		}
	case KindScreenCapture:
		if p, ok := e.ScreenCapture(); ok && p.AppName != "" {
			return p.AppName, true
		}
	}
	return "", false
}
