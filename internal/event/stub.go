// Placeholder capture and keyboard collaborators. They keep the periodic
// capture cadence and the listener wiring live until platform hooks are built
// in; swapping in a real implementation is a construction change only.

package event

import "context"

// StubCapturer produces placeholder frames: no recognized application, no
// extracted text. This is the same shape a platform hook yields on an
// unsupported OS.
type StubCapturer struct{}

// NewStubCapturer creates the placeholder capturer.
func NewStubCapturer() *StubCapturer { return &StubCapturer{} }

// Capture returns a placeholder frame and never fails.
func (*StubCapturer) Capture(context.Context) (ScreenCapturePayload, error) {
	return ScreenCapturePayload{WindowTitle: "Unknown"}, nil
}

// NoopKeyListener never reports a keystroke. Stands in for the platform
// keyboard hook.
type NoopKeyListener struct{}

func (NoopKeyListener) Start(context.Context, func(KeyboardPayload)) error { return nil }

func (NoopKeyListener) Stop() error { return nil }
