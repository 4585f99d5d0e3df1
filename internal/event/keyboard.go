// Asynchronous keyboard source. Adapts the push-style keyboard collaborator
// into the Source interface.

package event

import (
	"context"

	"github.com/rs/zerolog"
)

// KeyListener is the keyboard collaborator. Start must be non-blocking and
// invoke the callback for every keystroke until ctx is cancelled.
type KeyListener interface {
	Start(ctx context.Context, fn func(KeyboardPayload)) error
	Stop() error
}

// KeyboardSource converts listener callbacks into keyboard events.
type KeyboardSource struct {
	listener KeyListener
	logger   zerolog.Logger
}

// NewKeyboardSource creates a KeyboardSource backed by the given listener.
func NewKeyboardSource(listener KeyListener, logger zerolog.Logger) *KeyboardSource {
	return &KeyboardSource{
		listener: listener,
		logger:   logger.With().Str("component", "keyboard_source").Logger(),
	}
}

func (k *KeyboardSource) Name() string { return "keyboard" }

// Subscribe starts the listener. Delivery order follows callback order; the
// listener is released when ctx is cancelled.
func (k *KeyboardSource) Subscribe(ctx context.Context, out chan<- Event) error {
	err := k.listener.Start(ctx, func(p KeyboardPayload) {
		ev, err := New(KindKeyboard, p)
		if err != nil {
			k.logger.Error().Err(err).Msg("keyboard event marshal")
			return
		}
		select {
		case out <- ev:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if err := k.listener.Stop(); err != nil {
			k.logger.Warn().Err(err).Msg("keyboard listener stop")
		}
		k.logger.Info().Msg("keyboard source stopped")
	}()

	return nil
}
