// Periodic screen capture source. Polls the capture collaborator on a fixed
// cadence and converts each frame into a screen_capture event.

package event

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Capturer is the screen capture collaborator. Implementations own the actual
// screenshot acquisition and any text extraction; the tracker only consumes
// the resulting record.
type Capturer interface {
	Capture(ctx context.Context) (ScreenCapturePayload, error)
}

// CaptureConfig configures the periodic capture source.
type CaptureConfig struct {
	// Interval between captures. Default: 1s.
	Interval time.Duration

	// Logger. Defaults to a disabled logger.
	Logger zerolog.Logger
}

// CaptureSource emits screen_capture events on a fixed cadence.
type CaptureSource struct {
	cfg      CaptureConfig
	capturer Capturer
	logger   zerolog.Logger
}

// NewCaptureSource creates a CaptureSource backed by the given collaborator.
func NewCaptureSource(cfg CaptureConfig, capturer Capturer) *CaptureSource {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &CaptureSource{
		cfg:      cfg,
		capturer: capturer,
		logger:   cfg.Logger.With().Str("component", "capture_source").Logger(),
	}
}

func (c *CaptureSource) Name() string { return "capture" }

// Subscribe starts a ticking goroutine. A failed capture is logged and the
// cycle skipped; tracking continues.
func (c *CaptureSource) Subscribe(ctx context.Context, out chan<- Event) error {
	go c.run(ctx, out)
	return nil
}

func (c *CaptureSource) run(ctx context.Context, out chan<- Event) {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	c.logger.Info().Dur("interval", c.cfg.Interval).Msg("capture source started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("capture source stopped")
			return
		case <-ticker.C:
			payload, err := c.capturer.Capture(ctx)
			if err != nil {
				c.logger.Warn().Err(err).Msg("capture failed, skipping cycle")
				continue
			}

			ev, err := New(KindScreenCapture, payload)
			if err != nil {
				c.logger.Error().Err(err).Msg("capture event marshal")
				continue
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
