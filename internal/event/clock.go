package event

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ClockSource emits a system event on a fixed cadence. Time-of-day triggers
// match against these heartbeats, so the cadence must be at most a minute for
// "hh:mm" triggers to fire reliably.
type ClockSource struct {
	interval time.Duration
	logger   zerolog.Logger
}

// NewClockSource creates a ClockSource. Intervals above a minute are clamped.
func NewClockSource(interval time.Duration, logger zerolog.Logger) *ClockSource {
	if interval <= 0 || interval > time.Minute {
		interval = 30 * time.Second
	}
	return &ClockSource{
		interval: interval,
		logger:   logger.With().Str("component", "clock_source").Logger(),
	}
}

func (c *ClockSource) Name() string { return "clock" }

// Subscribe starts the heartbeat goroutine.
func (c *ClockSource) Subscribe(ctx context.Context, out chan<- Event) error {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ev, err := New(KindSystem, SystemPayload{Message: "heartbeat"})
				if err != nil {
					c.logger.Error().Err(err).Msg("clock event marshal")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return nil
}
