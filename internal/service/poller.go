package service

import (
	"context"
	"errors"
	"time"

	"github.com/andy/focusclock/internal/domain"
)

// DefaultTickInterval keeps the displayed seconds smooth. Correctness does not
// depend on it.
const DefaultTickInterval = 250 * time.Millisecond

var ErrInvalidTickInterval = errors.New("tick interval must be between 0 and 1s")

// Poll drives c.Tick from a ticker until the countdown leaves Running or ctx
// is cancelled. onTick, if set, receives the status after every tick.
func Poll(ctx context.Context, c *Countdown, interval time.Duration, onTick func(domain.Status)) error {
	if interval <= 0 || interval >= time.Second {
		return ErrInvalidTickInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if c.Status().State != domain.RunStateRunning {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Tick(ctx); err != nil {
				return err
			}
			if onTick != nil {
				onTick(c.Status())
			}
		}
	}
}
