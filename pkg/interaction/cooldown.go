package interaction

import (
	"context"
	"time"

	"github.com/juju/clock"
)

// ClockCooldown waits on an injected clock so tests can advance time.
type ClockCooldown struct {
	Clock clock.Clock
}

func NewCooldown(clk clock.Clock) *ClockCooldown {
	if clk == nil {
		clk = clock.WallClock
	}
	return &ClockCooldown{Clock: clk}
}

// Wait returns nil after d, or ctx.Err() if ctx ends first.
func (c *ClockCooldown) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.Clock.After(d):
		return nil
	}
}
