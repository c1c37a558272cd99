package staking

import (
	"context"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/models"
)

// DefaultTickInterval is the refresh granularity for displayed countdowns.
const DefaultTickInterval = time.Second

// CountdownTicker recomputes one displayed position's lock view on a fixed
// interval. Each ticker is scheduled independently and is read-only against
// the position it targets; it derives a view and never mutates state.
type CountdownTicker struct {
	Position models.StakePosition
	Interval time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewCountdownTicker creates a ticker for one displayed position.
func NewCountdownTicker(pos models.StakePosition) *CountdownTicker {
	return &CountdownTicker{
		Position: pos,
		Interval: DefaultTickInterval,
		now:      time.Now,
	}
}

// Current returns the countdown as of this instant.
func (t *CountdownTicker) Current() models.LockCountdown {
	return ComputeCountdown(t.Position.StakedAt, t.Position.LockDays, t.now())
}

// Run emits a freshly computed countdown on each tick until ctx is cancelled
// or the lock unlocks. Every emission is computed from absolute timestamps;
// deltas are never accumulated, so the view cannot drift from the wall clock.
func (t *CountdownTicker) Run(ctx context.Context) <-chan models.LockCountdown {
	out := make(chan models.LockCountdown, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(t.Interval)
		defer ticker.Stop()

		// Emit the initial view immediately rather than waiting a full tick.
		current := t.Current()
		out <- current

		for !current.Unlocked {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current = t.Current()
				select {
				case out <- current:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
