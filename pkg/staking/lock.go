package staking

import (
	"time"

	"github.com/meridianfi/txlifecycle/pkg/models"
)

// Day is the fixed lock-duration unit. Lock durations are exact multiples of
// 24 hours; no calendar-month arithmetic is involved.
const Day = 24 * time.Hour

// ComputeCountdown derives the lock view for a position staked at stakedAt
// with a lockDays duration, as seen at now. It is a pure function of its
// arguments: callers recompute it from absolute timestamps on every tick so
// the view never drifts from the wall clock.
//
// A zero lockDays is a flexible stake: always unlocked, progress pinned to 100.
// Progress is clamped to [0,100] regardless of clock skew, so a stake
// timestamp in the future reads as 0%.
func ComputeCountdown(stakedAt time.Time, lockDays int, now time.Time) models.LockCountdown {
	if lockDays <= 0 {
		return models.LockCountdown{Remaining: 0, Progress: 100, Unlocked: true}
	}

	lock := time.Duration(lockDays) * Day
	unlockAt := stakedAt.Add(lock)

	remaining := unlockAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	progress := 100 * float64(now.Sub(stakedAt)) / float64(lock)
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	return models.LockCountdown{
		Remaining: remaining,
		Progress:  progress,
		Unlocked:  remaining == 0,
	}
}

// UnlockTime returns the fixed unlock timestamp for a stake. It is computed
// once at position creation and stored; later configuration changes to lock
// durations never move it.
func UnlockTime(stakedAt time.Time, lockDays int) time.Time {
	return stakedAt.Add(time.Duration(lockDays) * Day)
}

// DeriveStatus advances a position's time-driven status. ACTIVE becomes
// UNLOCKED once the lock expires; CLAIMED is user-driven and terminal, so it
// is never touched here.
func DeriveStatus(pos *models.StakePosition, now time.Time) models.StakeStatus {
	if pos.Status == models.StakeClaimed {
		return models.StakeClaimed
	}
	if ComputeCountdown(pos.StakedAt, pos.LockDays, now).Unlocked {
		return models.StakeUnlocked
	}
	return models.StakeActive
}
