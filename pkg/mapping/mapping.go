// Package mapping converts between domain models and API payloads.
package mapping

import (
	"time"

	"github.com/meridianfi/txlifecycle/pkg/api"
	"github.com/meridianfi/txlifecycle/pkg/lifecycle"
	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/meridianfi/txlifecycle/pkg/staking"
)

// ToApiTransaction maps a domain transaction record to its API shape.
func ToApiTransaction(rec *models.TransactionRecord) *api.Transaction {
	tx := &api.Transaction{
		TxID:      rec.TxID,
		Kind:      string(rec.Kind),
		From:      rec.From,
		To:        rec.To,
		Amount:    rec.Amount.String(),
		Status:    string(rec.Status),
		Synced:    rec.Synced,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.FeeUsed != nil {
		fee := models.FormatBaseUnits(rec.FeeUsed)
		tx.FeeUsed = &fee
	}
	return tx
}

// ToApiPosition maps a stake position to its API shape, deriving the current
// countdown and time-driven status as of now.
func ToApiPosition(pos *models.StakePosition, now time.Time) *api.Position {
	cd := staking.ComputeCountdown(pos.StakedAt, pos.LockDays, now)
	return &api.Position{
		ID:        pos.ID,
		Owner:     pos.Owner,
		Principal: pos.Principal.String(),
		Reward:    pos.Reward.String(),
		StakedAt:  pos.StakedAt,
		UnlockAt:  pos.UnlockAt,
		LockDays:  pos.LockDays,
		Status:    string(staking.DeriveStatus(pos, now)),
		Claimed:   pos.Claimed,
		Countdown: api.Countdown{
			RemainingSeconds: int64(cd.Remaining.Seconds()),
			Progress:         cd.Progress,
			Unlocked:         cd.Unlocked,
		},
	}
}

// ToApiResult maps a lifecycle outcome to its API shape.
func ToApiResult(out lifecycle.Outcome) *api.OperationResult {
	return &api.OperationResult{
		TxID:           out.TxID,
		StakeID:        out.StakeID,
		OnChainSuccess: out.OnChainSuccess,
		LedgerSynced:   out.LedgerSynced,
		FailureReason:  string(out.FailureReason),
		Message:        out.Message,
	}
}
