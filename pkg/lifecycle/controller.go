package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meridianfi/txlifecycle/pkg/estimator"
	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/meridianfi/txlifecycle/pkg/session"
	"github.com/meridianfi/txlifecycle/pkg/staking"
	"github.com/meridianfi/txlifecycle/pkg/storage"
	"github.com/meridianfi/txlifecycle/pkg/validation"
)

// Reconciler is the slice of the ledger reconciler the controller drives.
type Reconciler interface {
	Reconcile(ctx context.Context, rec *models.TransactionRecord) models.LedgerSyncOutcome
	ResyncPending(ctx context.Context) (synced, failed int, err error)
}

// Outcome is the single consolidated result of one user-initiated operation.
// Callers read it as-is; they never inspect sub-component states.
type Outcome struct {
	TxID           string        `json:"tx_id,omitempty"`
	StakeID        string        `json:"stake_id,omitempty"`
	OnChainSuccess bool          `json:"on_chain_success"`
	LedgerSynced   bool          `json:"ledger_synced"`
	FailureReason  FailureReason `json:"failure_reason,omitempty"`
	Message        string        `json:"message"`
}

// Controller orchestrates validators, fee estimation, submission and
// reconciliation into one state machine per user-initiated operation. It is
// the only place that decides between a consolidated success message, a
// success-with-warning (chain ok, ledger pending) and a failure message.
type Controller struct {
	Session       *session.Session
	TransferRules validation.AmountRules
	StakeRules    validation.AmountRules
	StakingPool   string

	Estimator  *estimator.Estimator
	Submitter  *Submitter
	Reconciler Reconciler
	Positions  storage.PositionStore
	Logger     *slog.Logger
}

// SendTransfer validates, estimates, submits and reconciles one transfer.
// ackNoEstimate lets the user proceed when no fee estimate is available.
func (c *Controller) SendTransfer(ctx context.Context, rawAmount, to string, ackNoEstimate bool) (Outcome, error) {
	req, err := c.buildRequest(models.OpTransfer, rawAmount, to, c.TransferRules)
	if err != nil {
		return Outcome{}, err
	}
	return c.run(ctx, req, "", ackNoEstimate)
}

// Stake validates and submits a stake of rawAmount locked for lockDays, and
// creates the resulting position once the stake confirms.
func (c *Controller) Stake(ctx context.Context, rawAmount string, lockDays int, ackNoEstimate bool) (Outcome, error) {
	if lockDays < 0 {
		return Outcome{}, &ValidationError{Field: "lock_days", Reason: "lock duration cannot be negative"}
	}

	req, err := c.buildRequest(models.OpStake, rawAmount, c.StakingPool, c.StakeRules)
	if err != nil {
		return Outcome{}, err
	}

	stakeID := uuid.New().String()
	outcome, err := c.run(ctx, req, stakeID, ackNoEstimate)
	if !outcome.OnChainSuccess {
		return outcome, err
	}

	// The stake is on chain: the position exists locally even if the ledger
	// write is still pending, so a later refresh can finish the bookkeeping.
	now := time.Now()
	pos := &models.StakePosition{
		ID:        stakeID,
		Owner:     c.Session.Address(),
		Principal: req.Amount,
		StakedAt:  now,
		LockDays:  lockDays,
		UnlockAt:  staking.UnlockTime(now, lockDays),
		TxID:      outcome.TxID,
	}
	pos.Status = staking.DeriveStatus(pos, now)
	if err := c.Positions.PutPosition(ctx, pos); err != nil {
		c.Logger.Error("failed to persist stake position", "stake_id", stakeID, "error", err)
	}
	outcome.StakeID = stakeID
	return outcome, err
}

// Unstake withdraws an unlocked position's principal and marks it claimed.
func (c *Controller) Unstake(ctx context.Context, positionID string, ackNoEstimate bool) (Outcome, error) {
	if !c.Session.Active() {
		return Outcome{}, ErrSessionClosed
	}

	pos, err := c.Positions.GetPosition(ctx, positionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load position %s: %w", positionID, err)
	}
	if pos.Claimed {
		return Outcome{}, &ValidationError{Field: "position", Reason: "position is already claimed"}
	}
	if staking.DeriveStatus(pos, time.Now()) != models.StakeUnlocked {
		return Outcome{}, &ValidationError{Field: "position", Reason: "position is still locked"}
	}

	req := models.TransferRequest{
		Kind:   models.OpUnstake,
		From:   c.Session.Address(),
		To:     c.StakingPool,
		Amount: pos.Principal,
	}

	outcome, err := c.run(ctx, req, pos.ID, ackNoEstimate)
	if !outcome.OnChainSuccess {
		return outcome, err
	}

	pos.Claimed = true
	pos.Status = models.StakeClaimed
	pos.Reward = staking.ComputeReward(pos.Principal, pos.LockDays)
	if putErr := c.Positions.PutPosition(ctx, pos); putErr != nil {
		c.Logger.Error("failed to persist claimed position", "stake_id", pos.ID, "error", putErr)
	}
	outcome.StakeID = pos.ID
	return outcome, err
}

// Refresh re-attempts reconciliation for every confirmed-but-unsynced record.
func (c *Controller) Refresh(ctx context.Context) (synced, failed int, err error) {
	return c.Reconciler.ResyncPending(ctx)
}

// buildRequest runs the pre-submission gate: session, amount format, bounds,
// balance, then address. The first failing check wins.
func (c *Controller) buildRequest(kind models.OperationKind, rawAmount, to string, rules validation.AmountRules) (models.TransferRequest, error) {
	var zero models.TransferRequest

	if !c.Session.Active() {
		return zero, ErrSessionClosed
	}
	if rawAmount == "" {
		return zero, &ValidationError{Field: "amount", Reason: "amount is required"}
	}
	if res := rules.Check(rawAmount); !res.Valid {
		return zero, &ValidationError{Field: "amount", Reason: res.Reason}
	}

	amount, err := validation.Normalize(rawAmount)
	if err != nil {
		return zero, &ValidationError{Field: "amount", Reason: err.Error()}
	}
	if res := validation.CheckBalance(amount, c.Session.AvailableBalance()); !res.Valid {
		return zero, &ValidationError{Field: "amount", Reason: res.Reason}
	}
	if res := validation.CheckAddress(to, c.Session.Address()); !res.Valid {
		return zero, &ValidationError{Field: "to", Reason: res.Reason}
	}

	return models.TransferRequest{Kind: kind, From: c.Session.Address(), To: to, Amount: amount}, nil
}

// run drives one validated request through submission and reconciliation.
func (c *Controller) run(ctx context.Context, req models.TransferRequest, stakeID string, ackNoEstimate bool) (Outcome, error) {
	// Entering pending requires a non-stale estimate or an explicit
	// acknowledgement that none is available. Estimation failure itself is
	// soft and never blocks an acknowledged submission.
	est := c.Estimator.Latest()
	if !est.MatchesRequest(req) {
		fresh, err := c.Estimator.EstimateNow(ctx, req)
		if err != nil && !ackNoEstimate {
			return Outcome{}, ErrNoFeeEstimate
		}
		est = fresh
	}
	if est != nil && est.Fallback {
		c.Logger.Warn("submitting with fallback fee price", "kind", req.Kind, "fee", est.Formatted)
	}

	rec, err := c.Submitter.Submit(ctx, req, stakeID)
	if err != nil {
		reason := ReasonOf(err)
		outcome := Outcome{
			OnChainSuccess: false,
			FailureReason:  reason,
			Message:        failureMessage(req.Kind, reason),
		}
		if rec != nil {
			outcome.TxID = rec.TxID
		}
		return outcome, err
	}

	sync := c.Reconciler.Reconcile(ctx, rec)
	out := Outcome{
		TxID:           rec.TxID,
		OnChainSuccess: true,
		LedgerSynced:   sync.Success,
	}
	if sync.Success {
		out.Message = fmt.Sprintf("%s confirmed and recorded", kindLabel(req.Kind))
	} else {
		// Funds moved; only the bookkeeping is pending. Never presented as a failure.
		out.Message = fmt.Sprintf("%s confirmed on chain; ledger sync pending, refresh to retry", kindLabel(req.Kind))
		c.Logger.Warn("operation confirmed but not reconciled", "tx_id", rec.TxID, "error", sync.Error)
	}
	return out, nil
}

func kindLabel(kind models.OperationKind) string {
	switch kind {
	case models.OpStake:
		return "stake"
	case models.OpUnstake:
		return "unstake"
	default:
		return "transfer"
	}
}

func failureMessage(kind models.OperationKind, reason FailureReason) string {
	label := kindLabel(kind)
	switch reason {
	case ReasonUserRejected:
		return fmt.Sprintf("%s cancelled: the signing request was rejected in the wallet", label)
	case ReasonReverted:
		return fmt.Sprintf("%s failed on chain; no funds were moved", label)
	case ReasonTimeout:
		return fmt.Sprintf("%s confirmation timed out; check the transaction before retrying", label)
	default:
		return fmt.Sprintf("%s could not be submitted due to a network problem; try again", label)
	}
}
