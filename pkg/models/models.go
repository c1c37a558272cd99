package models

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus defines the possible states of an on-chain transaction record.
type TransactionStatus string

const (
	SUBMITTED  TransactionStatus = "SUBMITTED"
	CONFIRMING TransactionStatus = "CONFIRMING"
	CONFIRMED  TransactionStatus = "CONFIRMED"
	FAILED     TransactionStatus = "FAILED"
)

// statusRank orders statuses along the only legal direction of travel.
var statusRank = map[TransactionStatus]int{
	SUBMITTED:  0,
	CONFIRMING: 1,
	CONFIRMED:  2,
	FAILED:     2,
}

// CanAdvanceTo reports whether a transition from s to next is legal.
// Transitions are one-directional: SUBMITTED -> CONFIRMING -> {CONFIRMED | FAILED}.
// A record never regresses and terminal states never change.
func (s TransactionStatus) CanAdvanceTo(next TransactionStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	if s == CONFIRMED || s == FAILED {
		return false
	}
	return to > from
}

// OperationKind identifies the user-initiated operation a record belongs to.
type OperationKind string

const (
	OpTransfer OperationKind = "TRANSFER"
	OpStake    OperationKind = "STAKE"
	OpUnstake  OperationKind = "UNSTAKE"
)

// TransferRequest captures the user's intent for a single operation.
// It is immutable once handed to the submitter.
type TransferRequest struct {
	Kind        OperationKind   `json:"kind"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	Amount      decimal.Decimal `json:"amount"`
	FeeOverride *big.Int        `json:"fee_override,omitempty"`
}

// FeeEstimate is the derived cost projection for a prospective operation.
// It is never persisted; it is recomputed whenever the request inputs change
// and discarded when they become invalid.
type FeeEstimate struct {
	GasPrice  *big.Int `json:"gas_price"`
	GasLimit  uint64   `json:"gas_limit"`
	TotalCost *big.Int `json:"total_cost"`
	Formatted string   `json:"formatted"`

	// Fallback marks an estimate priced from the hard-coded default because
	// the provider could not supply a quote. It is an estimate, not a guarantee.
	Fallback bool `json:"fallback"`

	// Token is the monotonic request token this estimate was computed under.
	Token uint64 `json:"-"`

	// Amount and Recipient snapshot the request inputs the estimate was
	// computed for, so staleness can be detected when either changes.
	Amount    decimal.Decimal `json:"-"`
	Recipient string          `json:"-"`
}

// MatchesRequest reports whether the estimate was computed for the given
// request inputs. A mismatch means the estimate is stale and must be discarded.
func (e *FeeEstimate) MatchesRequest(req TransferRequest) bool {
	if e == nil {
		return false
	}
	return e.Amount.Equal(req.Amount) && e.Recipient == req.To
}

// TransactionRecord is the locally-tracked state of one submitted operation,
// keyed by the network-assigned transaction hash.
type TransactionRecord struct {
	TxID      string            `json:"tx_id"`
	Kind      OperationKind     `json:"kind"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Amount    decimal.Decimal   `json:"amount"`
	FeeUsed   *big.Int          `json:"fee_used,omitempty"` // nil until confirmed
	Status    TransactionStatus `json:"status"`
	StakeID   string            `json:"stake_id,omitempty"` // set for stake/unstake operations
	Synced    bool              `json:"synced"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Advance moves the record to the next status, enforcing one-directional travel.
func (r *TransactionRecord) Advance(next TransactionStatus) error {
	if !r.Status.CanAdvanceTo(next) {
		return fmt.Errorf("illegal status transition %s -> %s for transaction %s", r.Status, next, r.TxID)
	}
	r.Status = next
	r.UpdatedAt = time.Now()
	return nil
}

// LedgerSyncOutcome is the ephemeral result of reconciling a confirmed record
// with the backend record store.
type LedgerSyncOutcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Retries int    `json:"retries"`
}

// StakeStatus defines the possible states of a staked position.
type StakeStatus string

const (
	StakeActive   StakeStatus = "ACTIVE"
	StakeUnlocked StakeStatus = "UNLOCKED"
	StakeClaimed  StakeStatus = "CLAIMED"
)

// StakePosition is a staked principal with a fixed lock schedule.
// UnlockAt is derived from StakedAt and LockDays at creation time and never
// changes afterwards, even if lock-duration configuration changes later.
type StakePosition struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Principal decimal.Decimal `json:"principal"`
	Reward    decimal.Decimal `json:"reward"`
	StakedAt  time.Time       `json:"staked_at"`
	LockDays  int             `json:"lock_days"`
	UnlockAt  time.Time       `json:"unlock_at"`
	Claimed   bool            `json:"claimed"`
	Status    StakeStatus     `json:"status"`
	TxID      string          `json:"tx_id"`
}

// LockCountdown is a pure view over a position's lock schedule at one instant.
// It is recomputed from absolute timestamps on every tick and never persisted.
type LockCountdown struct {
	Remaining time.Duration `json:"remaining"`
	Progress  float64       `json:"progress"` // percent, clamped to [0,100]
	Unlocked  bool          `json:"unlocked"`
}
