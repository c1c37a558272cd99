// Package api defines the JSON payloads of the coordinator's HTTP surface.
package api

import "time"

// NewTransfer is the request body for submitting a transfer.
type NewTransfer struct {
	To     string `json:"to"`
	Amount string `json:"amount"`

	// AcknowledgeNoFee lets the submission proceed when no fee estimate is
	// available. Without it, such a submission is refused.
	AcknowledgeNoFee bool `json:"acknowledge_no_fee,omitempty"`
}

// NewStake is the request body for submitting a stake.
type NewStake struct {
	Amount           string `json:"amount"`
	LockDays         int    `json:"lock_days"`
	AcknowledgeNoFee bool   `json:"acknowledge_no_fee,omitempty"`
}

// Unstake is the request body for withdrawing an unlocked position.
type Unstake struct {
	AcknowledgeNoFee bool `json:"acknowledge_no_fee,omitempty"`
}

// OperationResult is the consolidated outcome of one submitted operation.
type OperationResult struct {
	TxID           string `json:"tx_id,omitempty"`
	StakeID        string `json:"stake_id,omitempty"`
	OnChainSuccess bool   `json:"on_chain_success"`
	LedgerSynced   bool   `json:"ledger_synced"`
	FailureReason  string `json:"failure_reason,omitempty"`
	Message        string `json:"message"`
}

// Transaction is a locally-tracked transaction record.
type Transaction struct {
	TxID      string    `json:"tx_id"`
	Kind      string    `json:"kind"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    string    `json:"amount"`
	FeeUsed   *string   `json:"fee_used,omitempty"`
	Status    string    `json:"status"`
	Synced    bool      `json:"synced"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Countdown is the live lock view of one position.
type Countdown struct {
	RemainingSeconds int64   `json:"remaining_seconds"`
	Progress         float64 `json:"progress"`
	Unlocked         bool    `json:"unlocked"`
}

// Position is a staked position with its current countdown.
type Position struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Principal string    `json:"principal"`
	Reward    string    `json:"reward"`
	StakedAt  time.Time `json:"staked_at"`
	UnlockAt  time.Time `json:"unlock_at"`
	LockDays  int       `json:"lock_days"`
	Status    string    `json:"status"`
	Claimed   bool      `json:"claimed"`
	Countdown Countdown `json:"countdown"`
}

// ResyncResult reports a manual reconciliation sweep.
type ResyncResult struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// Error is the error body for non-2xx responses.
type Error struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
