package provider

import (
	"context"
	"math/big"

	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/shopspring/decimal"
)

// ReceiptStatus is the network's final verdict on an included transaction.
type ReceiptStatus string

const (
	ReceiptSuccess  ReceiptStatus = "SUCCESS"
	ReceiptReverted ReceiptStatus = "REVERTED"
)

// Receipt is the confirmation result for a submitted operation.
type Receipt struct {
	TxID    string
	Status  ReceiptStatus
	FeeUsed *big.Int
}

// WalletProvider defines the interface to the signing wallet and its network
// connection. Implementations map their native errors onto the Error type in
// this package so callers can distinguish user rejection from network failure.
type WalletProvider interface {
	// GetFeeQuote returns the network's current single fee-unit price.
	GetFeeQuote(ctx context.Context) (*big.Int, error)

	// EstimateOperationCost returns the fee-unit limit for a prospective operation.
	EstimateOperationCost(ctx context.Context, req models.TransferRequest) (uint64, error)

	// Submit signs and broadcasts the operation, returning the network-assigned
	// transaction identifier as soon as the network accepts it.
	Submit(ctx context.Context, req models.TransferRequest) (string, error)

	// WaitForConfirmation blocks until the transaction is included and its
	// outcome is final, or the wait times out.
	WaitForConfirmation(ctx context.Context, txID string) (*Receipt, error)
}

// BalanceReader supplies the available balance used as the amount validator's
// upper bound.
type BalanceReader interface {
	AvailableBalance(ctx context.Context, address string) (decimal.Decimal, error)
}
