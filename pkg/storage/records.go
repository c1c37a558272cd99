package storage

import (
	"context"
	"math/big"

	"github.com/meridianfi/txlifecycle/pkg/models"
)

// RecordReader defines the interface for reading transaction records.
type RecordReader interface {
	// GetRecord retrieves a transaction record by its network-assigned hash.
	GetRecord(ctx context.Context, txID string) (*models.TransactionRecord, error)

	// ListRecords retrieves all locally-tracked transaction records.
	ListRecords(ctx context.Context) ([]models.TransactionRecord, error)

	// ListUnsynced retrieves confirmed records whose ledger write has not
	// succeeded yet. These are the records the resync sweep re-reconciles.
	ListUnsynced(ctx context.Context) ([]models.TransactionRecord, error)
}

// RecordManager defines the interface for creating and advancing transaction
// records through their one-directional status transitions.
type RecordManager interface {
	// PutRecord stores a new transaction record.
	PutRecord(ctx context.Context, rec *models.TransactionRecord) error

	// AdvanceRecord moves a record to the next status, persisting the result.
	// feeUsed may be nil; it is recorded when the confirmation receipt carries it.
	AdvanceRecord(ctx context.Context, txID string, next models.TransactionStatus, feeUsed *big.Int) (*models.TransactionRecord, error)

	// MarkSynced flags a record as reconciled with the backend record store.
	MarkSynced(ctx context.Context, txID string) error
}

// RecordStore combines the reader and manager interfaces.
type RecordStore interface {
	RecordReader
	RecordManager
}
