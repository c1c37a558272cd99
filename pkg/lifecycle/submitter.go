package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/events"
	"github.com/meridianfi/txlifecycle/pkg/metrics"
	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/meridianfi/txlifecycle/pkg/provider"
	"github.com/meridianfi/txlifecycle/pkg/storage"
)

// Submitter drives one operation through the submission state machine:
//
//	idle -> pending -> confirming -> {confirmed | failed}
//
// Each transition is persisted to the local record store and published as a
// status event. There are no retries at this layer: a failed attempt requires
// the user to re-initiate from idle. A submitted operation is not cancelable
// once the provider accepts it; only the local observation can be abandoned,
// and the persisted record keeps reconciliation resumable regardless.
type Submitter struct {
	Provider provider.WalletProvider
	Records  storage.RecordStore
	Events   events.Publisher
	Logger   *slog.Logger
}

// NewSubmitter creates a Submitter.
func NewSubmitter(p provider.WalletProvider, records storage.RecordStore, publisher events.Publisher, logger *slog.Logger) *Submitter {
	return &Submitter{Provider: p, Records: records, Events: publisher, Logger: logger}
}

// Submit signs, broadcasts and awaits confirmation of one operation.
//
// On provider rejection or broadcast failure no record exists yet and the
// returned record is nil. Once the network assigns a transaction identifier,
// a record is persisted immediately so the identifier is observable before
// confirmation, and the record is returned even when the attempt ends FAILED.
func (s *Submitter) Submit(ctx context.Context, req models.TransferRequest, stakeID string) (*models.TransactionRecord, error) {
	txID, err := s.Provider.Submit(ctx, req)
	if err != nil {
		reason := ReasonNetworkFailure
		outcome := metrics.OutcomeNetworkError
		if provider.IsUserRejected(err) {
			reason = ReasonUserRejected
			outcome = metrics.OutcomeUserRejected
		}
		metrics.Submissions.WithLabelValues(string(req.Kind), outcome).Inc()
		s.Logger.Warn("submission not accepted", "kind", req.Kind, "reason", reason, "error", err)
		return nil, &OperationError{Reason: reason, Err: err}
	}

	// The provider accepted: create the record and surface the identifier
	// right away, before confirmation.
	now := time.Now()
	rec := &models.TransactionRecord{
		TxID:      txID,
		Kind:      req.Kind,
		From:      req.From,
		To:        req.To,
		Amount:    req.Amount,
		Status:    models.SUBMITTED,
		StakeID:   stakeID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Records.PutRecord(ctx, rec); err != nil {
		// The operation is on its way regardless; tracking must not pretend otherwise.
		s.Logger.Error("failed to persist submitted record", "tx_id", txID, "error", err)
	}
	s.publish(ctx, rec, "accepted by provider")

	rec = s.advance(ctx, rec, models.CONFIRMING, nil, "awaiting confirmation")

	receipt, err := s.Provider.WaitForConfirmation(ctx, txID)
	if err != nil {
		reason := ReasonNetworkFailure
		if provider.CodeOf(err) == provider.CodeTimeout {
			reason = ReasonTimeout
		}
		rec = s.advance(ctx, rec, models.FAILED, nil, string(reason))
		metrics.Submissions.WithLabelValues(string(req.Kind), metrics.OutcomeNetworkError).Inc()
		return rec, &OperationError{Reason: reason, Err: err}
	}

	if receipt.Status != provider.ReceiptSuccess {
		// Included but reverted: terminal, funds state treated as unchanged.
		rec = s.advance(ctx, rec, models.FAILED, receipt.FeeUsed, string(ReasonReverted))
		metrics.Submissions.WithLabelValues(string(req.Kind), metrics.OutcomeReverted).Inc()
		return rec, &OperationError{Reason: ReasonReverted, Err: errProviderReverted(txID)}
	}

	rec = s.advance(ctx, rec, models.CONFIRMED, receipt.FeeUsed, "confirmed")
	metrics.Submissions.WithLabelValues(string(req.Kind), metrics.OutcomeConfirmed).Inc()
	return rec, nil
}

// advance persists and publishes one status transition, falling back to the
// in-memory record if the store write fails.
func (s *Submitter) advance(ctx context.Context, rec *models.TransactionRecord, next models.TransactionStatus, feeUsed *big.Int, detail string) *models.TransactionRecord {
	updated, err := s.Records.AdvanceRecord(ctx, rec.TxID, next, feeUsed)
	if err != nil {
		s.Logger.Error("failed to persist status transition", "tx_id", rec.TxID, "next", next, "error", err)
		// Keep the in-memory record honest even when the store is behind.
		if advErr := rec.Advance(next); advErr == nil && feeUsed != nil {
			rec.FeeUsed = feeUsed
		}
		updated = rec
	}
	s.publish(ctx, updated, detail)
	return updated
}

// publish emits a status event; delivery failures are logged, never fatal.
func (s *Submitter) publish(ctx context.Context, rec *models.TransactionRecord, detail string) {
	event := events.StatusEvent{
		TxID:   rec.TxID,
		Kind:   rec.Kind,
		Status: rec.Status,
		Detail: detail,
		At:     time.Now(),
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		s.Logger.Warn("failed to publish status event", "tx_id", rec.TxID, "error", err)
	}
}

func errProviderReverted(txID string) error {
	return fmt.Errorf("transaction %s was included but reverted", txID)
}
