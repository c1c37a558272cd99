package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/metrics"
	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/meridianfi/txlifecycle/pkg/storage"
)

const (
	// DefaultMaxRetries is the number of additional primary->fallback rounds
	// after the first one fails.
	DefaultMaxRetries = 2

	// DefaultBackoffBase is the delay before the first retry; it doubles on
	// each subsequent one.
	DefaultBackoffBase = time.Second
)

// ErrNotConfirmed is returned when reconciliation is requested for a record
// that has not reached CONFIRMED. Reconciliation never runs before confirmation.
var ErrNotConfirmed = errors.New("record is not confirmed")

// ErrInFlight is returned when a reconciliation for the same transaction is
// already running. At most one reconciliation per record may be in flight.
var ErrInFlight = errors.New("reconciliation already in flight")

// Reconciler persists confirmed transaction outcomes to the backend record
// store. Each round tries the primary endpoint and then the legacy fallback;
// failed rounds are retried a bounded number of times with exponential
// backoff. The attempt count and delay are carried as data in the loop, never
// as call-stack depth.
//
// A failed reconciliation is never an on-chain rollback: funds moved, the
// bookkeeping is pending, and a later manual refresh re-attempts the write.
// The operation is idempotent: the backend keys on the immutable transaction
// identifier, and an already-synced record short-circuits to success locally.
type Reconciler struct {
	Primary     RecordWriter
	Fallback    RecordWriter
	Records     storage.RecordStore
	MaxRetries  int
	BackoffBase time.Duration
	Logger      *slog.Logger

	// Sleep is swappable so retry timing is unit-testable without timers.
	Sleep func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewReconciler creates a Reconciler with the default retry policy.
func NewReconciler(primary, fallback RecordWriter, records storage.RecordStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		Primary:     primary,
		Fallback:    fallback,
		Records:     records,
		MaxRetries:  DefaultMaxRetries,
		BackoffBase: DefaultBackoffBase,
		Logger:      logger,
		Sleep:       sleepCtx,
		inFlight:    make(map[string]struct{}),
	}
}

// Reconcile persists one confirmed record's outcome. It returns an outcome
// rather than an error for the write itself: exhausted retries produce
// Success=false with the last error message, which the caller surfaces as
// "funds moved, bookkeeping pending".
func (r *Reconciler) Reconcile(ctx context.Context, rec *models.TransactionRecord) models.LedgerSyncOutcome {
	if rec.Status != models.CONFIRMED {
		return models.LedgerSyncOutcome{Success: false, Error: ErrNotConfirmed.Error()}
	}

	if !r.begin(rec.TxID) {
		return models.LedgerSyncOutcome{Success: false, Error: ErrInFlight.Error()}
	}
	defer r.end(rec.TxID)

	// Already reconciled: a repeat call is a no-op success.
	if stored, err := r.Records.GetRecord(ctx, rec.TxID); err == nil && stored.Synced {
		return models.LedgerSyncOutcome{Success: true}
	}

	var lastErr error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := r.BackoffBase << (attempt - 1)
			if err := r.Sleep(ctx, backoff); err != nil {
				lastErr = err
				break
			}
		}

		if err := r.writeOnce(ctx, rec); err != nil {
			lastErr = err
			r.Logger.Warn("ledger write round failed",
				"tx_id", rec.TxID, "attempt", attempt, "error", err)
			continue
		}

		if err := r.Records.MarkSynced(ctx, rec.TxID); err != nil {
			// The backend write landed; only the local flag is behind. The
			// resync sweep will repeat the idempotent write and mark it then.
			r.Logger.Error("failed to mark record synced locally", "tx_id", rec.TxID, "error", err)
		}
		metrics.ReconciliationOutcomes.WithLabelValues("success").Inc()
		return models.LedgerSyncOutcome{Success: true, Retries: attempt}
	}

	metrics.ReconciliationOutcomes.WithLabelValues("exhausted").Inc()
	r.Logger.Error("reconciliation exhausted retries", "tx_id", rec.TxID, "error", lastErr)
	return models.LedgerSyncOutcome{
		Success: false,
		Error:   lastErr.Error(),
		Retries: r.MaxRetries,
	}
}

// ResyncPending re-reconciles every confirmed-but-unsynced record. It is run
// at startup and on manual refresh, resuming work that a previous process
// abandoned between confirmation and a successful ledger write.
func (r *Reconciler) ResyncPending(ctx context.Context) (synced, failed int, err error) {
	pending, err := r.Records.ListUnsynced(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list unsynced records: %w", err)
	}

	for i := range pending {
		outcome := r.Reconcile(ctx, &pending[i])
		if outcome.Success {
			synced++
			continue
		}
		// One stuck record must not stop the rest of the sweep.
		failed++
	}

	if len(pending) > 0 {
		r.Logger.Info("resync sweep finished", "synced", synced, "failed", failed)
	}
	return synced, failed, nil
}

// writeOnce runs one primary->fallback round.
func (r *Reconciler) writeOnce(ctx context.Context, rec *models.TransactionRecord) error {
	primaryErr := r.write(ctx, r.Primary, "primary", rec)
	if primaryErr == nil {
		return nil
	}

	if r.Fallback == nil {
		return primaryErr
	}

	fallbackErr := r.write(ctx, r.Fallback, "fallback", rec)
	if fallbackErr == nil {
		return nil
	}
	return fmt.Errorf("primary: %v; fallback: %w", primaryErr, fallbackErr)
}

func (r *Reconciler) write(ctx context.Context, w RecordWriter, endpoint string, rec *models.TransactionRecord) error {
	var err error
	switch rec.Kind {
	case models.OpStake, models.OpUnstake:
		err = w.WriteStakeSync(ctx, rec.StakeID, rec.TxID)
	default:
		err = w.WriteTransfer(ctx, rec)
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ReconciliationAttempts.WithLabelValues(endpoint, result).Inc()
	return err
}

func (r *Reconciler) begin(txID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[txID]; busy {
		return false
	}
	r.inFlight[txID] = struct{}{}
	return true
}

func (r *Reconciler) end(txID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, txID)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
