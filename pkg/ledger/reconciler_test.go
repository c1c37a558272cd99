package ledger_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/ledger"
	"github.com/meridianfi/txlifecycle/pkg/ledger/mocks"
	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/meridianfi/txlifecycle/pkg/storage"
	storemocks "github.com/meridianfi/txlifecycle/pkg/storage/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func confirmedRecord(txID string) *models.TransactionRecord {
	return &models.TransactionRecord{
		TxID:   txID,
		Kind:   models.OpTransfer,
		From:   "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		To:     "0x1111111111111111111111111111111111111111",
		Amount: decimal.RequireFromString("1.5"),
		Status: models.CONFIRMED,
	}
}

// newReconciler builds a reconciler with instant, recorded sleeps.
func newReconciler(primary, fallback ledger.RecordWriter, store storage.RecordStore) (*ledger.Reconciler, *[]time.Duration) {
	r := ledger.NewReconciler(primary, fallback, store, slog.Default())
	slept := &[]time.Duration{}
	r.Sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return r, slept
}

func TestReconcileSuccessFirstTry(t *testing.T) {
	rec := confirmedRecord("0xabc")

	primary := new(mocks.RecordWriter)
	primary.On("WriteTransfer", mock.Anything, rec).Return(nil).Once()

	store := new(storemocks.Store)
	store.On("GetRecord", mock.Anything, "0xabc").Return(rec, nil)
	store.On("MarkSynced", mock.Anything, "0xabc").Return(nil).Once()

	r, slept := newReconciler(primary, new(mocks.RecordWriter), store)
	outcome := r.Reconcile(context.Background(), rec)

	assert.True(t, outcome.Success)
	assert.Equal(t, 0, outcome.Retries)
	assert.Empty(t, *slept)
	primary.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestReconcileIsIdempotent(t *testing.T) {
	rec := confirmedRecord("0xabc")

	synced := *rec
	synced.Synced = true

	primary := new(mocks.RecordWriter)
	store := new(storemocks.Store)
	store.On("GetRecord", mock.Anything, "0xabc").Return(&synced, nil)

	r, _ := newReconciler(primary, new(mocks.RecordWriter), store)
	outcome := r.Reconcile(context.Background(), rec)

	assert.True(t, outcome.Success)
	assert.Equal(t, 0, outcome.Retries)
	primary.AssertNotCalled(t, "WriteTransfer", mock.Anything, mock.Anything)
}

func TestReconcileFallbackAndRetry(t *testing.T) {
	// Primary times out every round; the fallback fails twice and succeeds on
	// the third round. The outcome reports two retries and no duplicate write.
	rec := confirmedRecord("0xabc")

	primary := new(mocks.RecordWriter)
	primary.On("WriteTransfer", mock.Anything, rec).Return(assert.AnError).Times(3)

	fallback := new(mocks.RecordWriter)
	fallback.On("WriteTransfer", mock.Anything, rec).Return(assert.AnError).Twice()
	fallback.On("WriteTransfer", mock.Anything, rec).Return(nil).Once()

	store := new(storemocks.Store)
	store.On("GetRecord", mock.Anything, "0xabc").Return(rec, nil)
	store.On("MarkSynced", mock.Anything, "0xabc").Return(nil).Once()

	r, slept := newReconciler(primary, fallback, store)
	outcome := r.Reconcile(context.Background(), rec)

	require.True(t, outcome.Success)
	assert.Equal(t, 2, outcome.Retries)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept, "backoff doubles from the 1s base")
	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestReconcileExhaustsRetries(t *testing.T) {
	rec := confirmedRecord("0xabc")

	primary := new(mocks.RecordWriter)
	primary.On("WriteTransfer", mock.Anything, rec).Return(assert.AnError).Times(3)
	fallback := new(mocks.RecordWriter)
	fallback.On("WriteTransfer", mock.Anything, rec).Return(assert.AnError).Times(3)

	store := new(storemocks.Store)
	store.On("GetRecord", mock.Anything, "0xabc").Return(rec, nil)

	r, _ := newReconciler(primary, fallback, store)
	outcome := r.Reconcile(context.Background(), rec)

	assert.False(t, outcome.Success)
	assert.Equal(t, 2, outcome.Retries)
	assert.NotEmpty(t, outcome.Error)
	// The chain is untouched: no rollback, the record stays confirmed.
	assert.Equal(t, models.CONFIRMED, rec.Status)
	store.AssertNotCalled(t, "MarkSynced", mock.Anything, mock.Anything)
}

func TestReconcileRequiresConfirmation(t *testing.T) {
	rec := confirmedRecord("0xabc")
	rec.Status = models.CONFIRMING

	primary := new(mocks.RecordWriter)
	r, _ := newReconciler(primary, new(mocks.RecordWriter), new(storemocks.Store))
	outcome := r.Reconcile(context.Background(), rec)

	assert.False(t, outcome.Success)
	assert.Equal(t, ledger.ErrNotConfirmed.Error(), outcome.Error)
	primary.AssertNotCalled(t, "WriteTransfer", mock.Anything, mock.Anything)
}

func TestReconcileSingleFlight(t *testing.T) {
	rec := confirmedRecord("0xabc")

	store := new(storemocks.Store)
	store.On("GetRecord", mock.Anything, "0xabc").Return(rec, nil)
	store.On("MarkSynced", mock.Anything, "0xabc").Return(nil)

	var r *ledger.Reconciler
	var nested models.LedgerSyncOutcome

	primary := new(mocks.RecordWriter)
	primary.On("WriteTransfer", mock.Anything, rec).Run(func(mock.Arguments) {
		// A concurrent attempt for the same record must be refused while the
		// first one is still in flight.
		nested = r.Reconcile(context.Background(), rec)
	}).Return(nil).Once()

	r, _ = newReconciler(primary, new(mocks.RecordWriter), store)
	outcome := r.Reconcile(context.Background(), rec)

	assert.True(t, outcome.Success)
	assert.False(t, nested.Success)
	assert.Equal(t, ledger.ErrInFlight.Error(), nested.Error)
}

func TestReconcileRoutesStakeSync(t *testing.T) {
	rec := confirmedRecord("0xstake")
	rec.Kind = models.OpStake
	rec.StakeID = "pos-1"

	primary := new(mocks.RecordWriter)
	primary.On("WriteStakeSync", mock.Anything, "pos-1", "0xstake").Return(nil).Once()

	store := new(storemocks.Store)
	store.On("GetRecord", mock.Anything, "0xstake").Return(rec, nil)
	store.On("MarkSynced", mock.Anything, "0xstake").Return(nil).Once()

	r, _ := newReconciler(primary, new(mocks.RecordWriter), store)
	outcome := r.Reconcile(context.Background(), rec)

	assert.True(t, outcome.Success)
	primary.AssertExpectations(t)
	primary.AssertNotCalled(t, "WriteTransfer", mock.Anything, mock.Anything)
}

func TestResyncPending(t *testing.T) {
	good := confirmedRecord("0xgood")
	stuck := confirmedRecord("0xstuck")

	primary := new(mocks.RecordWriter)
	primary.On("WriteTransfer", mock.Anything, good).Return(nil)
	primary.On("WriteTransfer", mock.Anything, stuck).Return(assert.AnError)
	fallback := new(mocks.RecordWriter)
	fallback.On("WriteTransfer", mock.Anything, stuck).Return(assert.AnError)

	store := new(storemocks.Store)
	store.On("ListUnsynced", mock.Anything).Return([]models.TransactionRecord{*good, *stuck}, nil)
	store.On("GetRecord", mock.Anything, "0xgood").Return(good, nil)
	store.On("GetRecord", mock.Anything, "0xstuck").Return(stuck, nil)
	store.On("MarkSynced", mock.Anything, "0xgood").Return(nil)

	r, _ := newReconciler(primary, fallback, store)
	synced, failed, err := r.ResyncPending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Equal(t, 1, failed)
}
