package lifecycle_test

import (
	"context"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/estimator"
	"github.com/meridianfi/txlifecycle/pkg/events"
	"github.com/meridianfi/txlifecycle/pkg/lifecycle"
	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/meridianfi/txlifecycle/pkg/provider"
	"github.com/meridianfi/txlifecycle/pkg/provider/mocks"
	"github.com/meridianfi/txlifecycle/pkg/session"
	"github.com/meridianfi/txlifecycle/pkg/storage/leveldb"
	"github.com/meridianfi/txlifecycle/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	sender    = "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
	recipient = "0x1111111111111111111111111111111111111111"
	pool      = "0x2222222222222222222222222222222222222222"
)

// fakeReconciler records reconciliation calls and returns a canned outcome.
type fakeReconciler struct {
	outcome models.LedgerSyncOutcome
	calls   []*models.TransactionRecord
}

func (f *fakeReconciler) Reconcile(ctx context.Context, rec *models.TransactionRecord) models.LedgerSyncOutcome {
	f.calls = append(f.calls, rec)
	return f.outcome
}

func (f *fakeReconciler) ResyncPending(ctx context.Context) (int, int, error) {
	return 0, 0, nil
}

type fixture struct {
	controller *lifecycle.Controller
	provider   *mocks.WalletProvider
	reconciler *fakeReconciler
	store      *leveldb.Store
	events     *events.Broadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := leveldb.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mockProvider := new(mocks.WalletProvider)

	balances := new(mocks.BalanceReader)
	balances.On("AvailableBalance", mock.Anything, sender).Return(decimal.RequireFromString("10"), nil)
	sess := session.New(sender, balances)
	require.NoError(t, sess.RefreshBalance(context.Background()))

	broadcaster := events.NewBroadcaster()
	logger := slog.Default()
	reconciler := &fakeReconciler{outcome: models.LedgerSyncOutcome{Success: true}}

	controller := &lifecycle.Controller{
		Session:       sess,
		TransferRules: validation.AmountRules{Min: decimal.RequireFromString("0.0001")},
		StakeRules:    validation.AmountRules{Min: decimal.RequireFromString("0.0001")},
		StakingPool:   pool,
		Estimator:     estimator.New(mockProvider, logger),
		Submitter:     lifecycle.NewSubmitter(mockProvider, store, broadcaster, logger),
		Reconciler:    reconciler,
		Positions:     store,
		Logger:        logger,
	}

	return &fixture{controller: controller, provider: mockProvider, reconciler: reconciler, store: store, events: broadcaster}
}

func (f *fixture) expectEstimate() {
	f.provider.On("EstimateOperationCost", mock.Anything, mock.Anything).Return(uint64(21000), nil)
	f.provider.On("GetFeeQuote", mock.Anything).Return(big.NewInt(2_000_000_000), nil)
}

func TestSendTransferHappyPath(t *testing.T) {
	f := newFixture(t)
	f.expectEstimate()
	f.provider.On("Submit", mock.Anything, mock.Anything).Return("0xabc", nil)
	f.provider.On("WaitForConfirmation", mock.Anything, "0xabc").
		Return(&provider.Receipt{TxID: "0xabc", Status: provider.ReceiptSuccess, FeeUsed: big.NewInt(42_000_000_000_000)}, nil)

	statuses, cancel := f.events.Subscribe()
	defer cancel()

	outcome, err := f.controller.SendTransfer(context.Background(), "1.5", recipient, false)
	require.NoError(t, err)

	assert.True(t, outcome.OnChainSuccess)
	assert.True(t, outcome.LedgerSynced)
	assert.Equal(t, "0xabc", outcome.TxID)
	assert.Contains(t, outcome.Message, "confirmed and recorded")

	// The record walked SUBMITTED -> CONFIRMING -> CONFIRMED and kept the fee.
	rec, err := f.store.GetRecord(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, models.CONFIRMED, rec.Status)
	require.NotNil(t, rec.FeeUsed)
	assert.Equal(t, "42000000000000", rec.FeeUsed.String())

	// Reconciliation ran exactly once, with the confirmed record.
	require.Len(t, f.reconciler.calls, 1)
	assert.Equal(t, "0xabc", f.reconciler.calls[0].TxID)
	assert.Equal(t, models.CONFIRMED, f.reconciler.calls[0].Status)

	// Every transition was published in order.
	var seen []models.TransactionStatus
	for i := 0; i < 3; i++ {
		seen = append(seen, (<-statuses).Status)
	}
	assert.Equal(t, []models.TransactionStatus{models.SUBMITTED, models.CONFIRMING, models.CONFIRMED}, seen)
}

func TestSendTransferReverted(t *testing.T) {
	f := newFixture(t)
	f.expectEstimate()
	f.provider.On("Submit", mock.Anything, mock.Anything).Return("0xdead", nil)
	f.provider.On("WaitForConfirmation", mock.Anything, "0xdead").
		Return(&provider.Receipt{TxID: "0xdead", Status: provider.ReceiptReverted}, nil)

	outcome, err := f.controller.SendTransfer(context.Background(), "1.5", recipient, false)
	require.Error(t, err)

	assert.False(t, outcome.OnChainSuccess)
	assert.Equal(t, lifecycle.ReasonReverted, outcome.FailureReason)
	assert.Contains(t, outcome.Message, "no funds were moved")

	rec, getErr := f.store.GetRecord(context.Background(), "0xdead")
	require.NoError(t, getErr)
	assert.Equal(t, models.FAILED, rec.Status)

	// A reverted operation is never reconciled.
	assert.Empty(t, f.reconciler.calls)
}

func TestSendTransferUserRejected(t *testing.T) {
	f := newFixture(t)
	f.expectEstimate()
	f.provider.On("Submit", mock.Anything, mock.Anything).
		Return("", provider.NewError(provider.CodeUserRejected, "submit", assert.AnError))

	outcome, err := f.controller.SendTransfer(context.Background(), "1.5", recipient, false)
	require.Error(t, err)

	assert.False(t, outcome.OnChainSuccess)
	assert.Equal(t, lifecycle.ReasonUserRejected, outcome.FailureReason)
	assert.Empty(t, outcome.TxID, "no identifier exists before provider acceptance")
	assert.Empty(t, f.reconciler.calls)
}

func TestSendTransferValidationGate(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		amount string
		to     string
	}{
		{"Below minimum", "0.00005", recipient},
		{"Bad format", "1e5", recipient},
		{"Empty amount", "", recipient},
		{"Over balance", "11", recipient},
		{"Self transfer", "1", sender},
		{"Bad address", "1", "not-an-address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.controller.SendTransfer(context.Background(), tc.amount, tc.to, false)
			require.Error(t, err)
			assert.True(t, lifecycle.IsValidationError(err), "expected a validation error, got %v", err)
		})
	}

	// Submission is blocked: the provider was never touched.
	f.provider.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestSendTransferLedgerPending(t *testing.T) {
	f := newFixture(t)
	f.expectEstimate()
	f.reconciler.outcome = models.LedgerSyncOutcome{Success: false, Error: "record store down", Retries: 2}
	f.provider.On("Submit", mock.Anything, mock.Anything).Return("0xabc", nil)
	f.provider.On("WaitForConfirmation", mock.Anything, "0xabc").
		Return(&provider.Receipt{TxID: "0xabc", Status: provider.ReceiptSuccess}, nil)

	outcome, err := f.controller.SendTransfer(context.Background(), "1.5", recipient, false)
	require.NoError(t, err, "a pending ledger write is a partial success, not a failure")

	assert.True(t, outcome.OnChainSuccess)
	assert.False(t, outcome.LedgerSynced)
	assert.Contains(t, outcome.Message, "ledger sync pending")
}

func TestSendTransferRequiresEstimateOrAck(t *testing.T) {
	f := newFixture(t)
	f.provider.On("EstimateOperationCost", mock.Anything, mock.Anything).Return(uint64(0), assert.AnError)

	_, err := f.controller.SendTransfer(context.Background(), "1.5", recipient, false)
	assert.ErrorIs(t, err, lifecycle.ErrNoFeeEstimate)
	f.provider.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)

	// With the acknowledgement, the same submission proceeds.
	f.provider.On("Submit", mock.Anything, mock.Anything).Return("0xabc", nil)
	f.provider.On("WaitForConfirmation", mock.Anything, "0xabc").
		Return(&provider.Receipt{TxID: "0xabc", Status: provider.ReceiptSuccess}, nil)

	outcome, err := f.controller.SendTransfer(context.Background(), "1.5", recipient, true)
	require.NoError(t, err)
	assert.True(t, outcome.OnChainSuccess)
}

func TestStakeCreatesPosition(t *testing.T) {
	f := newFixture(t)
	f.expectEstimate()
	f.provider.On("Submit", mock.Anything, mock.Anything).Return("0xstake", nil)
	f.provider.On("WaitForConfirmation", mock.Anything, "0xstake").
		Return(&provider.Receipt{TxID: "0xstake", Status: provider.ReceiptSuccess}, nil)

	outcome, err := f.controller.Stake(context.Background(), "2", 30, false)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.StakeID)

	pos, err := f.store.GetPosition(context.Background(), outcome.StakeID)
	require.NoError(t, err)
	assert.Equal(t, models.StakeActive, pos.Status)
	assert.Equal(t, 30, pos.LockDays)
	assert.Equal(t, pos.StakedAt.Add(30*24*time.Hour), pos.UnlockAt)
	assert.Equal(t, "0xstake", pos.TxID)
	assert.True(t, pos.Principal.Equal(decimal.RequireFromString("2")))

	// The stake record carries the position link for /stakes/sync.
	require.Len(t, f.reconciler.calls, 1)
	assert.Equal(t, outcome.StakeID, f.reconciler.calls[0].StakeID)
	assert.Equal(t, models.OpStake, f.reconciler.calls[0].Kind)
}

func TestStakeFlexibleIsImmediatelyUnlocked(t *testing.T) {
	f := newFixture(t)
	f.expectEstimate()
	f.provider.On("Submit", mock.Anything, mock.Anything).Return("0xflex", nil)
	f.provider.On("WaitForConfirmation", mock.Anything, "0xflex").
		Return(&provider.Receipt{TxID: "0xflex", Status: provider.ReceiptSuccess}, nil)

	outcome, err := f.controller.Stake(context.Background(), "1", 0, false)
	require.NoError(t, err)

	pos, err := f.store.GetPosition(context.Background(), outcome.StakeID)
	require.NoError(t, err)
	assert.Equal(t, models.StakeUnlocked, pos.Status)
}

func TestUnstake(t *testing.T) {
	f := newFixture(t)

	stakedAt := time.Now().Add(-40 * 24 * time.Hour)
	unlocked := &models.StakePosition{
		ID: "pos-unlocked", Owner: sender,
		Principal: decimal.RequireFromString("2"),
		StakedAt:  stakedAt, LockDays: 30,
		UnlockAt: stakedAt.Add(30 * 24 * time.Hour),
		Status:   models.StakeActive,
	}
	locked := &models.StakePosition{
		ID: "pos-locked", Owner: sender,
		Principal: decimal.RequireFromString("2"),
		StakedAt:  time.Now(), LockDays: 30,
		UnlockAt: time.Now().Add(30 * 24 * time.Hour),
		Status:   models.StakeActive,
	}
	require.NoError(t, f.store.PutPosition(context.Background(), unlocked))
	require.NoError(t, f.store.PutPosition(context.Background(), locked))

	t.Run("Locked position is refused", func(t *testing.T) {
		_, err := f.controller.Unstake(context.Background(), "pos-locked", false)
		require.Error(t, err)
		assert.True(t, lifecycle.IsValidationError(err))
		f.provider.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("Unlocked position is claimed", func(t *testing.T) {
		f.expectEstimate()
		f.provider.On("Submit", mock.Anything, mock.Anything).Return("0xout", nil)
		f.provider.On("WaitForConfirmation", mock.Anything, "0xout").
			Return(&provider.Receipt{TxID: "0xout", Status: provider.ReceiptSuccess}, nil)

		outcome, err := f.controller.Unstake(context.Background(), "pos-unlocked", false)
		require.NoError(t, err)
		assert.True(t, outcome.OnChainSuccess)

		pos, err := f.store.GetPosition(context.Background(), "pos-unlocked")
		require.NoError(t, err)
		assert.True(t, pos.Claimed)
		assert.Equal(t, models.StakeClaimed, pos.Status)
		assert.True(t, pos.Reward.IsPositive(), "a completed 30-day lock earns a reward")
	})

	t.Run("Claimed position stays terminal", func(t *testing.T) {
		_, err := f.controller.Unstake(context.Background(), "pos-unlocked", false)
		require.Error(t, err)
		assert.True(t, lifecycle.IsValidationError(err))
	})
}

func TestClosedSessionBlocksOperations(t *testing.T) {
	f := newFixture(t)
	f.controller.Session.Close()

	_, err := f.controller.SendTransfer(context.Background(), "1", recipient, false)
	assert.ErrorIs(t, err, lifecycle.ErrSessionClosed)

	_, err = f.controller.Unstake(context.Background(), "any", false)
	assert.ErrorIs(t, err, lifecycle.ErrSessionClosed)
}
