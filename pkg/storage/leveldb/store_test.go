package leveldb_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/meridianfi/txlifecycle/pkg/storage"
	"github.com/meridianfi/txlifecycle/pkg/storage/leveldb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *leveldb.Store {
	t.Helper()
	store, err := leveldb.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newRecord(txID string) *models.TransactionRecord {
	now := time.Now()
	return &models.TransactionRecord{
		TxID:      txID,
		Kind:      models.OpTransfer,
		From:      "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		To:        "0x1111111111111111111111111111111111111111",
		Amount:    decimal.RequireFromString("1.5"),
		Status:    models.SUBMITTED,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRecordRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutRecord(ctx, newRecord("0xabc")))

	rec, err := store.GetRecord(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, models.SUBMITTED, rec.Status)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("1.5")))

	_, err = store.GetRecord(ctx, "0xmissing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAdvanceRecord(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutRecord(ctx, newRecord("0xabc")))

	rec, err := store.AdvanceRecord(ctx, "0xabc", models.CONFIRMING, nil)
	require.NoError(t, err)
	assert.Equal(t, models.CONFIRMING, rec.Status)
	assert.Nil(t, rec.FeeUsed)

	fee := big.NewInt(42_000_000_000_000)
	rec, err = store.AdvanceRecord(ctx, "0xabc", models.CONFIRMED, fee)
	require.NoError(t, err)
	assert.Equal(t, models.CONFIRMED, rec.Status)
	require.NotNil(t, rec.FeeUsed)
	assert.Equal(t, fee.String(), rec.FeeUsed.String())

	// Terminal records never change; the stored status stays CONFIRMED.
	_, err = store.AdvanceRecord(ctx, "0xabc", models.FAILED, nil)
	require.Error(t, err)
	rec, err = store.GetRecord(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, models.CONFIRMED, rec.Status)
}

func TestListUnsynced(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	confirmed := newRecord("0xaaa")
	confirmed.Status = models.CONFIRMED

	syncedRec := newRecord("0xbbb")
	syncedRec.Status = models.CONFIRMED
	syncedRec.Synced = true

	pending := newRecord("0xccc") // still SUBMITTED, not reconcilable

	for _, rec := range []*models.TransactionRecord{confirmed, syncedRec, pending} {
		require.NoError(t, store.PutRecord(ctx, rec))
	}

	unsynced, err := store.ListUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, "0xaaa", unsynced[0].TxID)

	require.NoError(t, store.MarkSynced(ctx, "0xaaa"))
	// Marking twice is a no-op.
	require.NoError(t, store.MarkSynced(ctx, "0xaaa"))

	unsynced, err = store.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsynced)

	all, err := store.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPositionRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	stakedAt := time.Now().Add(-24 * time.Hour)
	pos := &models.StakePosition{
		ID:        "pos-1",
		Owner:     "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		Principal: decimal.RequireFromString("10"),
		StakedAt:  stakedAt,
		LockDays:  30,
		UnlockAt:  stakedAt.Add(30 * 24 * time.Hour),
		Status:    models.StakeActive,
		TxID:      "0xstake",
	}
	require.NoError(t, store.PutPosition(ctx, pos))

	other := &models.StakePosition{ID: "pos-2", Owner: "0x1111111111111111111111111111111111111111", Status: models.StakeActive}
	require.NoError(t, store.PutPosition(ctx, other))

	got, err := store.GetPosition(ctx, "pos-1")
	require.NoError(t, err)
	assert.Equal(t, pos.UnlockAt.Unix(), got.UnlockAt.Unix())

	mine, err := store.ListPositions(ctx, pos.Owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "pos-1", mine[0].ID)

	all, err := store.ListPositions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
