package leveldb

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/meridianfi/txlifecycle/pkg/storage"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	recordPrefix   = "tx:"
	positionPrefix = "pos:"
)

// Store implements the storage interfaces on an embedded LevelDB database.
// Records and positions are stored as JSON under prefixed keys.
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Make sure we conform to the interface
var _ storage.Store = (*Store)(nil)

// PutRecord stores a new transaction record.
func (s *Store) PutRecord(ctx context.Context, rec *models.TransactionRecord) error {
	if rec.TxID == "" {
		return fmt.Errorf("cannot store a record without a transaction ID")
	}
	return s.put(recordPrefix+rec.TxID, rec)
}

// GetRecord retrieves a transaction record by its hash.
func (s *Store) GetRecord(ctx context.Context, txID string) (*models.TransactionRecord, error) {
	var rec models.TransactionRecord
	if err := s.get(recordPrefix+txID, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// AdvanceRecord moves a record to the next status, enforcing one-directional
// travel, and persists the result.
func (s *Store) AdvanceRecord(ctx context.Context, txID string, next models.TransactionStatus, feeUsed *big.Int) (*models.TransactionRecord, error) {
	rec, err := s.GetRecord(ctx, txID)
	if err != nil {
		return nil, err
	}

	if err := rec.Advance(next); err != nil {
		return nil, err
	}
	if feeUsed != nil {
		rec.FeeUsed = feeUsed
	}

	if err := s.put(recordPrefix+txID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkSynced flags a record as reconciled with the backend record store.
func (s *Store) MarkSynced(ctx context.Context, txID string) error {
	rec, err := s.GetRecord(ctx, txID)
	if err != nil {
		return err
	}
	if rec.Synced {
		return nil
	}
	rec.Synced = true
	rec.UpdatedAt = time.Now()
	return s.put(recordPrefix+txID, rec)
}

// ListRecords retrieves all locally-tracked transaction records.
func (s *Store) ListRecords(ctx context.Context) ([]models.TransactionRecord, error) {
	return s.listRecords(func(r *models.TransactionRecord) bool { return true })
}

// ListUnsynced retrieves confirmed records whose ledger write has not succeeded.
func (s *Store) ListUnsynced(ctx context.Context) ([]models.TransactionRecord, error) {
	return s.listRecords(func(r *models.TransactionRecord) bool {
		return r.Status == models.CONFIRMED && !r.Synced
	})
}

// PutPosition stores a new or updated stake position.
func (s *Store) PutPosition(ctx context.Context, pos *models.StakePosition) error {
	if pos.ID == "" {
		return fmt.Errorf("cannot store a position without an ID")
	}
	return s.put(positionPrefix+pos.ID, pos)
}

// GetPosition retrieves a stake position by its ID.
func (s *Store) GetPosition(ctx context.Context, id string) (*models.StakePosition, error) {
	var pos models.StakePosition
	if err := s.get(positionPrefix+id, &pos); err != nil {
		return nil, err
	}
	return &pos, nil
}

// ListPositions retrieves all stake positions for an owner. An empty owner
// matches every position.
func (s *Store) ListPositions(ctx context.Context, owner string) ([]models.StakePosition, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(positionPrefix)), nil)
	defer iter.Release()

	var positions []models.StakePosition
	for iter.Next() {
		var pos models.StakePosition
		if err := json.Unmarshal(iter.Value(), &pos); err != nil {
			return nil, fmt.Errorf("failed to unmarshal position %s: %w", iter.Key(), err)
		}
		if owner == "" || pos.Owner == owner {
			positions = append(positions, pos)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}
	return positions, nil
}

func (s *Store) listRecords(keep func(*models.TransactionRecord) bool) ([]models.TransactionRecord, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(recordPrefix)), nil)
	defer iter.Release()

	var records []models.TransactionRecord
	for iter.Next() {
		var rec models.TransactionRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", iter.Key(), err)
		}
		if keep(&rec) {
			records = append(records, rec)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.db.Put([]byte(key), data, nil); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(key string, v any) error {
	data, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}
