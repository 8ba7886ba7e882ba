package fiat

import (
	"encoding/json"

	"github.com/6529-Collections/salesbot/internal/db"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const rateSnapshotKey = "fiat:rates:latest"

// RateSnapshotDb persists the last good rate table. A nil *RateSnapshotDb is
// valid and stores nothing.
type RateSnapshotDb struct {
	db *badger.DB
}

func NewRateSnapshotDb(bdb *badger.DB) *RateSnapshotDb {
	return &RateSnapshotDb{db: bdb}
}

// OpenRateSnapshotDb opens a badger store at path. An empty path disables
// snapshots.
func OpenRateSnapshotDb(path string) (*RateSnapshotDb, error) {
	if path == "" {
		return nil, nil
	}
	bdb, err := db.OpenBadger(path)
	if err != nil {
		return nil, err
	}
	return NewRateSnapshotDb(bdb), nil
}

func (s *RateSnapshotDb) Load() (models.RateTable, bool) {
	if s == nil {
		return nil, false
	}
	var table models.RateTable
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(rateSnapshotKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &table)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		zap.L().Warn("Failed to read fiat rate snapshot", zap.Error(err))
		return nil, false
	}
	return table, len(table) > 0
}

func (s *RateSnapshotDb) Save(table models.RateTable) error {
	if s == nil {
		return nil
	}
	val, err := json.Marshal(table)
	if err != nil {
		return errors.Wrap(err, "encoding rate snapshot")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(rateSnapshotKey), val)
	})
}

func (s *RateSnapshotDb) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
