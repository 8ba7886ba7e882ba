package db

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// zapAdapter routes badger's internal logging through the global zap logger.
type zapAdapter struct {
	*zap.Logger
}

func (z zapAdapter) Errorf(f string, v ...interface{}) {
	z.Sugar().Errorf(f, v...)
}

func (z zapAdapter) Warningf(f string, v ...interface{}) {
	z.Sugar().Warnf(f, v...)
}

func (z zapAdapter) Infof(f string, v ...interface{}) {
	z.Sugar().Debugf(f, v...)
}

func (z zapAdapter) Debugf(f string, v ...interface{}) {
}

// OpenBadger opens (or creates) a small on-disk store. The bot only keeps a
// handful of keys, so the value log is capped well below badger's default.
func OpenBadger(path string) (*badger.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create directory for BadgerDB")
	}

	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithValueLogFileSize(16 << 20).
		WithNumVersionsToKeep(1)
	opts.Logger = zapAdapter{zap.L()}

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open BadgerDB")
	}
	return bdb, nil
}
