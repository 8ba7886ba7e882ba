package fiat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"go.uber.org/zap"
)

// RateCache holds the last good rate table. Readers never block and never
// observe a partially written table: refreshes swap a whole new map in.
type RateCache struct {
	source   RateSource
	snapshot *RateSnapshotDb
	interval time.Duration
	table    atomic.Pointer[models.RateTable]
}

// NewRateCache seeds the cache from the snapshot (if any) and performs one
// synchronous refresh, so a reachable API yields a table before the first
// event is handled. snapshot may be nil.
func NewRateCache(ctx context.Context, source RateSource, snapshot *RateSnapshotDb, interval time.Duration) *RateCache {
	c := &RateCache{source: source, snapshot: snapshot, interval: interval}
	if table, ok := snapshot.Load(); ok {
		c.table.Store(&table)
		zap.L().Info("Loaded fiat rate snapshot", zap.Int("currencies", len(table)))
	}
	_ = c.Refresh(ctx)
	return c
}

// Refresh fetches a new table. On failure the previous table is kept.
func (c *RateCache) Refresh(ctx context.Context) error {
	table, err := c.source.FetchRates(ctx)
	if err != nil {
		zap.L().Warn("Fiat rate refresh failed, keeping previous table", zap.Error(err))
		return err
	}
	c.table.Store(&table)
	if err := c.snapshot.Save(table); err != nil {
		zap.L().Warn("Failed to persist fiat rate snapshot", zap.Error(err))
	}
	zap.L().Debug("Fiat rates refreshed", zap.Any("rates", table))
	return nil
}

// Start refreshes on the configured interval until ctx is done.
func (c *RateCache) Start(ctx context.Context) {
	if c.interval <= 0 {
		return
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}

// Current returns the latest table, or false before any successful fetch.
func (c *RateCache) Current() (models.RateTable, bool) {
	table := c.table.Load()
	if table == nil {
		return nil, false
	}
	return *table, true
}
