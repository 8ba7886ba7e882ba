package sales

import (
	"context"
	"sync"

	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// SalesListener connects the Transfer watcher to the pipeline through a
// bounded queue.
type SalesListener struct {
	transfersWatcher eth.TransferLogsWatcher
	pipeline         *Pipeline
	contract         common.Address
	queueSize        int
}

func NewSalesListener(watcher eth.TransferLogsWatcher, pipeline *Pipeline, contract common.Address, queueSize int) *SalesListener {
	if queueSize < 1 {
		queueSize = 1
	}
	return &SalesListener{
		transfersWatcher: watcher,
		pipeline:         pipeline,
		contract:         contract,
		queueSize:        queueSize,
	}
}

// Listen blocks until ctx is cancelled or the watcher stops. Events already
// queued are drained before it returns.
func (l *SalesListener) Listen(ctx context.Context) error {
	events := make(chan types.Log, l.queueSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.pipeline.Run(context.WithoutCancel(ctx), events)
	}()

	err := l.transfersWatcher.WatchTransfers(ctx, l.contract, events)
	close(events)
	wg.Wait()

	if err != nil {
		zap.L().Error("Transfer watcher stopped", zap.Error(err))
	}
	return err
}
