package eth

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

type TransferLogsWatcher interface {
	WatchTransfers(ctx context.Context, contract common.Address, logsChan chan<- types.Log) error
}

// DefaultTransferLogsWatcher streams Transfer logs of one contract from the
// current tip onwards. It prefers a log subscription and falls back to
// polling when the node cannot push logs.
type DefaultTransferLogsWatcher struct {
	client        EthClient
	pollInterval  time.Duration
	resubscribeIn time.Duration
}

func NewTransferLogsWatcher(client EthClient) *DefaultTransferLogsWatcher {
	return &DefaultTransferLogsWatcher{
		client:        client,
		pollInterval:  4 * time.Second,
		resubscribeIn: 2 * time.Second,
	}
}

func transferQuery(contract common.Address) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		Addresses: []common.Address{contract},
		Topics:    [][]common.Hash{{erc721TransferSig}},
	}
}

func (w *DefaultTransferLogsWatcher) WatchTransfers(
	ctx context.Context,
	contract common.Address,
	logsChan chan<- types.Log,
) error {
	zap.L().Info("Starting watch on contract transfers", zap.String("contract", contract.Hex()))

	for {
		incoming := make(chan types.Log, 64)
		sub, err := w.client.SubscribeFilterLogs(ctx, transferQuery(contract), incoming)
		if err != nil {
			zap.L().Warn("Falling back to polling", zap.Error(err))
			return w.pollForLogs(ctx, contract, logsChan)
		}

		err = w.forwardSubscription(ctx, sub, incoming, logsChan)
		if err == nil {
			return nil
		}
		zap.L().Warn("Transfer subscription dropped, resubscribing", zap.Error(err))
		if sleepInterrupted(ctx, w.resubscribeIn) {
			return nil
		}
	}
}

func (w *DefaultTransferLogsWatcher) forwardSubscription(
	ctx context.Context,
	sub ethereum.Subscription,
	incoming <-chan types.Log,
	logsChan chan<- types.Log,
) error {
	defer sub.Unsubscribe()

	for {
		select {
		case err := <-sub.Err():
			return err
		case lg := <-incoming:
			if !forward(ctx, lg, logsChan) {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *DefaultTransferLogsWatcher) pollForLogs(
	ctx context.Context,
	contract common.Address,
	logsChan chan<- types.Log,
) error {
	var currentBlock uint64
	started := false

	for {
		if ctx.Err() != nil {
			return nil
		}
		tipBlock, err := latestBlockNumber(ctx, w.client)
		if err != nil {
			if sleepInterrupted(ctx, w.pollInterval) {
				return nil
			}
			continue
		}
		if !started {
			currentBlock = tipBlock + 1
			started = true
		}

		if currentBlock <= tipBlock {
			query := transferQuery(contract)
			query.FromBlock = new(big.Int).SetUint64(currentBlock)
			query.ToBlock = new(big.Int).SetUint64(tipBlock)
			logs, err := w.client.FilterLogs(ctx, query)
			if err != nil {
				zap.L().Error("Failed fetching logs (polling)",
					zap.Uint64("start", currentBlock),
					zap.Uint64("end", tipBlock),
					zap.Error(err),
				)
				if sleepInterrupted(ctx, w.pollInterval) {
					return nil
				}
				continue
			}
			for _, lg := range logs {
				if !forward(ctx, lg, logsChan) {
					return nil
				}
			}
			currentBlock = tipBlock + 1
		}

		if sleepInterrupted(ctx, w.pollInterval) {
			return nil
		}
	}
}

// forward hands a log to the consumer, skipping logs removed by a reorg. It
// returns false once the context is done.
func forward(ctx context.Context, lg types.Log, logsChan chan<- types.Log) bool {
	if lg.Removed {
		zap.L().Debug("Ignoring removed log", zap.String("txHash", lg.TxHash.Hex()))
		return true
	}
	select {
	case logsChan <- lg:
		return true
	case <-ctx.Done():
		return false
	}
}

func latestBlockNumber(ctx context.Context, client EthClient) (uint64, error) {
	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		zap.L().Error("Could not get latest block header", zap.Error(err))
		return 0, err
	}
	return header.Number.Uint64(), nil
}

func sleepInterrupted(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}
