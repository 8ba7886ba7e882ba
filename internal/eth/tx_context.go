package eth

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrPendingTransaction = errors.New("transaction is still pending")

// TransactionFetcher reads the native value and receipt logs of a mined
// transaction.
type TransactionFetcher struct {
	client EthClient
}

func NewTransactionFetcher(client EthClient) *TransactionFetcher {
	return &TransactionFetcher{client: client}
}

func (f *TransactionFetcher) NativeValue(ctx context.Context, txHash common.Hash) (*big.Int, error) {
	tx, pending, err := f.client.TransactionByHash(ctx, txHash)
	if err != nil {
		return nil, errors.Wrapf(err, "transaction %s", txHash.Hex())
	}
	if pending {
		return nil, errors.Wrapf(ErrPendingTransaction, "transaction %s", txHash.Hex())
	}
	if tx.Value() == nil {
		return new(big.Int), nil
	}
	return tx.Value(), nil
}

func (f *TransactionFetcher) ReceiptLogs(ctx context.Context, txHash common.Hash) ([]*types.Log, error) {
	receipt, err := f.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, errors.Wrapf(err, "receipt of %s", txHash.Hex())
	}
	if receipt == nil {
		return nil, errors.Wrapf(ErrPendingTransaction, "receipt of %s", txHash.Hex())
	}
	return receipt.Logs, nil
}
