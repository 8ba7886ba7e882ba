package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TransferEvent is a decoded ERC-721 Transfer log.
type TransferEvent struct {
	Contract    common.Address
	From        common.Address
	To          common.Address
	TokenID     string
	TxHash      common.Hash
	BlockNumber uint64
	LogIndex    uint
	IsMint      bool
}

// TransactionContext holds what a single event needs from its transaction.
type TransactionContext struct {
	ValueWei *big.Int
	Logs     []*types.Log
}
