package eth

import (
	"bytes"
	"math/big"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var erc721TransferSig = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

var zeroAddressPadding = make([]byte, common.HashLength-common.AddressLength)

var errDirtyAddressTopic = errors.New("address topic is not left-padded with zeros")

// TransferTopic is the topic0 of an ERC-721 Transfer.
func TransferTopic() common.Hash {
	return erc721TransferSig
}

// DecodeTransferLog turns a raw Transfer log into a typed event. Any missing
// or malformed topic yields a *models.DecodeError.
func DecodeTransferLog(lg types.Log) (models.TransferEvent, error) {
	txHash := lg.TxHash.Hex()
	if len(lg.Topics) == 0 || lg.Topics[0] != erc721TransferSig {
		return models.TransferEvent{}, &models.DecodeError{TxHash: txHash, Field: "topics[0]", Reason: "not a Transfer event"}
	}
	if len(lg.Topics) < 4 {
		return models.TransferEvent{}, &models.DecodeError{TxHash: txHash, Field: "topics", Reason: "expected 4 indexed topics"}
	}

	from, err := topicToAddress(lg.Topics[1])
	if err != nil {
		return models.TransferEvent{}, &models.DecodeError{TxHash: txHash, Field: "topics[1]", Reason: err.Error()}
	}
	to, err := topicToAddress(lg.Topics[2])
	if err != nil {
		return models.TransferEvent{}, &models.DecodeError{TxHash: txHash, Field: "topics[2]", Reason: err.Error()}
	}
	tokenId := new(big.Int).SetBytes(lg.Topics[3].Bytes())

	return models.TransferEvent{
		Contract:    lg.Address,
		From:        from,
		To:          to,
		TokenID:     tokenId.String(),
		TxHash:      lg.TxHash,
		BlockNumber: lg.BlockNumber,
		LogIndex:    lg.Index,
		IsMint:      from == (common.Address{}),
	}, nil
}

func topicToAddress(topic common.Hash) (common.Address, error) {
	if !bytes.Equal(topic[:len(zeroAddressPadding)], zeroAddressPadding) {
		return common.Address{}, errDirtyAddressTopic
	}
	return common.BytesToAddress(topic.Bytes()), nil
}
