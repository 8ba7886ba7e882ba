package main

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestPreviewCommand_Validation(t *testing.T) {
	t.Run("missing flag", func(t *testing.T) {
		_, err := executeCommand(t, "preview")
		assert.ErrorContains(t, err, `"tx" not set`)
	})

	t.Run("malformed hash", func(t *testing.T) {
		_, err := executeCommand(t, "preview", "--tx", "0x1234")
		assert.ErrorContains(t, err, "is not a transaction hash")
	})
}

func TestCollectionTransfers(t *testing.T) {
	contract := common.HexToAddress("0x23581767a106ae21c074b2276D25e5C3e136a68b")
	other := common.HexToAddress("0x59728544b08ab483533076417fbbb2fd0b17ce3a")
	transfer := &types.Log{
		Address: contract,
		Index:   4,
		Topics:  []common.Hash{eth.TransferTopic(), {}, {}, common.BigToHash(big.NewInt(1))},
	}

	logs := []*types.Log{
		nil,
		{Address: other, Topics: []common.Hash{eth.TransferTopic()}},
		{Address: contract, Topics: []common.Hash{common.HexToHash("0x01")}},
		{Address: contract},
		transfer,
	}

	got := collectionTransfers(logs, contract)
	require.Len(t, got, 1)
	assert.Equal(t, uint(4), got[0].Index)
}

func TestPrintRates(t *testing.T) {
	cmd := NewRatesCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)

	printRates(cmd, models.RateTable{
		"usd": decimal.RequireFromString("3012.45"),
		"eur": decimal.RequireFromString("2790"),
	})

	assert.Equal(t, "1 Ξ = €2,790\n1 Ξ = $3,012\n", out.String())
}
