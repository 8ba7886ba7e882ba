package sales

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestAssembler(txs TransactionLookup, includeFreeMint bool) *SaleAssembler {
	return NewSaleAssembler(
		txs,
		eth.NewLooksRarePriceResolver(testMarketplace),
		NewIdentityResolver(stubNames{testBuyer: "buyer.eth"}, true, includeFreeMint),
		stubMetadata{image: "ipfs://QmToken"},
		includeFreeMint,
	)
}

func TestSaleAssembler_NativeSale(t *testing.T) {
	assembler := newTestAssembler(stubTransactions{value: wei("0.8")}, false)

	sale, err := assembler.Assemble(context.Background(), transferLog(testSeller, testBuyer, 7))
	require.NoError(t, err)

	assert.Equal(t, "7", sale.TokenID)
	assert.Equal(t, "0x111...11111", sale.From)
	assert.Equal(t, "buyer.eth", sale.To)
	assert.True(t, sale.NativeAmount.Equal(dec("0.8")))
	assert.True(t, sale.MarketplaceAmount.IsZero())
	assert.Equal(t, testTxHash.Hex(), sale.TxHash)
	assert.Equal(t, "ipfs://QmToken", sale.ImageURL)
	assert.False(t, sale.IsMint)
}

func TestSaleAssembler_MarketplacePrice(t *testing.T) {
	txs := stubTransactions{logs: []*types.Log{
		{Address: common.HexToAddress("0xdead")},
		takerAskLog(t, wei("1.5")),
	}}
	assembler := newTestAssembler(txs, false)

	sale, err := assembler.Assemble(context.Background(), transferLog(testSeller, testBuyer, 7))
	require.NoError(t, err)
	assert.True(t, sale.NativeAmount.IsZero())
	assert.True(t, sale.MarketplaceAmount.Equal(dec("1.5")))
	assert.True(t, sale.EffectiveAmount().Equal(dec("1.5")))
}

func TestSaleAssembler_FreeMintFilter(t *testing.T) {
	mint := transferLog(common.Address{}, testBuyer, 42)

	t.Run("excluded when toggle off", func(t *testing.T) {
		assembler := newTestAssembler(stubTransactions{}, false)
		sale, err := assembler.Assemble(context.Background(), mint)
		assert.ErrorIs(t, err, models.ErrSkipped)
		assert.Nil(t, sale)
	})

	t.Run("included when toggle on", func(t *testing.T) {
		assembler := newTestAssembler(stubTransactions{}, true)
		sale, err := assembler.Assemble(context.Background(), mint)
		require.NoError(t, err)
		assert.Equal(t, MintLabel, sale.From)
		assert.True(t, sale.IsMint)
	})

	t.Run("zero value transfer between holders", func(t *testing.T) {
		assembler := newTestAssembler(stubTransactions{}, false)
		_, err := assembler.Assemble(context.Background(), transferLog(testSeller, testBuyer, 3))
		assert.ErrorIs(t, err, models.ErrSkipped)
	})
}

func TestSaleAssembler_MalformedEvent(t *testing.T) {
	assembler := newTestAssembler(stubTransactions{value: wei("1")}, false)
	lg := transferLog(testSeller, testBuyer, 1)
	lg.Topics = lg.Topics[:3]

	sale, err := assembler.Assemble(context.Background(), lg)
	assert.ErrorIs(t, err, models.ErrDecode)
	assert.Nil(t, sale)
}

func TestSaleAssembler_LookupFailureDropsEvent(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	original := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	defer zap.ReplaceGlobals(original)

	testCases := []struct {
		name string
		txs  stubTransactions
	}{
		{"transaction lookup", stubTransactions{valueErr: errors.New("rpc down")}},
		{"receipt lookup", stubTransactions{value: big.NewInt(1), logsErr: errors.New("rpc down")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assembler := newTestAssembler(tc.txs, true)
			sale, err := assembler.Assemble(context.Background(), transferLog(testSeller, testBuyer, 99))
			assert.ErrorContains(t, err, "rpc down")
			assert.Nil(t, sale)
		})
	}

	entries := logs.FilterMessage("Failed to assemble sale").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "99", entries[0].ContextMap()["tokenId"])
}
