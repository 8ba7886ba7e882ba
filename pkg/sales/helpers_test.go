package sales

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testContract    = common.HexToAddress("0x23581767a106ae21c074b2276D25e5C3e136a68b")
	testMarketplace = common.HexToAddress("0x59728544b08ab483533076417fbbb2fd0b17ce3a")
	testSeller      = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testBuyer       = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testTxHash      = common.HexToHash("0xfeedfacefeedfacefeedfacefeedfacefeedfacefeedfacefeedfacefeedface")
)

func addressToTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func transferLog(from, to common.Address, tokenID int64) types.Log {
	return types.Log{
		Address: testContract,
		TxHash:  testTxHash,
		Topics: []common.Hash{
			eth.TransferTopic(),
			addressToTopic(from),
			addressToTopic(to),
			common.BigToHash(big.NewInt(tokenID)),
		},
	}
}

var takerAskAbi = `[{"anonymous":false,"inputs":[
  {"indexed":false,"name":"orderHash","type":"bytes32"},
  {"indexed":false,"name":"orderNonce","type":"uint256"},
  {"indexed":true,"name":"taker","type":"address"},
  {"indexed":true,"name":"maker","type":"address"},
  {"indexed":true,"name":"strategy","type":"address"},
  {"indexed":false,"name":"currency","type":"address"},
  {"indexed":false,"name":"collection","type":"address"},
  {"indexed":false,"name":"tokenId","type":"uint256"},
  {"indexed":false,"name":"amount","type":"uint256"},
  {"indexed":false,"name":"price","type":"uint256"}
],"name":"TakerAsk","type":"event"}]`

func takerAskLog(t *testing.T, priceWei *big.Int) *types.Log {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(takerAskAbi))
	require.NoError(t, err)
	ev := parsed.Events["TakerAsk"]
	data, err := ev.Inputs.NonIndexed().Pack(
		[32]byte{9},
		big.NewInt(1),
		common.HexToAddress("0xC02aaa39b223Fe8D0a0e5C4F27eAD9083C756Cc2"),
		testContract,
		big.NewInt(42),
		big.NewInt(1),
		priceWei,
	)
	require.NoError(t, err)
	return &types.Log{
		Address: testMarketplace,
		Topics: []common.Hash{
			ev.ID,
			addressToTopic(testBuyer),
			addressToTopic(testSeller),
			addressToTopic(common.HexToAddress("0x56244bb70cbd3ea9dc8007399f61dfc065190031")),
		},
		Data: data,
	}
}

func wei(ether string) *big.Int {
	return decimal.RequireFromString(ether).Shift(18).BigInt()
}

type stubTransactions struct {
	value    *big.Int
	logs     []*types.Log
	valueErr error
	logsErr  error
}

func (s stubTransactions) NativeValue(ctx context.Context, txHash common.Hash) (*big.Int, error) {
	if s.valueErr != nil {
		return nil, s.valueErr
	}
	if s.value == nil {
		return new(big.Int), nil
	}
	return s.value, nil
}

func (s stubTransactions) ReceiptLogs(ctx context.Context, txHash common.Hash) ([]*types.Log, error) {
	return s.logs, s.logsErr
}

type stubMetadata struct {
	image string
}

func (s stubMetadata) FetchImageURL(ctx context.Context, tokenID string) (string, bool) {
	return s.image, s.image != ""
}

type stubNames map[common.Address]string

func (s stubNames) LookupAddress(ctx context.Context, address common.Address) (string, error) {
	name, ok := s[address]
	if !ok {
		return "", eth.ErrNameNotFound
	}
	return name, nil
}

type staticRates struct {
	table models.RateTable
}

func (s staticRates) Current() (models.RateTable, bool) {
	return s.table, s.table != nil
}

type stubImages struct {
	body []byte
	err  error
}

func (s stubImages) Download(ctx context.Context, imageURL string) ([]byte, error) {
	return s.body, s.err
}

type recordingPublisher struct {
	mu            sync.Mutex
	announcements []models.Announcement
	err           error
}

func (p *recordingPublisher) Publish(ctx context.Context, announcement models.Announcement) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.announcements = append(p.announcements, announcement)
	return nil
}

func (p *recordingPublisher) published() []models.Announcement {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Announcement(nil), p.announcements...)
}
