package eth

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const weiDecimals = 18

type MarketplacePriceResolver interface {
	ResolvePrice(logs []*types.Log) decimal.Decimal
}

var looksRareAbi abi.ABI
var looksRareTakerAskSig common.Hash

func init() {
	parsed, err := abi.JSON(strings.NewReader(`[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "orderNonce", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "strategy", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "currency", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "collection", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "price", "type": "uint256"}
    ],
    "name": "TakerAsk",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "orderNonce", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "strategy", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "currency", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "collection", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "price", "type": "uint256"}
    ],
    "name": "TakerBid",
    "type": "event"
  }
]`))
	if err != nil {
		panic("failed to parse LooksRare ABI: " + err.Error())
	}
	looksRareAbi = parsed
	looksRareTakerAskSig = looksRareAbi.Events["TakerAsk"].ID
}

type LooksRareTakerAsk struct {
	OrderHash  [32]byte       `json:"orderHash"`
	OrderNonce *big.Int       `json:"orderNonce"`
	Currency   common.Address `json:"currency"`
	Collection common.Address `json:"collection"`
	TokenId    *big.Int       `json:"tokenId"`
	Amount     *big.Int       `json:"amount"`
	Price      *big.Int       `json:"price"`

	Taker    common.Address
	Maker    common.Address
	Strategy common.Address
}

// LooksRarePriceResolver reads the sale price from LooksRare TakerAsk logs.
type LooksRarePriceResolver struct {
	marketplace common.Address
}

func NewLooksRarePriceResolver(marketplace common.Address) *LooksRarePriceResolver {
	return &LooksRarePriceResolver{marketplace: marketplace}
}

// ResolvePrice returns the price of the first TakerAsk emitted by the
// marketplace, in whole native units, or zero when there is none.
func (r *LooksRarePriceResolver) ResolvePrice(logs []*types.Log) decimal.Decimal {
	fromMarketplace := lo.Filter(logs, func(lg *types.Log, _ int) bool {
		return lg != nil && sameAddress(lg.Address, r.marketplace)
	})
	for _, lg := range fromMarketplace {
		takerAsk, err := decodeLooksRareTakerAsk(lg)
		if err != nil {
			continue
		}
		return WeiToEther(takerAsk.Price)
	}
	return decimal.Zero
}

func decodeLooksRareTakerAsk(lg *types.Log) (*LooksRareTakerAsk, error) {
	if len(lg.Topics) == 0 || lg.Topics[0] != looksRareTakerAskSig {
		return nil, errors.New("not a TakerAsk log")
	}
	var event LooksRareTakerAsk
	if err := looksRareAbi.UnpackIntoInterface(&event, "TakerAsk", lg.Data); err != nil {
		return nil, errors.Wrap(err, "unpack TakerAsk event")
	}
	if event.Price == nil {
		return nil, errors.New("TakerAsk without price")
	}
	if len(lg.Topics) >= 4 {
		event.Taker = common.BytesToAddress(lg.Topics[1].Bytes())
		event.Maker = common.BytesToAddress(lg.Topics[2].Bytes())
		event.Strategy = common.BytesToAddress(lg.Topics[3].Bytes())
	}
	return &event, nil
}

// WeiToEther converts an integer wei amount to a decimal ether amount.
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -weiDecimals)
}

func sameAddress(a, b common.Address) bool {
	return strings.EqualFold(a.Hex(), b.Hex())
}
