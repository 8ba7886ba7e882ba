package sales

import (
	"context"
	"math/big"

	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

type TransactionLookup interface {
	NativeValue(ctx context.Context, txHash common.Hash) (*big.Int, error)
	ReceiptLogs(ctx context.Context, txHash common.Hash) ([]*types.Log, error)
}

type PriceResolver interface {
	ResolvePrice(logs []*types.Log) decimal.Decimal
}

type MetadataFetcher interface {
	FetchImageURL(ctx context.Context, tokenID string) (string, bool)
}

type SaleAssembler struct {
	transactions    TransactionLookup
	prices          PriceResolver
	identities      *IdentityResolver
	metadata        MetadataFetcher
	includeFreeMint bool
}

func NewSaleAssembler(
	transactions TransactionLookup,
	prices PriceResolver,
	identities *IdentityResolver,
	metadata MetadataFetcher,
	includeFreeMint bool,
) *SaleAssembler {
	return &SaleAssembler{
		transactions:    transactions,
		prices:          prices,
		identities:      identities,
		metadata:        metadata,
		includeFreeMint: includeFreeMint,
	}
}

// Assemble turns one raw Transfer log into a SaleRecord. Transfers that are
// not sales return models.ErrSkipped. Any other error means the event is
// dropped; a partial record is never returned.
func (a *SaleAssembler) Assemble(ctx context.Context, lg types.Log) (*models.SaleRecord, error) {
	event, err := eth.DecodeTransferLog(lg)
	if err != nil {
		return nil, err
	}

	var (
		txc         models.TransactionContext
		marketplace decimal.Decimal
		from, to    string
		imageURL    string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		value, err := a.transactions.NativeValue(gctx, event.TxHash)
		if err != nil {
			return err
		}
		txc.ValueWei = value
		return nil
	})
	g.Go(func() error {
		logs, err := a.transactions.ReceiptLogs(gctx, event.TxHash)
		if err != nil {
			return err
		}
		txc.Logs = logs
		marketplace = a.prices.ResolvePrice(logs)
		return nil
	})
	g.Go(func() error {
		from = a.identities.Label(gctx, event.From, event.IsMint)
		return nil
	})
	g.Go(func() error {
		to = a.identities.Label(gctx, event.To, false)
		return nil
	})
	g.Go(func() error {
		imageURL, _ = a.metadata.FetchImageURL(gctx, event.TokenID)
		return nil
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("Failed to assemble sale", zap.String("tokenId", event.TokenID), zap.Error(err))
		return nil, errors.Wrapf(err, "assembling token %s", event.TokenID)
	}

	native := eth.WeiToEther(txc.ValueWei)
	if !native.IsPositive() && !marketplace.IsPositive() && !a.includeFreeMint {
		return nil, errors.Wrapf(models.ErrSkipped, "token %s moved without payment", event.TokenID)
	}

	return &models.SaleRecord{
		From:              from,
		To:                to,
		TokenID:           event.TokenID,
		NativeAmount:      native,
		MarketplaceAmount: marketplace,
		TxHash:            event.TxHash.Hex(),
		ImageURL:          imageURL,
		IsMint:            event.IsMint,
	}, nil
}
