package main

import (
	"context"

	"github.com/6529-Collections/salesbot/internal/config"
	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/internal/fiat"
	"github.com/6529-Collections/salesbot/internal/metadata"
	"github.com/6529-Collections/salesbot/internal/publisher"
	"github.com/6529-Collections/salesbot/pkg/sales"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// app holds every long-lived dependency, built once here and injected.
type app struct {
	cfg       config.Config
	ethClient eth.EthClient
	snapshot  *fiat.RateSnapshotDb
	rates     *fiat.RateCache
	publisher publisher.Publisher
	pipeline  *sales.Pipeline
}

func newApp(ctx context.Context, cfg config.Config, pub publisher.Publisher) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ethClient, err := eth.CreateEthClient()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, ethClient: ethClient, publisher: pub}

	a.snapshot, err = fiat.OpenRateSnapshotDb(cfg.RateSnapshotPath)
	if err != nil {
		zap.L().Warn("Rate snapshots disabled", zap.Error(err))
		a.snapshot = nil
	}
	source, err := newRateSource(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.rates = fiat.NewRateCache(ctx, source, a.snapshot, cfg.FiatRefreshInterval)

	var metadataFetcher sales.MetadataFetcher = metadata.NoopFetcher{}
	if cfg.AlchemyApiKey != "" {
		metadataFetcher, err = metadata.NewAlchemyFetcher(cfg.MetadataApiUrl, cfg.AlchemyApiKey, cfg.ContractAddress)
		if err != nil {
			a.Close()
			return nil, err
		}
	} else {
		zap.L().Warn("ALCHEMY_API_KEY is not set, announcements will have no image")
	}

	images, err := metadata.NewImageDownloader()
	if err != nil {
		a.Close()
		return nil, err
	}

	assembler := sales.NewSaleAssembler(
		eth.NewTransactionFetcher(ethClient),
		eth.NewLooksRarePriceResolver(common.HexToAddress(cfg.MarketplaceContractAddress)),
		sales.NewIdentityResolver(eth.NewEnsReverseResolver(ethClient), cfg.Ens, cfg.IncludeFreeMint),
		metadataFetcher,
		cfg.IncludeFreeMint,
	)
	renderer := sales.NewRenderer(cfg.Message, cfg.Currency, a.rates)
	a.pipeline = sales.NewPipeline(assembler, renderer, images, pub, cfg.EventWorkers)
	return a, nil
}

func newRateSource(cfg config.Config) (fiat.RateSource, error) {
	source, err := fiat.NewCoinGeckoSource(cfg.FiatApiUrl, cfg.FiatCurrencyList())
	if err != nil {
		return nil, errors.Wrap(err, "configuring fiat rates")
	}
	return source, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			zap.L().Warn("Error closing publisher", zap.Error(err))
		}
	}
	if err := a.snapshot.Close(); err != nil {
		zap.L().Warn("Error closing rate snapshot db", zap.Error(err))
	}
	if a.ethClient != nil {
		a.ethClient.Close()
	}
}
