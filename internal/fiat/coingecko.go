package fiat

import (
	"context"
	"net/url"
	"strings"

	"github.com/6529-Collections/salesbot/internal/httpclient"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

const nativeCoinID = "ethereum"

// RateSource produces a fresh rate table for the native coin.
type RateSource interface {
	FetchRates(ctx context.Context) (models.RateTable, error)
}

type CoinGeckoSource struct {
	client     *httpclient.Client
	currencies []string
}

// NewCoinGeckoSource targets the simple/price endpoint at apiURL.
func NewCoinGeckoSource(apiURL string, currencies []string) (*CoinGeckoSource, error) {
	if len(currencies) == 0 {
		return nil, errors.New("no fiat currencies configured")
	}
	client, err := httpclient.New(apiURL)
	if err != nil {
		return nil, err
	}
	return &CoinGeckoSource{client: client, currencies: currencies}, nil
}

func (s *CoinGeckoSource) FetchRates(ctx context.Context) (models.RateTable, error) {
	var body map[string]map[string]decimal.Decimal
	err := s.client.GetJSON(ctx, "", httpclient.RequestOptions{
		Query: url.Values{
			"ids":           {nativeCoinID},
			"vs_currencies": {strings.Join(s.currencies, ",")},
		},
	}, &body)
	if err != nil {
		return nil, errors.Wrap(err, "fetching fiat rates")
	}
	quotes, ok := body[nativeCoinID]
	if !ok || len(quotes) == 0 {
		return nil, errors.Newf("fiat response has no %s quotes", nativeCoinID)
	}
	table := make(models.RateTable, len(quotes))
	for currency, rate := range quotes {
		table[strings.ToLower(currency)] = rate
	}
	return table, nil
}
