package handlers

import (
	"net/http"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
)

type RateProvider interface {
	Current() (models.RateTable, bool)
}

type RatesResponse struct {
	Currency string           `json:"currency"`
	Rates    models.RateTable `json:"rates"`
}

func RatesGetHandler(rates RateProvider, currency string) func(r *http.Request) (any, error) {
	return func(r *http.Request) (any, error) {
		if rates == nil {
			return nil, errors.Wrap(ErrNotFound, "fiat rates are not loaded yet")
		}
		table, ok := rates.Current()
		if !ok {
			return nil, errors.Wrap(ErrNotFound, "fiat rates are not loaded yet")
		}
		return RatesResponse{Currency: currency, Rates: table}, nil
	}
}
