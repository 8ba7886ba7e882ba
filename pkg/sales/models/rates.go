package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateTable maps a lowercase currency code to the price of one native coin.
type RateTable map[string]decimal.Decimal

func (t RateTable) Rate(currency string) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Zero, false
	}
	rate, ok := t[strings.ToLower(currency)]
	return rate, ok
}

var SupportedCurrencies = []string{"usd", "aud", "gbp", "eur", "cad", "jpy", "cny"}

var FiatSymbols = map[string]string{
	"usd": "$",
	"aud": "A$",
	"gbp": "£",
	"eur": "€",
	"cad": "CA$",
	"jpy": "¥",
	"cny": "CN¥",
}

const NativeSymbol = "Ξ"
