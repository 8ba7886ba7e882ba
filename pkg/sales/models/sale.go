package models

import (
	"encoding/base64"

	"github.com/shopspring/decimal"
)

type SaleRecord struct {
	From              string
	To                string
	TokenID           string
	NativeAmount      decimal.Decimal
	MarketplaceAmount decimal.Decimal
	TxHash            string
	ImageURL          string
	IsMint            bool
}

// EffectiveAmount prefers the marketplace price whenever it is set.
func (s SaleRecord) EffectiveAmount() decimal.Decimal {
	if s.MarketplaceAmount.IsPositive() {
		return s.MarketplaceAmount
	}
	return s.NativeAmount
}

type Announcement struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
	Image    []byte `json:"-"`
}

func (a Announcement) HasImage() bool {
	return len(a.Image) > 0
}

func (a Announcement) ImageBase64() string {
	if !a.HasImage() {
		return ""
	}
	return base64.StdEncoding.EncodeToString(a.Image)
}
