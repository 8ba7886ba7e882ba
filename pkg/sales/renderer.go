package sales

import (
	"strings"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/shopspring/decimal"
)

const (
	pinnedGatewayHost = "gateway.pinata.cloud"
	publicGatewayHost = "cloudflare-ipfs.com"
	ipfsScheme        = "ipfs://"
	ipfsGatewayPrefix = "https://" + publicGatewayHost + "/ipfs/"

	// Rendered in place of a fiat amount while no rate table is loaded.
	FiatUnavailable = "n/a"
)

type RateProvider interface {
	Current() (models.RateTable, bool)
}

type Renderer struct {
	template string
	currency string
	rates    RateProvider
}

func NewRenderer(template, currency string, rates RateProvider) *Renderer {
	return &Renderer{
		template: template,
		currency: strings.ToLower(currency),
		rates:    rates,
	}
}

// Render fills every known placeholder of the template. Unknown
// placeholders are left untouched.
func (r *Renderer) Render(sale models.SaleRecord) models.Announcement {
	amount := sale.EffectiveAmount()

	replacer := strings.NewReplacer(
		"<tokenId>", sale.TokenID,
		"<ethPrice>", FormatNative(amount),
		"<fiatPrice>", r.fiatPrice(amount),
		"<txHash>", sale.TxHash,
		"<from>", sale.From,
		"<to>", sale.To,
	)

	return models.Announcement{
		Text:     replacer.Replace(r.template),
		ImageURL: NormalizeImageURL(sale.ImageURL),
	}
}

func (r *Renderer) fiatPrice(amount decimal.Decimal) string {
	if r.rates == nil {
		return FiatUnavailable
	}
	table, ok := r.rates.Current()
	if !ok {
		return FiatUnavailable
	}
	rate, ok := table.Rate(r.currency)
	if !ok {
		return FiatUnavailable
	}
	return FormatFiat(amount.Mul(rate), r.currency)
}

// FormatNative renders an amount as Ξ with three decimals.
func FormatNative(amount decimal.Decimal) string {
	return models.NativeSymbol + groupThousands(amount.StringFixed(3))
}

// FormatFiat renders a whole amount prefixed with the currency symbol, or
// the upper-cased code when the symbol is unknown.
func FormatFiat(amount decimal.Decimal, currency string) string {
	symbol, ok := models.FiatSymbols[strings.ToLower(currency)]
	if !ok {
		symbol = strings.ToUpper(currency) + " "
	}
	return symbol + groupThousands(amount.StringFixed(0))
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

// NormalizeImageURL rewrites IPFS locations onto the public gateway. An
// empty URL stays empty.
func NormalizeImageURL(imageURL string) string {
	switch {
	case imageURL == "":
		return ""
	case strings.HasPrefix(imageURL, ipfsScheme):
		return ipfsGatewayPrefix + strings.TrimPrefix(imageURL, ipfsScheme)
	case strings.Contains(imageURL, pinnedGatewayHost):
		return strings.Replace(imageURL, pinnedGatewayHost, publicGatewayHost, 1)
	default:
		return imageURL
	}
}
