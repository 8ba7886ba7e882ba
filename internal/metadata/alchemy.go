package metadata

import (
	"context"
	"net/url"
	"strings"

	"github.com/6529-Collections/salesbot/internal/httpclient"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const tokenTypeErc721 = "erc721"

// NftMetadataResponse is the subset of Alchemy's getNFTMetadata payload the
// bot reads.
type NftMetadataResponse struct {
	Metadata struct {
		ImageURL string `json:"image_url"`
		Image    string `json:"image"`
	} `json:"metadata"`
	TokenURI struct {
		Gateway string `json:"gateway"`
		Raw     string `json:"raw"`
	} `json:"tokenUri"`
}

// ImageURL returns the first non-empty image candidate.
func (r NftMetadataResponse) ImageURL() string {
	for _, candidate := range []string{r.Metadata.ImageURL, r.Metadata.Image, r.TokenURI.Gateway} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

type AlchemyFetcher struct {
	client   *httpclient.Client
	contract string
}

// NewAlchemyFetcher builds a fetcher bound to one contract. baseURL is the
// NFT API root, the api key is appended as a path segment.
func NewAlchemyFetcher(baseURL, apiKey, contract string) (*AlchemyFetcher, error) {
	if apiKey == "" {
		return nil, errors.New("ALCHEMY_API_KEY is not set")
	}
	client, err := httpclient.New(strings.TrimSuffix(baseURL, "/")+"/"+apiKey, httpclient.Config{
		Secrets: []string{apiKey},
	})
	if err != nil {
		return nil, err
	}
	return &AlchemyFetcher{client: client, contract: contract}, nil
}

// FetchImageURL never fails: any error is logged and reported as no image.
func (f *AlchemyFetcher) FetchImageURL(ctx context.Context, tokenID string) (string, bool) {
	var resp NftMetadataResponse
	err := f.client.GetJSON(ctx, "getNFTMetadata", httpclient.RequestOptions{
		Query: url.Values{
			"contractAddress": {f.contract},
			"tokenId":         {tokenID},
			"tokenType":       {tokenTypeErc721},
		},
	}, &resp)
	if err != nil {
		zap.L().Warn("Metadata lookup failed", zap.String("tokenId", tokenID), zap.Error(err))
		return "", false
	}
	image := resp.ImageURL()
	return image, image != ""
}

// NoopFetcher is used when no metadata API key is configured.
type NoopFetcher struct{}

func (NoopFetcher) FetchImageURL(ctx context.Context, tokenID string) (string, bool) {
	return "", false
}
