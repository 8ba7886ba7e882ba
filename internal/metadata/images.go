package metadata

import (
	"context"

	"github.com/6529-Collections/salesbot/internal/httpclient"
)

type ImageDownloader struct {
	client *httpclient.Client
}

func NewImageDownloader() (*ImageDownloader, error) {
	client, err := httpclient.New("")
	if err != nil {
		return nil, err
	}
	return &ImageDownloader{client: client}, nil
}

func (d *ImageDownloader) Download(ctx context.Context, imageURL string) ([]byte, error) {
	return d.client.Download(ctx, imageURL)
}
