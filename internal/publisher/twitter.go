package publisher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
	"github.com/dghubble/oauth1"
	"go.uber.org/zap"
)

const (
	mediaUploadPath  = "media/upload.json"
	statusUpdatePath = "statuses/update.json"
	maxErrorBody     = 512
)

type TwitterConfig struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	ApiUrl            string
	UploadUrl         string
}

// TwitterPublisher posts through the v1.1 API: an optional media upload
// followed by a status update referencing it.
type TwitterPublisher struct {
	client    *http.Client
	apiUrl    string
	uploadUrl string
}

type mediaUploadResponse struct {
	MediaIDString string `json:"media_id_string"`
}

type statusUpdateResponse struct {
	IDString string `json:"id_str"`
}

func NewTwitterPublisher(cfg TwitterConfig) (*TwitterPublisher, error) {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" || cfg.AccessToken == "" || cfg.AccessTokenSecret == "" {
		return nil, errors.New("twitter credentials are incomplete")
	}
	oauthConfig := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	client := oauthConfig.Client(context.Background(), oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret))
	client.Timeout = 30 * time.Second

	return &TwitterPublisher{
		client:    client,
		apiUrl:    withTrailingSlash(cfg.ApiUrl),
		uploadUrl: withTrailingSlash(cfg.UploadUrl),
	}, nil
}

// Publish posts the announcement. A failed media upload degrades to a
// text-only post; a failed status update is returned.
func (p *TwitterPublisher) Publish(ctx context.Context, announcement models.Announcement) error {
	form := url.Values{"status": {announcement.Text}}

	if announcement.HasImage() {
		mediaID, err := p.uploadMedia(ctx, announcement.ImageBase64())
		if err != nil {
			zap.L().Warn("Media upload failed, posting text only", zap.Error(err))
		} else {
			form.Set("media_ids", mediaID)
		}
	}

	var status statusUpdateResponse
	if err := p.postForm(ctx, p.apiUrl+statusUpdatePath, form, &status); err != nil {
		return errors.Mark(errors.Wrap(err, "status update"), models.ErrPublish)
	}
	zap.L().Debug("Tweet created", zap.String("id", status.IDString))
	return nil
}

func (p *TwitterPublisher) uploadMedia(ctx context.Context, mediaData string) (string, error) {
	var resp mediaUploadResponse
	if err := p.postForm(ctx, p.uploadUrl+mediaUploadPath, url.Values{"media_data": {mediaData}}, &resp); err != nil {
		return "", err
	}
	if resp.MediaIDString == "" {
		return "", errors.New("media upload returned no media id")
	}
	return resp.MediaIDString, nil
}

func (p *TwitterPublisher) postForm(ctx context.Context, target string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", target)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "reading response of %s", target)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return errors.Newf("POST %s returned %d: %s", target, resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(body, out), "decoding response of %s", target)
}

func (p *TwitterPublisher) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
