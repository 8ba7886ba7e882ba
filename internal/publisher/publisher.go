package publisher

import (
	"context"

	"github.com/6529-Collections/salesbot/internal/config"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, announcement models.Announcement) error
	Close() error
}

// New builds the publisher selected by PUBLISHER.
func New(cfg config.Config) (Publisher, error) {
	switch cfg.Publisher {
	case config.PublisherLog, "":
		return NewLogPublisher(), nil
	case config.PublisherTwitter:
		return NewTwitterPublisher(TwitterConfig{
			ConsumerKey:       cfg.TwConsumerKey,
			ConsumerSecret:    cfg.TwConsumerSecret,
			AccessToken:       cfg.TwAccessTokenKey,
			AccessTokenSecret: cfg.TwAccessTokenSecret,
			ApiUrl:            cfg.TwitterApiUrl,
			UploadUrl:         cfg.TwitterUploadUrl,
		})
	case config.PublisherTelegram:
		return NewTelegramPublisher(cfg.TelegramBotToken, cfg.TelegramChatId)
	case config.PublisherNats:
		return NewNatsPublisher(cfg.NatsUrl, cfg.NatsSubject)
	default:
		return nil, errors.Errorf("unknown publisher %q", cfg.Publisher)
	}
}

// LogPublisher writes announcements to the log only. Useful for dry runs.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, announcement models.Announcement) error {
	zap.L().Info("Announcement",
		zap.String("text", announcement.Text),
		zap.String("imageUrl", announcement.ImageURL),
		zap.Int("imageBytes", len(announcement.Image)),
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
